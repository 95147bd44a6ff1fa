package wizard

import "context"

// Transport performs one streamed request/response cycle. Open returns once
// the server has accepted the request with a success status; that is the
// connection open confirmation. Retry decisions are not made here.
type Transport interface {
	Open(ctx context.Context, url string, req Request) (Lines, error)
}

// Lines is a lazy, non-restartable pull iterator over framed event payloads.
// Each payload is one "data: " line with the prefix stripped.
//
// Next returns io.EOF when the connection closes normally and a non-EOF error
// when the read fails or ctx passed to Transport.Open is cancelled. Close
// releases the connection; it is safe to call more than once.
type Lines interface {
	Next() (string, error)
	Close() error
}
