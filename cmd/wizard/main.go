// Command wizard runs one Recipe Wizard streaming step against the AI
// endpoint and follows it live.
//
// Usage:
//
//	wizard -feature create-recipe -step potential-causes -data @request.json [flags]
//
// Flags:
//
//	-config string      Path to a YAML config file
//	-url string         Streaming endpoint (overrides config)
//	-feature string     Wizard feature
//	-step string        Wizard step
//	-data string        Step input as JSON, or @path to read it from a file
//	-data-type string   Data type used to validate streamed items
//	-array-path string  Dot path of the item array inside the streamed JSON
//	-datatypes string   Directory with extra data type definitions
//	-header key:value   Extra request header (repeatable)
//	-out string         Write the final state snapshot to this file
//	-plain              Print items as JSON lines instead of the TUI
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/wizard"
	bt "github.com/fwojciec/wizard/bubbletea"
	"github.com/fwojciec/wizard/datatype"
	wizardjson "github.com/fwojciec/wizard/json"
	"github.com/fwojciec/wizard/sse"
	"github.com/fwojciec/wizard/stream"
	"github.com/fwojciec/wizard/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "wizard: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}
	cfg := opts.config

	logger, closeLog, err := newLogger(cfg.Log, stdout, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	shutdown, err := tracing.Setup(ctx, cfg.Trace, stderr)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	configs := datatype.Builtin()
	if cfg.DataTypes.Dir != "" {
		extra, err := datatype.LoadDir(cfg.DataTypes.Dir, cfg.DataTypes.Pattern)
		if err != nil {
			return err
		}
		configs = append(configs, extra...)
	}
	registry := datatype.NewRegistry(logger, configs...)

	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	clientOpts := []sse.Option{sse.WithHTTPClient(httpClient), sse.WithLogger(logger)}
	for _, h := range opts.headers {
		clientOpts = append(clientOpts, sse.WithHeader(h[0], h[1]))
	}
	client := sse.New(clientOpts...)

	streamOpts := []stream.Option{
		stream.WithMaxRetries(cfg.Stream.MaxRetries),
		stream.WithRetryDelay(cfg.Stream.RetryDelay),
		stream.WithTimeout(cfg.Stream.Timeout),
		stream.WithArrayPath(cfg.Stream.ArrayPath),
		stream.WithLogger(logger),
	}
	if cfg.Stream.DataType != "" {
		dt, err := registry.Lookup(cfg.Stream.DataType)
		if err != nil {
			return err
		}
		streamOpts = append(streamOpts, stream.WithDataType(dt))
		if cfg.Stream.Deduplicate {
			streamOpts = append(streamOpts, stream.WithDeduplication())
		}
	}

	var final wizard.State
	if opts.plain {
		p := newPrinter(stdout)
		ctrl := stream.New(client, append(streamOpts, stream.WithOnChange(p.onChange))...)
		final, err = follow(ctx, ctrl, cfg.Endpoint, opts.request)
		_ = ctrl.Close()
		if err != nil {
			return err
		}
		if items, ok := finalItems(registry, cfg.Stream.ArrayPath, cfg.Stream.DataType, final); ok {
			logger.Info("final payload", "items", len(items))
		}
	} else {
		sub := bt.NewSubscription()
		ctrl := stream.New(client, append(streamOpts, stream.WithOnChange(sub.Publish))...)
		m := bt.New(ctrl, sub, cfg.Endpoint, opts.request, wizard.DefaultTheme())
		err := bt.Run(ctx, m, tea.WithAltScreen())
		final = ctrl.State()
		_ = ctrl.Close()
		if err != nil {
			return fmt.Errorf("TUI: %w", err)
		}
	}

	if opts.out != "" && final.SessionID != "" {
		if err := wizardjson.Save(opts.out, final); err != nil {
			return fmt.Errorf("save result: %w", err)
		}
		logger.Info("result saved", "path", opts.out, "phase", final.Phase.String())
	}

	return outcome(final)
}

// follow starts req and blocks until the session ends or ctx is cancelled.
func follow(ctx context.Context, ctrl *stream.Controller, url string, req wizard.Request) (wizard.State, error) {
	if err := ctrl.Start(ctx, url, req); err != nil {
		return wizard.State{}, err
	}
	select {
	case <-ctrl.Done():
	case <-ctx.Done():
		final := ctrl.State()
		ctrl.Reset()
		return final, ctx.Err()
	}
	return ctrl.State(), nil
}

// outcome maps a final state to the command's exit status.
func outcome(s wizard.State) error {
	switch s.Phase {
	case wizard.PhaseError:
		return fmt.Errorf("stream failed: %s", s.Error)
	case wizard.PhaseEnded:
		return fmt.Errorf("stream ended without a result")
	}
	return nil
}
