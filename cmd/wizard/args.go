package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/wizard"
	"github.com/fwojciec/wizard/config"
)

type options struct {
	config  *config.Config
	request wizard.Request
	headers [][2]string
	out     string
	plain   bool
}

// parseArgs parses the command line and merges it over the loaded
// configuration. Only flags given explicitly override config values.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("wizard", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath = fs.String("config", "", "Path to a YAML config file")
		url        = fs.String("url", "", "Streaming endpoint (overrides config)")
		feature    = fs.String("feature", "", "Wizard feature")
		step       = fs.String("step", "", "Wizard step")
		data       = fs.String("data", "", "Step input as JSON, or @path to read it from a file")
		dataType   = fs.String("data-type", "", "Data type used to validate streamed items")
		arrayPath  = fs.String("array-path", "", "Dot path of the item array inside the streamed JSON")
		typesDir   = fs.String("datatypes", "", "Directory with extra data type definitions")
		out        = fs.String("out", "", "Write the final state snapshot to this file")
		plain      = fs.Bool("plain", false, "Print items as JSON lines instead of the TUI")
		headers    [][2]string
	)
	fs.Func("header", "Extra request header as key:value (repeatable)", func(s string) error {
		h, err := parseHeader(s)
		if err != nil {
			return err
		}
		headers = append(headers, h)
		return nil
	})

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return options{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.Endpoint = *url
		case "data-type":
			cfg.Stream.DataType = *dataType
		case "array-path":
			cfg.Stream.ArrayPath = *arrayPath
		case "datatypes":
			cfg.DataTypes.Dir = *typesDir
		}
	})

	payload, err := parseData(*data)
	if err != nil {
		return options{}, err
	}
	req := wizard.Request{Feature: *feature, Step: *step, Data: payload}
	if err := req.Validate(); err != nil {
		return options{}, err
	}

	return options{
		config:  cfg,
		request: req,
		headers: headers,
		out:     *out,
		plain:   *plain,
	}, nil
}

// parseData decodes the -data flag. A leading @ names a file holding the
// JSON document. An empty value means no input.
func parseData(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	raw := []byte(s)
	if path, ok := strings.CutPrefix(s, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read data: %w", err)
		}
		raw = b
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse data: %w", err)
	}
	return v, nil
}

func parseHeader(s string) ([2]string, error) {
	k, v, ok := strings.Cut(s, ":")
	k, v = strings.TrimSpace(k), strings.TrimSpace(v)
	if !ok || k == "" {
		return [2]string{}, errors.New("header must be key:value")
	}
	return [2]string{k, v}, nil
}
