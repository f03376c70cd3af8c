package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/comprehend/errors"
)

// resultWriter streams results as they are pulled.
type resultWriter interface {
	Write(v any) error
	Flush() error
}

func newResultWriter(format string, w io.Writer) (resultWriter, error) {
	bw := bufio.NewWriter(w)
	switch format {
	case "text":
		return &textWriter{w: bw}, nil
	case "json":
		return &jsonWriter{w: bw, enc: json.NewEncoder(bw)}, nil
	case "yaml":
		return &yamlWriter{w: bw}, nil
	default:
		return nil, errors.InvalidInput("format", fmt.Sprintf("unknown output format %q (want text, json or yaml)", format))
	}
}

// textWriter prints one result per line.
type textWriter struct {
	w *bufio.Writer
}

func (t *textWriter) Write(v any) error {
	if v == nil {
		_, err := t.w.WriteString("null\n")
		return err
	}
	_, err := fmt.Fprintln(t.w, v)
	return err
}

func (t *textWriter) Flush() error { return t.w.Flush() }

// jsonWriter emits newline-delimited JSON.
type jsonWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

func (j *jsonWriter) Write(v any) error { return j.enc.Encode(v) }

func (j *jsonWriter) Flush() error { return j.w.Flush() }

// yamlWriter emits a single YAML sequence, one item per result.
type yamlWriter struct {
	w *bufio.Writer
	n int
}

func (y *yamlWriter) Write(v any) error {
	out, err := yaml.Marshal([]any{v})
	if err != nil {
		return err
	}
	y.n++
	_, err = y.w.Write(out)
	return err
}

func (y *yamlWriter) Flush() error {
	if y.n == 0 {
		if _, err := y.w.WriteString("[]\n"); err != nil {
			return err
		}
	}
	return y.w.Flush()
}
