// Package remote defines the typed result of running a script inside a
// codespace, and its JSON encoding for machine-readable output.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Result is what a remote script produced.
type Result struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// Success reports whether the script exited with status zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Executor runs an opaque script body in a codespace.
type Executor interface {
	ExecuteRemote(ctx context.Context, codespace string, script []byte) (*Result, error)
}

// WriteResult encodes and writes a result to the writer.
func WriteResult(w io.Writer, res *Result) error {
	if err := json.NewEncoder(w).Encode(res); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// ReadResult decodes a result from the reader.
func ReadResult(r io.Reader) (*Result, error) {
	var res Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &res, nil
}
