// Package protocol owns the bridge's two output streams. The primary stream
// carries exactly one JSON document per process; everything else (progress,
// warnings, traces) goes to the secondary stream so the caller's JSON parse
// can never be corrupted.
package protocol

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/modumentor/bridge/errors"
)

// Codec serializes results to the primary stream and diagnostics to the
// secondary stream. Each codec carries a trace id so the spawning backend
// can correlate a process's stderr lines with the request that spawned it.
type Codec struct {
	primary   io.Writer
	secondary io.Writer
	traceID   string
}

// NewCodec creates a codec over the two streams, normally stdout and stderr.
func NewCodec(primary, secondary io.Writer) *Codec {
	return &Codec{
		primary:   primary,
		secondary: secondary,
		traceID:   uuid.NewString(),
	}
}

// Emit writes the single result document to the primary stream. HTML
// escaping is disabled so emoji and other non-ASCII text round-trip
// unchanged.
func (c *Codec) Emit(result any) error {
	enc := json.NewEncoder(c.primary)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return errors.Wrapf(err, "failed to serialize result")
	}
	return nil
}

// Fatal reports a top-level fault on the secondary stream as a JSON error
// document. This is the only error path that does not put a Result on the
// primary stream; the caller is expected to exit non-zero afterwards.
func (c *Codec) Fatal(message string) {
	enc := json.NewEncoder(c.secondary)
	enc.SetEscapeHTML(false)
	// Encoding a flat map of one string cannot fail; ignore the error.
	_ = enc.Encode(map[string]string{"error": message})
}

// Logf writes one diagnostic line to the secondary stream, prefixed with
// the codec's trace id.
func (c *Codec) Logf(format string, a ...interface{}) {
	fmt.Fprintf(c.secondary, "[%s] %s\n", c.traceID, fmt.Sprintf(format, a...))
}
