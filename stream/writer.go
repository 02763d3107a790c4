package stream

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// NewlineEscape replaces newlines inside emitted fragments so that each SSE
// data frame stays a single line. The client reader reverses it.
const NewlineEscape = "~$~"

// Writer emits the client-facing event-stream: one data frame per fragment
// and exactly one terminal frame, either success or error. No frames follow
// the terminal one.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
	done    bool
}

// NewWriter wraps w for SSE output. When w is an http.ResponseWriter the
// content type and buffering headers are set and every frame is flushed
// immediately so the client sees tokens as they arrive.
func NewWriter(w io.Writer) *Writer {
	sw := &Writer{w: w}
	if rw, ok := w.(http.ResponseWriter); ok {
		rw.Header().Set("Content-Type", "text/event-stream")
		rw.Header().Set("Cache-Control", "no-cache")
		rw.Header().Set("X-Accel-Buffering", "no") // nginx
		if f, ok := w.(http.Flusher); ok {
			sw.flusher = f
		}
	}
	return sw
}

// WriteDelta emits one content fragment as a data frame.
func (sw *Writer) WriteDelta(delta string) error {
	if sw.done {
		return nil
	}
	escaped := strings.ReplaceAll(delta, "\n", NewlineEscape)
	return sw.writeFrame(escaped)
}

// WriteSuccess emits the terminal success frame. Subsequent writes are no-ops.
func (sw *Writer) WriteSuccess() error {
	if sw.done {
		return nil
	}
	sw.done = true
	return sw.writeFrame("success:ok")
}

// WriteError emits the terminal error frame. Subsequent writes are no-ops.
func (sw *Writer) WriteError(msg string) error {
	if sw.done {
		return nil
	}
	sw.done = true
	msg = strings.ReplaceAll(msg, "\n", NewlineEscape)
	return sw.writeFrame("error:" + msg)
}

func (sw *Writer) writeFrame(payload string) error {
	if _, err := fmt.Fprintf(sw.w, "data:%s\n\n", payload); err != nil {
		return err
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	return nil
}
