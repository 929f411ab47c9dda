package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
)

// JSONHandler implements IOHandler with JSON Lines. Each input line is a
// Command object ({"cmd":"click","args":["20","20"]}) or a plain text
// command; each output line is a Notification or a {"system": msg} object.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder

	mu sync.Mutex // guards Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

// Input reads the next non-empty line. It does not observe ctx while
// blocked; the Runner reads on its own goroutine.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := h.Reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text != "" {
			// A JSON string literal carries a text command.
			var s string
			if json.Unmarshal([]byte(text), &s) == nil {
				text = s
			}
			return SanitizeInput(text)
		}
		if err != nil {
			return "", err
		}
	}
}

func (h *JSONHandler) Output(ctx context.Context, n Notification) error {
	return h.encode(n)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.encode(map[string]string{"system": msg})
}

func (h *JSONHandler) encode(v any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(v)
}
