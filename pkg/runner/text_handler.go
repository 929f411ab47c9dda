package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// TextHandler reads command lines and prints one line per notification.
type TextHandler struct {
	Reader    *bufio.Reader
	Writer    io.Writer
	Renderer  ContentRenderer
	Formatter func(Notification) string
	Prompt    string

	mu        sync.Mutex // serializes writes
	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the system message renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerFormatter replaces FormatNotification.
func WithTextHandlerFormatter(f func(Notification) string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Formatter = f
	}
}

// WithTextHandlerPrompt sets the prompt printed before each read. The
// default is no prompt, since notifications interleave with input.
func WithTextHandlerPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:    bufio.NewReader(r),
		Writer:    w,
		Formatter: FormatNotification,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honour ctx.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err == io.EOF {
				close(h.inputChan)
				return
			}
			h.inputChan <- inputResult{err: err}
			// Backoff for persistent read failures.
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		if h.Prompt != "" && ctx.Err() == nil {
			h.write(h.Prompt)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			text := strings.TrimSpace(res.text)
			if text == "" || strings.HasPrefix(text, "#") {
				continue
			}
			clean, err := SanitizeInput(text)
			if err != nil {
				h.write(fmt.Sprintf("Error: %v. Please try again.\n", err))
				continue
			}
			return clean, nil
		}
	}
}

func (h *TextHandler) Output(ctx context.Context, n Notification) error {
	line := h.Formatter(n)
	if line == "" {
		return nil
	}
	return h.write(line + "\n")
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	if h.Renderer != nil {
		if rendered, err := h.Renderer(msg); err == nil {
			msg = rendered
		}
	}
	return h.write(strings.TrimRight(msg, "\n") + "\n")
}

func (h *TextHandler) write(s string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.Writer, s)
	return err
}

// FormatNotification renders n as a single human readable line.
func FormatNotification(n Notification) string {
	prefix := ""
	if n.Session != "" {
		prefix = "[" + n.Session + "] "
	}
	switch {
	case n.Player != nil:
		e := n.Player
		switch e.Type {
		case "frame", "render":
			return fmt.Sprintf("%s%s %.3f", prefix, e.Type, e.Frame)
		case "loop":
			return fmt.Sprintf("%sloop %d", prefix, e.Loop)
		}
		return prefix + string(e.Type)
	case n.Machine != nil:
		e := n.Machine
		switch {
		case e.From != "" || e.To != "":
			return fmt.Sprintf("%s%s %s -> %s", prefix, e.Type, e.From, e.To)
		case e.State != "":
			return fmt.Sprintf("%s%s %s", prefix, e.Type, e.State)
		case e.New != nil:
			return fmt.Sprintf("%s%s %s: %s -> %s", prefix, e.Type, e.Name, e.Old, e.New)
		case e.Name != "":
			return fmt.Sprintf("%s%s %s", prefix, e.Type, e.Name)
		case e.Message != "":
			return fmt.Sprintf("%s%s: %s", prefix, e.Type, e.Message)
		}
		return prefix + string(e.Type)
	}
	return ""
}
