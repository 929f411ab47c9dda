package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/kinema/internal/presentation/tui"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/runner"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestFormatterWithoutColor(t *testing.T) {
	format := tui.NewFormatter(termenv.Ascii)
	n := runner.Notification{Machine: &domain.MachineEvent{Type: domain.MachineTransition, From: "a", To: "b"}}
	assert.Equal(t, "transition a -> b", format(n))
	assert.Equal(t, "", format(runner.Notification{}))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_|\\_\\")
}
