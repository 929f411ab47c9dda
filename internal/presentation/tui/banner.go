package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Kinema banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{` _  _ _                           `, "#818cf8"},
		{`| |/ (_)_ __   ___ _ __ ___   __ _ `, "#a78bfa"},
		{`| ' /| | '_ \ / _ \ '_ ` + "`" + ` _ \ / _` + "`" + ` |`, "#c084fc"},
		{`| . \| | | | |  __/ | | | | | (_| |`, "#e879f9"},
		{`|_|\_\_|_| |_|\___|_| |_| |_|\__,_|`, "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
