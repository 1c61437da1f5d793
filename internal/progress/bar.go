// Package progress renders a single live-updating progress line.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/gajzzs/usbwrite/internal/imaging"
)

const (
	// DefaultWidth is the bar length used when nothing else is known.
	DefaultWidth = 48
	// FillChar marks the completed part of the bar.
	FillChar = '='

	// chrome is the width of everything on the line except the bar:
	// "100% 0:00:00 [" + "] ETA 0:00:00".
	chrome = 27
)

// CalcBar returns a bar of exactly length characters with
// floor(percent/100*length) fill characters.
func CalcBar(percent, length int) string {
	if length <= 0 {
		return ""
	}
	filled := percent * length / 100
	if filled < 0 {
		filled = 0
	}
	if filled > length {
		filled = length
	}
	return strings.Repeat(string(FillChar), filled) + strings.Repeat(" ", length-filled)
}

// FormatClock formats seconds as H:MM:SS.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

// Bar writes a "\r"-refreshed progress line.
type Bar struct {
	Out   io.Writer
	Width int
	// Now is the clock, time.Now when nil.
	Now func() time.Time
}

// NewBar returns a bar writing to out. A width <= 0 is derived from the
// terminal, falling back to DefaultWidth.
func NewBar(out io.Writer, width int) *Bar {
	if width <= 0 {
		width = TerminalWidth(out)
	}
	return &Bar{Out: out, Width: width}
}

// TerminalWidth sizes the bar to fit the terminal behind out.
func TerminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return DefaultWidth
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols-chrome-1 < 10 {
		return DefaultWidth
	}
	return cols - chrome - 1
}

// Update has the signature of imaging.ProgressFunc.
func (b *Bar) Update(percent int, start time.Time, read, total int64) {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	elapsed := now().Sub(start).Seconds()
	eta := imaging.CalcETA(read, total, elapsed)

	fmt.Fprintf(b.Out, "\r%3d%% %s [%s] ETA %s",
		percent, FormatClock(int64(elapsed)), CalcBar(percent, b.Width), FormatClock(eta))
}

// Finish ends the progress line.
func (b *Bar) Finish() {
	fmt.Fprintln(b.Out)
}
