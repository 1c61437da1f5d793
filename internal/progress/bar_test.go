package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gajzzs/usbwrite/internal/imaging"
)

func TestCalcBar(t *testing.T) {
	bar := CalcBar(50, 48)
	assert.Len(t, bar, 48)
	assert.Equal(t, strings.Repeat("=", 24), bar[:24])
	assert.Equal(t, strings.Repeat(" ", 24), bar[24:])

	tests := []struct {
		percent, length int
		want            string
	}{
		{0, 4, "    "},
		{100, 4, "===="},
		{33, 10, "===       "},
		{99, 10, "========= "},
		{150, 3, "==="},
		{-10, 3, "   "},
		{50, 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalcBar(tt.percent, tt.length))
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00:00", FormatClock(0))
	assert.Equal(t, "0:01:05", FormatClock(65))
	assert.Equal(t, "1:00:00", FormatClock(3600))
	assert.Equal(t, "27:46:39", FormatClock(99999))
	assert.Equal(t, "0:00:00", FormatClock(-3))
}

func TestBarUpdate(t *testing.T) {
	var out bytes.Buffer
	start := time.Unix(1700000000, 0)
	bar := &Bar{
		Out:   &out,
		Width: 10,
		Now:   func() time.Time { return start.Add(10 * time.Second) },
	}

	bar.Update(50, start, 50, 100)
	assert.Equal(t, "\r 50% 0:00:10 [=====     ] ETA 0:00:10", out.String())

	out.Reset()
	bar.Update(100, start, 100, 100)
	bar.Finish()
	assert.Equal(t, "\r100% 0:00:10 [==========] ETA 0:00:00\n", out.String())
}

func TestBarIsProgressFunc(t *testing.T) {
	var out bytes.Buffer
	var fn imaging.ProgressFunc = NewBar(&out, 8).Update
	fn(0, time.Now(), 0, 10)
	assert.Contains(t, out.String(), "[        ] ETA 0:00:00")
}

func TestNewBarWidth(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 20, NewBar(&out, 20).Width)
	// A buffer is not a terminal.
	assert.Equal(t, DefaultWidth, NewBar(&out, 0).Width)
}
