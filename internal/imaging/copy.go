// Package imaging writes raw disk images to block devices.
package imaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	// DefaultBlockSize is used when the destination reports no block size.
	DefaultBlockSize = 4096
	// DefaultInterval is the minimum time between two progress callbacks.
	DefaultInterval = time.Second
)

// ProgressFunc receives the integer percentage written, the time the copy
// started, the bytes read so far and the total.
type ProgressFunc func(percent int, start time.Time, read, total int64)

// Copier streams a file to a device in fixed-size chunks.
type Copier struct {
	// BlockSize overrides the chunk size when > 0.
	BlockSize int
	// Interval throttles progress callbacks; 0 means DefaultInterval.
	Interval time.Duration
	// Now is the clock, time.Now when nil.
	Now func() time.Time
}

// Copy writes src to dst with the default Copier.
func Copy(ctx context.Context, src, dst string, fn ProgressFunc) error {
	return (&Copier{}).Copy(ctx, src, dst, fn)
}

// Copy writes every byte of src to the start of dst. The destination must
// already exist. It is synced and closed on every return, including when ctx
// is cancelled between chunks. fn may be nil.
func (c *Copier) Copy(ctx context.Context, src, dst string, fn ProgressFunc) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat image: %w", err)
	}
	total := info.Size()

	out, err := os.OpenFile(dst, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	defer func() {
		if serr := out.Sync(); serr != nil && err == nil {
			err = fmt.Errorf("sync device: %w", serr)
		}
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close device: %w", cerr)
		}
	}()

	buf := make([]byte, c.chunkSize(dst))
	now := c.clock()
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	start := now()
	var (
		read     int64
		notified bool
		last     time.Time
	)
	for {
		if cerr := ctx.Err(); cerr != nil {
			return fmt.Errorf("copy interrupted after %d of %d bytes: %w", read, total, cerr)
		}

		n, rerr := io.ReadFull(in, buf)
		if n > 0 {
			w, werr := out.Write(buf[:n])
			if werr != nil {
				return fmt.Errorf("write device: %w", werr)
			}
			if w < n {
				return fmt.Errorf("write device: %w", io.ErrShortWrite)
			}
			read += int64(n)
		}

		done := errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) || read >= total
		if rerr != nil && !done {
			return fmt.Errorf("read image: %w", rerr)
		}

		if fn != nil {
			t := now()
			if done || !notified || t.Sub(last) >= interval {
				fn(percent(read, total), start, read, total)
				notified = true
				last = t
			}
		}
		if done {
			return nil
		}
	}
}

func (c *Copier) chunkSize(dst string) int {
	if c.BlockSize > 0 {
		return c.BlockSize
	}
	if size := blockSize(dst); size > 0 {
		return size
	}
	return DefaultBlockSize
}

func (c *Copier) clock() func() time.Time {
	if c.Now != nil {
		return c.Now
	}
	return time.Now
}

func percent(read, total int64) int {
	if total <= 0 {
		return 100
	}
	return int(read * 100 / total)
}

// CalcETA extrapolates the seconds left from the average rate so far. It is
// 0 until something has been read.
func CalcETA(read, total int64, elapsed float64) int64 {
	if read < 1 {
		return 0
	}
	return int64(float64(total-read) * elapsed / float64(read))
}
