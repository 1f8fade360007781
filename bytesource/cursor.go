// SPDX-License-Identifier: EPL-2.0

package bytesource

import "io"

// Cursor streams [start, end) of a Reader through its bulk window.
type Cursor struct {
	src    *Reader
	pos    int64
	end    int64
	window int64
}

// NewCursor returns an io.Reader over [start, end). window is the size
// requested from BufferOfSizeAt on each miss.
func (s *Reader) NewCursor(start, end, window int64) *Cursor {
	return &Cursor{
		src:    s,
		pos:    start,
		end:    min(end, s.size),
		window: max(window, 1),
	}
}

// Offset returns the medium offset of the next byte Read will return.
func (c *Cursor) Offset() int64 { return c.pos }

func (c *Cursor) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if c.pos >= c.end {
		return 0, io.EOF
	}

	want := min(int64(len(p)), c.end-c.pos)

	buf, bufStart, err := c.src.BufferOfSizeAt(max(c.window, want), c.pos)
	if err != nil {
		return 0, err
	}

	n := copy(p[:want], buf[c.pos-bufStart:])
	c.pos += int64(n)

	return n, nil
}
