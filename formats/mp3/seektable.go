// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"math"

	"github.com/ik5/audstream/bytesource"
)

// SeekTable maps frame indices to byte offsets. A scanned table grows lazily
// as seeks reach further into the stream; a table built from a VBRI header is
// complete from the start and holds one entry per Step frames.
type SeekTable struct {
	Frames         int
	TOCFilledUntil float64
	LastFrameSize  int
	IsFromMetadata bool

	table     []int64
	step      int
	exhausted bool
}

// NewSeekTable returns an empty table to be filled by scanning.
func NewSeekTable() *SeekTable {
	return &SeekTable{
		table: make([]int64, 0, 128),
		step:  1,
	}
}

func newMetadataSeekTable(offsets []int64, step int) *SeekTable {
	return &SeekTable{
		Frames:         len(offsets),
		IsFromMetadata: true,
		table:          offsets,
		step:           step,
		exhausted:      true,
	}
}

// Step returns the number of frames between two table entries.
func (t *SeekTable) Step() int { return t.step }

// Offsets returns the recorded frame offsets. The slice must not be modified.
func (t *SeekTable) Offsets() []int64 { return t.table[:t.Frames] }

// Exhausted reports whether the scan has reached the end of the data.
func (t *SeekTable) Exhausted() bool { return t.exhausted }

// FillUntil scans frame headers until the table covers target seconds or the
// data region ends. Scanning resumes after the last recorded frame.
func (t *SeekTable) FillUntil(target float64, md *Metadata, src *bytesource.Reader) error {
	if t.TOCFilledUntil >= target || t.exhausted {
		return nil
	}

	spf := md.SamplesPerFrame
	maxFrames := int(math.Ceil(target * float64(md.SampleRate) / float64(spf)))
	window := int64(math.Ceil(md.MaxByteSizePerSample * float64(spf)))

	offset := md.DataStart
	if t.Frames > 0 {
		offset = t.table[t.Frames-1] + int64(t.LastFrameSize)
	}

	for t.Frames < maxFrames {
		start, fh, ok, err := nextFrame(src, offset, md.DataEnd, window)
		if err != nil {
			return err
		}
		if !ok {
			t.exhausted = true
			break
		}

		t.table = append(t.table, start)
		t.Frames++
		t.LastFrameSize = fh.frameSize
		offset = start + int64(fh.frameSize)
	}

	t.TOCFilledUntil = float64(spf) / float64(md.SampleRate) * float64(t.Frames)

	return nil
}

// nextFrame returns the start of the first valid frame header at or after
// offset that fits before end.
func nextFrame(src *bytesource.Reader, offset, end, window int64) (int64, frameHeader, bool, error) {
	var header uint32

	for offset < end {
		buf, bufStart, err := src.BufferOfSizeAt(window, offset)
		if err != nil {
			return 0, frameHeader{}, false, err
		}

		stop := min(end, bufStart+int64(len(buf)))
		for ; offset < stop; offset++ {
			header = header<<8 | uint32(buf[offset-bufStart])
			if !isSync(header) {
				continue
			}
			if fh, ok := parseHeader(header); ok {
				return offset - 3, fh, true, nil
			}
		}
	}

	return 0, frameHeader{}, false, nil
}

// ClosestFrameOf snaps frame to the nearest frame the table has an entry for.
func (t *SeekTable) ClosestFrameOf(frame int) int {
	if t.Frames == 0 {
		return 0
	}

	i := int(math.Round(float64(frame) / float64(t.step)))

	return min(max(i, 0), t.Frames-1) * t.step
}

// OffsetOfFrame returns the byte offset recorded for frame, clamped to the
// table. An empty table yields 0.
func (t *SeekTable) OffsetOfFrame(frame int) int64 {
	if t.Frames == 0 {
		return 0
	}

	i := min(max(frame/t.step, 0), t.Frames-1)

	return t.table[i]
}
