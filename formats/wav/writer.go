// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audstream/utils"
)

const (
	bitDepth  = 16
	formatPCM = 1
)

// Writer streams float32 audio into a 16-bit PCM WAV file. The RIFF sizes are
// patched on Close, which is why the destination must be seekable.
type Writer struct {
	enc      *gowav.Encoder
	buf      *goaudio.IntBuffer
	channels int
	frames   int
	closed   bool
}

// NewWriter prepares a WAV encoder on ws. Nothing is written until the first
// Write or Close.
func NewWriter(ws io.WriteSeeker, sampleRate, channels int) (*Writer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	return &Writer{
		enc: gowav.NewEncoder(ws, sampleRate, bitDepth, channels, formatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		channels: channels,
	}, nil
}

func (w *Writer) SampleRate() int { return w.buf.Format.SampleRate }
func (w *Writer) Channels() int   { return w.channels }

// Frames reports how many frames were written so far.
func (w *Writer) Frames() int { return w.frames }

// Write appends planar samples, one plane per channel.
func (w *Writer) Write(planes [][]float32) error {
	if w.closed {
		return ErrClosed
	}
	if len(planes) != w.channels {
		return fmt.Errorf("%w: got %d, want %d", ErrChannelMismatch, len(planes), w.channels)
	}

	n := len(planes[0])
	for _, p := range planes[1:] {
		if len(p) != n {
			return ErrPlaneLength
		}
	}
	if n == 0 {
		return nil
	}

	data := w.grow(n * w.channels)
	for i := range n {
		for ch, p := range planes {
			data[i*w.channels+ch] = int(utils.Float32ToInt16(p[i]))
		}
	}

	return w.flush(n)
}

// WriteInterleaved appends frames laid out as L R L R ...
func (w *Writer) WriteInterleaved(samples []float32) error {
	if w.closed {
		return ErrClosed
	}
	if len(samples)%w.channels != 0 {
		return fmt.Errorf("%w: %d samples, %d channels", ErrPartialFrame, len(samples), w.channels)
	}
	if len(samples) == 0 {
		return nil
	}

	data := w.grow(len(samples))
	for i, s := range samples {
		data[i] = int(utils.Float32ToInt16(s))
	}

	return w.flush(len(samples) / w.channels)
}

func (w *Writer) grow(n int) []int {
	if cap(w.buf.Data) < n {
		w.buf.Data = make([]int, n)
	}
	w.buf.Data = w.buf.Data[:n]
	return w.buf.Data
}

func (w *Writer) flush(frames int) error {
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("encoding wav: %w", err)
	}
	w.frames += frames
	return nil
}

// Close finalizes the header. It does not close the underlying writer.
// Calling Close more than once is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	// the encoder only emits its header on the first Write
	if w.frames == 0 {
		w.buf.Data = w.buf.Data[:0]
		if err := w.enc.Write(w.buf); err != nil {
			return fmt.Errorf("encoding wav: %w", err)
		}
	}
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}
