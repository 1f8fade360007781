// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/bytesource"
	"github.com/ik5/audstream/utils"
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// bytesPerFrame of go-mp3 output: two channels of 16-bit little-endian PCM.
const bytesPerFrame = 4

func openGoMP3(r io.Reader) (mp3Reader, error) {
	return gomp3.NewDecoder(r)
}

// countingReader counts the compressed bytes handed to the decoder.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// FrameDecoder turns the compressed data region of a stream into planar
// float32 samples. Start positions it at a byte offset; End must be called
// before it can be started again.
type FrameDecoder struct {
	open func(io.Reader) (mp3Reader, error)

	dec      mp3Reader
	counter  countingReader
	channels int
	started  bool
	eof      bool
	buf      []byte
}

// NewFrameDecoder returns a decoder backed by go-mp3.
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{open: openGoMP3}
}

// Start positions the decoder at offset, which should be a frame boundary
// such as SeekResult.Offset or md.DataStart.
func (d *FrameDecoder) Start(md *Metadata, src *bytesource.Reader, offset int64) error {
	if d.started {
		return ErrDecoderStarted
	}

	window := int64(math.Ceil(md.MaxByteSizePerSample * float64(md.SamplesPerFrame)))
	d.counter = countingReader{r: src.NewCursor(offset, md.DataEnd, window)}
	d.channels = md.Channels
	d.dec = nil
	d.eof = offset >= md.DataEnd
	d.started = true

	return nil
}

// End finishes the current decoding run.
func (d *FrameDecoder) End() {
	d.started = false
	d.dec = nil
	d.counter = countingReader{}
}

// Reset ends any run in progress.
func (d *FrameDecoder) Reset() {
	d.End()
	d.eof = false
}

// Started reports whether Start was called without a matching End.
func (d *FrameDecoder) Started() bool { return d.started }

// Channels returns the channel count of the stream being decoded.
func (d *FrameDecoder) Channels() int { return d.channels }

// BytesConsumed returns the compressed bytes read since Start.
func (d *FrameDecoder) BytesConsumed() int64 { return d.counter.n }

// Read decodes up to len(dst[0]) sample frames into dst, one slice per
// channel, and returns how many were written. It returns io.EOF once the data
// region is exhausted.
func (d *FrameDecoder) Read(dst [][]float32) (int, error) {
	if !d.started {
		return 0, ErrDecoderNotStarted
	}
	if len(dst) < d.channels {
		return 0, fmt.Errorf("%w: got %d channels, want %d", audio.ErrInvalidDstSize, len(dst), d.channels)
	}
	if d.eof {
		return 0, io.EOF
	}

	if d.dec == nil {
		dec, err := d.open(&d.counter)
		if err != nil {
			if isEndOfData(err) {
				d.eof = true
				return 0, io.EOF
			}
			return 0, fmt.Errorf("opening frame decoder: %w", err)
		}
		d.dec = dec
	}

	want := len(dst[0])
	n := 0

	for n < want {
		need := (want - n) * bytesPerFrame
		if cap(d.buf) < need {
			d.buf = make([]byte, need)
		}
		d.buf = d.buf[:need]

		got, err := d.dec.Read(d.buf)
		frames := got / bytesPerFrame

		for i := range frames {
			b := d.buf[i*bytesPerFrame:]
			dst[0][n+i] = utils.Int16ToFloat32(int16(uint16(b[0]) | uint16(b[1])<<8))
			if d.channels > 1 {
				dst[1][n+i] = utils.Int16ToFloat32(int16(uint16(b[2]) | uint16(b[3])<<8))
			}
		}
		n += frames

		if err != nil {
			if isEndOfData(err) {
				d.eof = true
				return n, io.EOF
			}
			return n, fmt.Errorf("decoding frame: %w", err)
		}
		if got == 0 {
			break
		}
	}

	return n, nil
}

func isEndOfData(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

type source struct {
	dec    *FrameDecoder
	md     *Metadata
	src    *bytesource.Reader
	planar [][]float32
}

func (s *source) SampleRate() int { return s.md.SampleRate }
func (s *source) Channels() int   { return s.md.Channels }
func (s *source) BufSize() int    { return s.md.SamplesPerFrame * s.md.Channels }

func (s *source) Close() error {
	s.dec.End()
	return s.src.Close()
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / s.md.Channels
	if frames == 0 {
		return 0, audio.ErrInvalidDstSize
	}

	for ch := range s.planar {
		if cap(s.planar[ch]) < frames {
			s.planar[ch] = make([]float32, frames)
		}
		s.planar[ch] = s.planar[ch][:frames]
	}

	n, err := s.dec.Read(s.planar)
	for i := range n {
		for ch, plane := range s.planar {
			dst[i*len(s.planar)+ch] = plane[i]
		}
	}

	return n * len(s.planar), err
}

// Decoder adapts Demux and FrameDecoder to audio.Decoder.
type Decoder struct{}

// Decode demuxes r and returns a source playing it from the start. Files and
// other io.ReaderAt values with a Size method are read in windows; anything
// else is buffered in memory.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	src, err := newByteSource(r)
	if err != nil {
		return nil, err
	}

	md, err := Demux(src)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	dec := NewFrameDecoder()
	if err := dec.Start(md, src, md.DataStart); err != nil {
		return nil, err
	}

	return &source{
		dec:    dec,
		md:     md,
		src:    src,
		planar: make([][]float32, md.Channels),
	}, nil
}

type sizedReaderAt interface {
	io.ReaderAt
	Size() int64
}

func newByteSource(r io.Reader) (*bytesource.Reader, error) {
	switch v := r.(type) {
	case *os.File:
		info, err := v.Stat()
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		return bytesource.New(v, info.Size()), nil
	case sizedReaderAt:
		return bytesource.New(v, v.Size()), nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return bytesource.FromBytes(data), nil
}
