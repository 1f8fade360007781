// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// ResampledSource streams src converted to another sample rate through a
// Resampler. Channel count is preserved.
type ResampledSource struct {
	src     Source
	rs      *Resampler
	tmp     []float32
	planar  [][]float32
	pending []float32
	pos     int
	eof     bool
}

// NewResampledSource returns src resampled to dstRate Hz at the given quality.
func NewResampledSource(src Source, dstRate, quality int) (*ResampledSource, error) {
	rs, err := NewResampler(src.Channels(), src.SampleRate(), dstRate, quality)
	if err != nil {
		return nil, err
	}
	if err := rs.Start(); err != nil {
		return nil, err
	}

	bufSize := max(src.BufSize(), 1024)
	bufSize -= bufSize % src.Channels()

	return &ResampledSource{
		src:    src,
		rs:     rs,
		tmp:    make([]float32, bufSize),
		planar: make([][]float32, src.Channels()),
	}, nil
}

func (r *ResampledSource) SampleRate() int { return r.rs.OutRate() }
func (r *ResampledSource) Channels() int   { return r.rs.Channels() }
func (r *ResampledSource) BufSize() int    { return r.src.BufSize() }

func (r *ResampledSource) Close() error {
	r.rs.Reset()

	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples fills dst with interleaved samples at the output rate.
// dst length should be a multiple of the channel count.
func (r *ResampledSource) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.Channels() != 0 {
		return 0, ErrInvalidDstSize
	}

	written := 0
	for written < len(dst) {
		if r.pos < len(r.pending) {
			n := copy(dst[written:], r.pending[r.pos:])
			r.pos += n
			written += n
			continue
		}
		if r.eof {
			break
		}

		read, err := r.fill()
		if err != nil {
			return written, err
		}
		if read == 0 && !r.eof {
			break
		}
	}

	if r.eof && r.pos >= len(r.pending) {
		return written, io.EOF
	}

	return written, nil
}

// fill reads one buffer from src and resamples it into pending. It returns
// the number of frames read from src.
func (r *ResampledSource) fill() (int, error) {
	ch := r.Channels()

	n, err := r.src.ReadSamples(r.tmp)
	if errors.Is(err, io.EOF) {
		r.eof = true
	} else if err != nil {
		return 0, fmt.Errorf("%w", err)
	}

	frames := n / ch
	for c := range r.planar {
		if cap(r.planar[c]) < frames {
			r.planar[c] = make([]float32, len(r.tmp)/ch)
		}
		plane := r.planar[c][:frames]
		for f := range plane {
			plane[f] = r.tmp[f*ch+c]
		}
		r.planar[c] = plane
	}

	out, err := r.rs.Resample(r.planar, frames)
	if err != nil {
		return 0, err
	}

	produced := len(out[0])
	if cap(r.pending) < produced*ch {
		r.pending = make([]float32, produced*ch)
	}
	r.pending = r.pending[:produced*ch]
	r.pos = 0

	for f := range produced {
		for c, plane := range out {
			r.pending[f*ch+c] = plane[f]
		}
	}

	return frames, nil
}
