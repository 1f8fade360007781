// SPDX-License-Identifier: EPL-2.0

// Package audiotest builds deterministic fixtures for the decoding and
// conversion tests: synthetic MP3 streams and generated PCM signals.
package audiotest

import (
	"io"
	"math"
)

// Signal yields the value of one channel at one frame.
type Signal func(frame, channel int) float32

// Silence is the all-zero signal.
func Silence(int, int) float32 { return 0 }

// Constant holds every channel at v.
func Constant(v float32) Signal {
	return func(int, int) float32 { return v }
}

// Sine is a unit-amplitude tone of freq Hz sampled at rate, identical on
// every channel.
func Sine(rate int, freq float64) Signal {
	step := 2 * math.Pi * freq / float64(rate)
	return func(frame, _ int) float32 {
		return float32(math.Sin(step * float64(frame)))
	}
}

// PerChannel holds channel c at levels[c].
func PerChannel(levels ...float32) Signal {
	return func(_, channel int) float32 { return levels[channel] }
}

// Planes renders frames of sig into one slice per channel, the layout the
// frame decoders hand to the channel mixer.
func Planes(channels, frames int, sig Signal) [][]float32 {
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
		for i := range out[ch] {
			out[ch][i] = sig(i, ch)
		}
	}

	return out
}

// Source plays a Signal as interleaved float32 PCM for a fixed number of
// frames. It satisfies audio.Source.
type Source struct {
	rate     int
	channels int
	frames   int
	pos      int
	sig      Signal
	closed   bool
}

// NewSource returns a Source of frames frames per channel.
func NewSource(rate, channels, frames int, sig Signal) *Source {
	return &Source{rate: rate, channels: channels, frames: frames, sig: sig}
}

func (s *Source) SampleRate() int { return s.rate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BufSize() int    { return 4096 }

// Closed reports whether Close was called.
func (s *Source) Closed() bool { return s.closed }

func (s *Source) Close() error {
	s.closed = true
	return nil
}

// Reset rewinds to frame zero.
func (s *Source) Reset() { s.pos = 0 }

// ReadSamples fills whole frames of dst. The read that reaches the last
// frame returns io.EOF together with its samples.
func (s *Source) ReadSamples(dst []float32) (int, error) {
	left := s.frames - s.pos
	if left <= 0 {
		return 0, io.EOF
	}

	n := min(len(dst)/s.channels, left)
	for i := range n {
		row := dst[i*s.channels : (i+1)*s.channels]
		for ch := range row {
			row[ch] = s.sig(s.pos+i, ch)
		}
	}
	s.pos += n

	if s.pos == s.frames {
		return n * s.channels, io.EOF
	}

	return n * s.channels, nil
}
