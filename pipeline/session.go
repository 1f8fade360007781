// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/bytesource"
	"github.com/ik5/audstream/formats/mp3"
	"github.com/ik5/audstream/seeker"
)

// Outcome is how a Run ended.
type Outcome int

const (
	// OutcomeCompleted means the stream was decoded to its end.
	OutcomeCompleted Outcome = iota
	// OutcomeCancelled means the context was cancelled or Abort was called.
	OutcomeCancelled
	// OutcomeFailed means decoding or the sink returned an error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	}

	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Chunk is one block of decoded output.
type Chunk struct {
	// Channels holds one slice per output channel at the output sample rate.
	// The slices are reused by the next DecodeChunk call.
	Channels [][]float32
	// BytesConsumed is the compressed data read to produce the chunk.
	BytesConsumed int64
	// Offset is the stream position after the chunk.
	Offset int64
}

// Frames returns the number of samples per channel.
func (c Chunk) Frames() int {
	if len(c.Channels) == 0 {
		return 0
	}

	return len(c.Channels[0])
}

// Sink receives the chunks of a Run.
type Sink func(Chunk) error

// Session decodes one stream: compressed frames are decoded, remixed to the
// output channel count and resampled to the output rate. A session is not
// safe for concurrent use except for Abort.
type Session struct {
	id      uuid.UUID
	name    string
	codec   string
	engine  *Engine
	logger  *zap.Logger
	src     *bytesource.Reader
	ownsSrc bool
	md      *mp3.Metadata

	dec   frameDecoder
	rs    *audio.Resampler
	mixer *audio.ChannelMixer

	planar  [][]float32
	view    [][]float32
	decoded int

	skip     int
	offset   int64
	position float64
	eof      bool
	closed   bool
	aborted  atomic.Bool

	pending []float32
	pos     int
}

var _ audio.Source = (*Session)(nil)

func (s *Session) ID() uuid.UUID           { return s.id }
func (s *Session) Name() string            { return s.name }
func (s *Session) Codec() string           { return s.codec }
func (s *Session) Metadata() *mp3.Metadata { return s.md }
func (s *Session) SampleRate() int         { return s.engine.cfg.OutputSampleRate }
func (s *Session) Channels() int           { return s.engine.cfg.OutputChannels }
func (s *Session) BufSize() int            { return len(s.planar[0]) * s.Channels() }

// Position returns the playback time, in seconds, of the next output sample.
func (s *Session) Position() float64 { return s.position }

// Abort makes a running Run return OutcomeCancelled before its next chunk.
// It may be called from any goroutine.
func (s *Session) Abort() { s.aborted.Store(true) }

func (s *Session) Aborted() bool { return s.aborted.Load() }

// DecodeChunk decodes up to one buffer of audio. Priming samples left by a
// seek are dropped first, reading as many buffers as that takes, so a chunk
// is only empty at the end of the stream. With the last chunk of the stream
// it returns io.EOF.
func (s *Session) DecodeChunk() (Chunk, error) {
	if s.closed {
		return Chunk{}, ErrSessionClosed
	}
	if s.eof {
		return Chunk{}, io.EOF
	}

	var (
		consumed int64
		out      [][]float32
	)
	for {
		before := s.dec.BytesConsumed()

		n, err := s.dec.Read(s.planar)
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return Chunk{}, fmt.Errorf("decoding %s: %w", s.name, err)
		}
		s.eof = eof
		s.decoded = n
		consumed += s.dec.BytesConsumed() - before

		drop := min(s.skip, n)
		s.skip -= drop
		length := n - drop
		for ch, plane := range s.planar {
			s.view[ch] = plane[drop:n]
		}

		mixed := s.mixer.Mix(s.view, length)

		out, err = s.rs.Resample(mixed, length)
		if err != nil {
			return Chunk{}, fmt.Errorf("resampling %s: %w", s.name, err)
		}

		// n == 0 without EOF means the decoder stalled
		if len(out[0]) > 0 || eof || n == 0 {
			break
		}
	}

	s.offset += consumed
	s.position += float64(len(out[0])) / float64(s.SampleRate())

	chunk := Chunk{Channels: out, BytesConsumed: consumed, Offset: s.offset}
	if s.eof {
		s.logger.Debug("end of stream", zap.Float64("position", s.position))
		return chunk, io.EOF
	}

	return chunk, nil
}

// Seek repositions the session at t seconds. Decoding restarts a few frames
// early and the priming samples are dropped by the next DecodeChunk. Seek
// clears a previous Abort.
func (s *Session) Seek(t float64) (mp3.SeekResult, error) {
	if s.closed {
		return mp3.SeekResult{}, ErrSessionClosed
	}

	res, err := seeker.Seek(s.codec, t, s.md, s.src)
	if err != nil {
		return mp3.SeekResult{}, fmt.Errorf("%w", err)
	}

	s.dec.Reset()
	if err := s.dec.Start(s.md, s.src, res.Offset); err != nil {
		return mp3.SeekResult{}, fmt.Errorf("restarting decoder: %w", err)
	}

	s.rs.Reset()
	if err := s.rs.Start(); err != nil {
		return mp3.SeekResult{}, fmt.Errorf("restarting resampler: %w", err)
	}

	s.skip = res.SamplesToSkip
	s.offset = res.Offset
	s.position = res.Time
	s.eof = false
	s.pending = s.pending[:0]
	s.pos = 0
	s.aborted.Store(false)

	s.logger.Debug("seek",
		zap.Float64("requested", t),
		zap.Float64("time", res.Time),
		zap.Int64("offset", res.Offset),
		zap.Int("frame", res.Frame),
		zap.Int("skip", res.SamplesToSkip))

	return res, nil
}

// Run decodes chunks into sink until the stream ends, ctx is cancelled or
// Abort is called. Both are checked once per chunk and reported as
// OutcomeCancelled with a nil error.
func (s *Session) Run(ctx context.Context, sink Sink) (Outcome, error) {
	for {
		if s.aborted.Load() || ctx.Err() != nil {
			s.logger.Debug("decode cancelled", zap.Float64("position", s.position))
			return OutcomeCancelled, nil
		}

		chunk, err := s.DecodeChunk()
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return OutcomeFailed, err
		}

		if chunk.Frames() > 0 {
			if err := sink(chunk); err != nil {
				return OutcomeFailed, fmt.Errorf("sink: %w", err)
			}
		}

		if eof {
			return OutcomeCompleted, nil
		}
	}
}

// ReadSamples implements audio.Source with interleaved output frames.
func (s *Session) ReadSamples(dst []float32) (int, error) {
	ch := s.Channels()
	if len(dst)%ch != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	written := 0
	for written < len(dst) {
		if s.pos < len(s.pending) {
			n := copy(dst[written:], s.pending[s.pos:])
			s.pos += n
			written += n
			continue
		}
		if s.eof {
			break
		}

		chunk, err := s.DecodeChunk()
		if err != nil && !errors.Is(err, io.EOF) {
			return written, err
		}
		s.interleave(chunk)

		if chunk.Frames() == 0 && s.decoded == 0 && !s.eof {
			break
		}
	}

	if s.eof && s.pos >= len(s.pending) {
		return written, io.EOF
	}

	return written, nil
}

func (s *Session) interleave(c Chunk) {
	ch := len(c.Channels)
	frames := c.Frames()

	if cap(s.pending) < frames*ch {
		s.pending = make([]float32, frames*ch)
	}
	s.pending = s.pending[:frames*ch]
	s.pos = 0

	for f := range frames {
		for i, plane := range c.Channels {
			s.pending[f*ch+i] = plane[f]
		}
	}
}

// Close hands the decoder and resampler back to the engine. Release errors
// are combined.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := multierr.Combine(
		s.engine.decoders.Release(s.dec),
		s.engine.resamplers.Release(s.rs),
	)
	if s.ownsSrc {
		err = multierr.Append(err, s.src.Close())
	}

	s.logger.Debug("session closed", zap.Float64("position", s.position), zap.Error(err))

	return err
}
