// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/bytesource"
	"github.com/ik5/audstream/formats"
	"github.com/ik5/audstream/formats/mp3"
	"github.com/ik5/audstream/internal/pool"
)

// frameDecoder is the part of mp3.FrameDecoder a session drives.
type frameDecoder interface {
	Start(md *mp3.Metadata, src *bytesource.Reader, offset int64) error
	Read(dst [][]float32) (int, error)
	BytesConsumed() int64
	Reset()
}

type decoderKey struct {
	codec      string
	channels   int
	sampleRate int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger sessions derive theirs from.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine opens decode sessions and owns the decoder and resampler pools they
// borrow from. It is safe for concurrent use; each Session is not.
type Engine struct {
	cfg    Config
	logger *zap.Logger

	decoders   *pool.Pool[decoderKey, frameDecoder]
	resamplers *audio.ResamplerPool
	newDecoder func() frameDecoder
}

// NewEngine validates cfg and returns an engine for it.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		logger:     zap.NewNop(),
		resamplers: audio.NewResamplerPool(cfg.PoolSize),
		newDecoder: func() frameDecoder { return mp3.NewFrameDecoder() },
	}

	for _, opt := range opts {
		opt(e)
	}

	depth := cfg.PoolSize
	if depth == 0 {
		depth = pool.DefaultDepth
	}
	e.decoders = pool.New(depth,
		func(decoderKey) (frameDecoder, error) { return e.newDecoder(), nil },
		func(d frameDecoder) error {
			d.Reset()
			return nil
		})

	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// OpenFile opens path and starts a session over it. The file is closed with
// the session.
func (e *Engine) OpenFile(path string) (*Session, error) {
	src, err := bytesource.Open(path)
	if err != nil {
		return nil, err
	}

	s, err := e.Open(src, filepath.Base(path))
	if err != nil {
		return nil, multierr.Append(err, src.Close())
	}
	s.ownsSrc = true

	return s, nil
}

// Open recognizes the codec of src, demuxes it and returns a session
// positioned at the start of the audio. name is used in errors and logs.
// Streams that are not mp3 fail with ErrUnsupportedCodec.
func (e *Engine) Open(src *bytesource.Reader, name string) (*Session, error) {
	codec, err := sniff(src)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if codec != formats.MP3 {
		if codec == "" {
			codec = "unknown"
		}
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedCodec, name, codec)
	}

	md, err := mp3.Demux(src)
	if errors.Is(err, mp3.ErrNotRecognized) {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedCodec, name, err)
	}
	if err != nil {
		return nil, fmt.Errorf("demuxing %s: %w", name, err)
	}

	s, err := e.newSession(src, name, codec, md)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("session opened",
		zap.String("codec", codec),
		zap.Int("sample_rate", md.SampleRate),
		zap.Int("channels", md.Channels),
		zap.Bool("vbr", md.VBR),
		zap.Float64("duration", md.Duration))

	return s, nil
}

func sniff(src *bytesource.Reader) (string, error) {
	head := make([]byte, formats.SniffLen)

	n, err := io.ReadFull(src.Section(0, formats.SniffLen), head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("%w", err)
	}

	return formats.Sniff(head[:n]), nil
}

func (e *Engine) newSession(src *bytesource.Reader, name, codec string, md *mp3.Metadata) (*Session, error) {
	dec, err := e.decoders.Acquire(decoderKey{codec: codec, channels: md.Channels, sampleRate: md.SampleRate})
	if err != nil {
		return nil, fmt.Errorf("acquiring decoder: %w", err)
	}

	rs, err := e.resamplers.Acquire(audio.ResamplerKey{
		Channels: e.cfg.OutputChannels,
		InRate:   md.SampleRate,
		OutRate:  e.cfg.OutputSampleRate,
		Quality:  e.cfg.Quality,
	})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("acquiring resampler: %w", err), e.decoders.Release(dec))
	}

	release := func(err error) error {
		return multierr.Combine(err, e.decoders.Release(dec), e.resamplers.Release(rs))
	}

	if err := rs.Start(); err != nil {
		return nil, release(err)
	}
	if err := dec.Start(md, src, md.DataStart); err != nil {
		return nil, release(err)
	}

	frames := max(1, int(e.cfg.BufferTime.Seconds()*float64(md.SampleRate)))
	planar := make([][]float32, md.Channels)
	for ch := range planar {
		planar[ch] = make([]float32, frames)
	}

	id := uuid.New()

	return &Session{
		id:     id,
		name:   name,
		codec:  codec,
		engine: e,
		logger: e.logger.With(zap.Stringer("session", id), zap.String("name", name)),
		src:    src,
		md:     md,
		dec:    dec,
		rs:     rs,
		mixer:  audio.NewChannelMixer(e.cfg.OutputChannels),
		planar: planar,
		view:   make([][]float32, md.Channels),
		skip:   md.EncoderDelay,
		offset: md.DataStart,
	}, nil
}
