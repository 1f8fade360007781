// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"fmt"
	"time"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/internal/pool"
)

// MaxChannels bounds Config.OutputChannels.
const MaxChannels = 8

// Config describes the PCM a session produces and how it is buffered.
type Config struct {
	// OutputChannels is the channel count of decoded chunks.
	OutputChannels int
	// OutputSampleRate is the sample rate of decoded chunks in Hz.
	OutputSampleRate int
	// Quality of the resampler, 0 to audio.MaxQuality.
	Quality int
	// BufferTime is the amount of audio decoded per chunk.
	BufferTime time.Duration
	// PoolSize is the number of idle decoders and resamplers kept per
	// configuration.
	PoolSize int
}

// DefaultConfig returns stereo 44.1kHz output in 200ms chunks.
func DefaultConfig() Config {
	return Config{
		OutputChannels:   2,
		OutputSampleRate: 44100,
		Quality:          audio.DefaultQuality,
		BufferTime:       200 * time.Millisecond,
		PoolSize:         pool.DefaultDepth,
	}
}

// Validate reports the first field out of range.
func (c Config) Validate() error {
	switch {
	case c.OutputChannels < 1 || c.OutputChannels > MaxChannels:
		return fmt.Errorf("%w: output channels %d not in [1, %d]", ErrInvalidConfig, c.OutputChannels, MaxChannels)
	case c.OutputSampleRate <= 0:
		return fmt.Errorf("%w: output sample rate %d", ErrInvalidConfig, c.OutputSampleRate)
	case c.Quality < 0 || c.Quality > audio.MaxQuality:
		return fmt.Errorf("%w: quality %d not in [0, %d]", ErrInvalidConfig, c.Quality, audio.MaxQuality)
	case c.BufferTime <= 0:
		return fmt.Errorf("%w: buffer time %s", ErrInvalidConfig, c.BufferTime)
	case c.PoolSize < 0:
		return fmt.Errorf("%w: pool size %d", ErrInvalidConfig, c.PoolSize)
	}

	return nil
}
