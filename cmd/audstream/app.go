// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/pipeline"
	"github.com/ik5/audstream/trackinfo"
)

const (
	flagDebug    = "debug"
	flagJobs     = "jobs"
	flagTime     = "time"
	flagOut      = "out"
	flagSeek     = "seek"
	flagRate     = "rate"
	flagChannels = "channels"
	flagQuality  = "quality"
	flagBuffer   = "buffer"
	flagPool     = "pool"

	envPrefix = "AUDSTREAM_"
)

func env(name string) []string {
	return []string{envPrefix + name}
}

// runner carries state shared by the commands of one invocation.
type runner struct {
	logger *zap.Logger
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	return cfg.Build()
}

func engineFlags(defaults pipeline.Config) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    flagQuality,
			Aliases: []string{"q"},
			EnvVars: env("QUALITY"),
			Value:   defaults.Quality,
			Usage:   fmt.Sprintf("resampler quality, 0 to %d", audio.MaxQuality),
		},
		&cli.DurationFlag{
			Name:    flagBuffer,
			EnvVars: env("BUFFER"),
			Value:   defaults.BufferTime,
			Usage:   "audio decoded per chunk",
		},
		&cli.IntFlag{
			Name:    flagPool,
			EnvVars: env("POOL"),
			Value:   defaults.PoolSize,
			Usage:   "idle decoders and resamplers kept per format",
		},
	}
}

func newApp() *cli.App {
	r := &runner{logger: zap.NewNop()}
	defaults := pipeline.DefaultConfig()

	return &cli.App{
		Name:            "audstream",
		Usage:           "inspect, seek and decode MP3 streams",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				EnvVars: env("DEBUG"),
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			logger, err := newLogger(c.Bool(flagDebug))
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			r.logger = logger

			return nil
		},
		After: func(*cli.Context) error {
			// stderr does not support fsync on every platform
			_ = r.logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "probe",
				Usage:     "print tags and stream properties",
				ArgsUsage: "<file>...",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    flagJobs,
						Aliases: []string{"j"},
						EnvVars: env("JOBS"),
						Value:   trackinfo.DefaultLimit,
						Usage:   "files parsed in parallel",
					},
				},
				Action: r.probe,
			},
			{
				Name:      "seek",
				Usage:     "show where decoding restarts for a time",
				ArgsUsage: "<file>",
				Flags: append([]cli.Flag{
					&cli.Float64Flag{
						Name:     flagTime,
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "target time in seconds",
					},
				}, engineFlags(defaults)...),
				Action: r.seek,
			},
			{
				Name:      "decode",
				Usage:     "decode to a WAV file",
				ArgsUsage: "<file>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     flagOut,
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "write WAV to `FILE`",
					},
					&cli.Float64Flag{
						Name:  flagSeek,
						Usage: "start at this time in seconds",
					},
					&cli.IntFlag{
						Name:    flagRate,
						Aliases: []string{"r"},
						EnvVars: env("RATE"),
						Value:   defaults.OutputSampleRate,
						Usage:   "output sample rate",
					},
					&cli.IntFlag{
						Name:    flagChannels,
						Aliases: []string{"c"},
						EnvVars: env("CHANNELS"),
						Value:   defaults.OutputChannels,
						Usage:   fmt.Sprintf("output channels, 1 to %d", pipeline.MaxChannels),
					},
				}, engineFlags(defaults)...),
				Action: r.decode,
			},
			{
				Name:      "mono16",
				Usage:     "convert to mono 16-bit WAV at a fixed rate",
				ArgsUsage: "<in> <out.wav>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    flagRate,
						Aliases: []string{"r"},
						Value:   8000,
						Usage:   "output sample rate",
					},
				},
				Action: r.mono16,
			},
		},
	}
}
