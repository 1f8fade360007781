// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ik5/audstream"
	"github.com/ik5/audstream/formats/wav"
	"github.com/ik5/audstream/pipeline"
	"github.com/ik5/audstream/trackinfo"
)

const mono16ReadSize = 4096

func args(c *cli.Context, n int) ([]string, error) {
	if c.NArg() != n {
		return nil, fmt.Errorf("%s: want %d argument(s), got %d", c.Command.Name, n, c.NArg())
	}

	return c.Args().Slice(), nil
}

// engineConfig applies the flags shared by seek and decode.
func engineConfig(c *cli.Context) pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Quality = c.Int(flagQuality)
	cfg.BufferTime = c.Duration(flagBuffer)
	cfg.PoolSize = c.Int(flagPool)

	return cfg
}

func (r *runner) probe(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("probe: no files given")
	}

	results, err := trackinfo.ReadAll(c.Context, c.Args().Slice(), c.Int(flagJobs))
	if err != nil {
		return err
	}

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			r.logger.Warn("probe failed", zap.String("path", res.Path), zap.Error(res.Err))
			fmt.Fprintf(c.App.Writer, "%s: %v\n", res.Path, res.Err)
			continue
		}
		printInfo(c.App.Writer, res.Path, res.Info)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be read", failed, len(results))
	}

	return nil
}

func printInfo(w io.Writer, path string, info trackinfo.Info) {
	mode := "CBR"
	if info.VBR {
		mode = "VBR"
	}
	source := ""
	if info.Autogenerated {
		source = " (from file name)"
	}

	fmt.Fprintln(w, path)
	fmt.Fprintf(w, "  artist:   %s%s\n", info.Artist, source)
	fmt.Fprintf(w, "  title:    %s%s\n", info.Title, source)
	if info.Album != "" {
		fmt.Fprintf(w, "  album:    %s\n", info.Album)
	}
	if info.Year > 0 {
		fmt.Fprintf(w, "  year:     %d\n", info.Year)
	}
	if info.Track > 0 {
		fmt.Fprintf(w, "  track:    %d/%d\n", info.Track, info.TrackTotal)
	}
	fmt.Fprintf(w, "  stream:   %s, %d Hz, %d ch, %d kbps %s\n",
		info.Codec, info.SampleRate, info.Channels, info.BitRate/1000, mode)
	fmt.Fprintf(w, "  duration: %s\n", info.Duration.Round(time.Millisecond))
	if info.EncoderDelay > 0 || info.EncoderPadding > 0 {
		fmt.Fprintf(w, "  gapless:  delay %d, padding %d\n", info.EncoderDelay, info.EncoderPadding)
	}
}

func (r *runner) seek(c *cli.Context) (err error) {
	a, err := args(c, 1)
	if err != nil {
		return err
	}

	eng, err := pipeline.NewEngine(engineConfig(c), pipeline.WithLogger(r.logger))
	if err != nil {
		return err
	}

	s, err := eng.OpenFile(a[0])
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(s))

	res, err := s.Seek(c.Float64(flagTime))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "time:   %.6fs\noffset: %d\nframe:  %d\nskip:   %d\n",
		res.Time, res.Offset, res.Frame, res.SamplesToSkip)

	return nil
}

func (r *runner) decode(c *cli.Context) (err error) {
	a, err := args(c, 1)
	if err != nil {
		return err
	}

	cfg := engineConfig(c)
	cfg.OutputSampleRate = c.Int(flagRate)
	cfg.OutputChannels = c.Int(flagChannels)

	eng, err := pipeline.NewEngine(cfg, pipeline.WithLogger(r.logger))
	if err != nil {
		return err
	}

	s, err := eng.OpenFile(a[0])
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(s))

	if c.IsSet(flagSeek) {
		if _, err := s.Seek(c.Float64(flagSeek)); err != nil {
			return err
		}
	}

	out, err := os.Create(c.String(flagOut))
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(out))

	w, err := wav.NewWriter(out, s.SampleRate(), s.Channels())
	if err != nil {
		return err
	}

	outcome, runErr := s.Run(c.Context, func(ch pipeline.Chunk) error {
		return w.Write(ch.Channels)
	})
	if err := multierr.Append(runErr, w.Close()); err != nil {
		return err
	}

	r.logger.Info("decoded",
		zap.String("out", out.Name()),
		zap.Stringer("outcome", outcome),
		zap.Int("frames", w.Frames()),
	)
	fmt.Fprintf(c.App.Writer, "%s: %s, %d frames, %d Hz, %d ch\n",
		out.Name(), outcome, w.Frames(), w.SampleRate(), w.Channels())

	if outcome == pipeline.OutcomeCancelled {
		return fmt.Errorf("decode %s", outcome)
	}

	return nil
}

func (r *runner) mono16(c *cli.Context) (err error) {
	a, err := args(c, 2)
	if err != nil {
		return err
	}

	src, format, err := audstream.DecodeFile(nil, a[0])
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(src))
	r.logger.Debug("decoding", zap.String("path", a[0]), zap.String("format", format))

	pcm, rate, err := audstream.ResampleToMono16(src, c.Int(flagRate), mono16ReadSize)
	if err != nil {
		return err
	}

	out, err := os.Create(a[1])
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(out))

	if err := wav.WriteWAV16(out, rate, pcm); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%s: %d samples, %d Hz\n", a[1], len(pcm), rate)

	return nil
}
