// SPDX-License-Identifier: EPL-2.0

// Package pipeline drives the decode loop of a stream: codec detection,
// demuxing, frame decoding, channel remixing and resampling, with seeking
// and cooperative cancellation.
//
// An Engine holds the output Config and pools of decoders and resamplers.
// Each opened stream gets a Session that borrows one of each and returns
// them on Close:
//
//	eng, err := pipeline.NewEngine(pipeline.DefaultConfig(), pipeline.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//
//	s, err := eng.OpenFile("track.mp3")
//	if errors.Is(err, pipeline.ErrUnsupportedCodec) {
//	    // not something we can play
//	}
//	defer s.Close()
//
//	if _, err := s.Seek(30); err != nil {
//	    return err
//	}
//
//	outcome, err := s.Run(ctx, func(c pipeline.Chunk) error {
//	    return play(c.Channels)
//	})
//
// Run checks ctx and the Abort flag once per chunk. Cancellation is reported
// as OutcomeCancelled with a nil error so callers can tell it apart from a
// failure.
//
// Callers that pace decoding themselves use DecodeChunk, which returns one
// buffer of Config.BufferTime worth of input together with the compressed
// bytes it consumed. A Session also implements audio.Source.
package pipeline
