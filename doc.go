// SPDX-License-Identifier: EPL-2.0

// Package audstream decodes MP3 streams into resampled, channel-mixed PCM
// with sample-accurate seeking.
//
// Most programs want the pipeline package: an Engine opens files, detects
// the codec from the first bytes, and hands out Sessions that decode, mix
// and resample in chunks and can seek to any time.
//
//	eng, _ := pipeline.NewEngine(pipeline.DefaultConfig())
//	s, _ := eng.OpenFile("song.mp3")
//	defer s.Close()
//	_, _ = s.Seek(42.5)
//	outcome, err := s.Run(ctx, func(c pipeline.Chunk) error { ... })
//
// This package holds the small helpers around it. DecodeFile turns a file
// into an audio.Source through a format registry, and ResampleToMono16
// collapses any source into mono 16-bit PCM at a fixed rate:
//
//	src, _, err := audstream.DecodeFile(nil, "speech.mp3")
//	defer src.Close()
//	pcm, rate, err := audstream.ResampleToMono16(src, 8000, 4096)
//	err = wav.WriteWAV16(out, rate, pcm)
//
// Subpackages:
//   - bytesource: windowed random access over files and blobs
//   - formats/mp3: demuxer, seek tables and frame decoder
//   - formats/wav: WAV output
//   - seeker: codec dispatch for seeking
//   - audio: resampler, channel mixer and source adapters
//   - trackinfo: tags, stream properties and filename fallback
package audstream
