// SPDX-License-Identifier: EPL-2.0

// Package mp3 reads MPEG-1/2/2.5 Layer III streams: it locates the audio
// data, computes stream metadata, maps a time to a byte offset and decodes
// frames to PCM.
//
// # Demuxing
//
// Demux skips an ID3v2 tag, finds the first valid frame header and reads
// stream properties from it. A Xing or Info frame supplies the frame count
// and a 100-entry TOC, a VBRI frame a frame count and a seek table, and a
// LAME extension the encoder delay and padding. Without these markers the
// stream is treated as constant bitrate and its duration follows from the
// data length and bitrate.
//
//	src := bytesource.FromBytes(data)
//	md, err := mp3.Demux(src)
//	if errors.Is(err, mp3.ErrNotRecognized) {
//	    // not an mp3 stream
//	}
//	fmt.Println(md.SampleRate, md.Channels, md.Duration)
//
// # Seeking
//
// Seek maps a time in seconds to a byte offset and a number of decoded
// samples to discard. The strategy depends on what the stream offers:
//
//   - constant bitrate: the offset is computed directly
//   - Xing TOC: the offset is interpolated from the percentage table
//   - otherwise: a SeekTable of frame offsets is scanned lazily up to the
//     target and kept in Metadata for later seeks
//
// Decoding restarts ReservoirBackoffFrames frames before the target so the
// bit reservoir is primed; the samples of those frames are reported in
// SeekResult.SamplesToSkip.
//
// # Decoding
//
// FrameDecoder decodes planar float32 from a byte offset with
// github.com/hajimehoshi/go-mp3. Start, Read and End bracket a run; Reset
// drops the run so the decoder can be reused after a seek.
//
//	dec := mp3.NewFrameDecoder()
//	if err := dec.Start(md, src, res.Offset); err != nil {
//	    return err
//	}
//	defer dec.End()
//
//	planes := [][]float32{make([]float32, 1152), make([]float32, 1152)}
//	n, err := dec.Read(planes)
//
// Decoder implements audio.Decoder for whole streams and returns an
// interleaved audio.Source:
//
//	src, err := mp3.Decoder{}.Decode(file)
//	pcm16, rate, err := audstream.ResampleToMono16(src, 8000, 4096)
//
// # Output Format
//
// Samples are float32 in [-1, 1] at the stream's sample rate. Mono streams
// decode to one channel and everything else to stereo.
package mp3
