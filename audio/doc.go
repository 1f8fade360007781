// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM processing stages of a stream: sample rate
// conversion, channel remixing and the Source interface that ties decoders
// to them.
//
// # Source Interface
//
// Decoders and adapters all implement Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Samples are interleaved float32 in [-1, 1]. ReadSamples returns io.EOF
// once the stream is drained, possibly together with the last samples.
//
// # Resampling
//
// Resampler is a windowed-sinc polyphase converter working on planar
// buffers. Quality 0 to 10 selects the filter length and Kaiser window;
// DefaultQuality is 5. The rate ratio is reduced to lowest terms, so
// 48000 to 44100 runs as 160/147 with 147 filter phases.
//
//	rs, err := audio.NewResampler(2, 48000, 44100, audio.DefaultQuality)
//	if err != nil {
//	    return err
//	}
//	_ = rs.Start()
//	defer rs.End()
//
//	out, err := rs.Resample([][]float32{left, right}, len(left))
//
// Input may arrive in chunks of any size; the output does not depend on how
// the stream was split. SetRate and SetQuality may be called between
// chunks. Equal rates pass samples through untouched.
//
// ResampledSource wraps a Source with a Resampler for streaming use.
//
// # Channel Mixing
//
// ChannelMixer maps planar audio between mono, stereo, quad and 5.1
// (L, R, C, LFE, SL, SR). Centre and surround channels fold into the front
// pair at -3 dB and LFE is dropped. Other layouts keep their leading
// channels or are padded with silence. MixerSource and NewMonoMixer apply a
// ChannelMixer to an interleaved Source.
//
// Convert chains both adapters:
//
//	mono16k, err := audio.Convert(src, 16000, 1, audio.DefaultQuality)
//
// # Pooling
//
// ResamplerPool keeps idle resamplers per configuration so a long-running
// process does not rebuild sinc tables for every stream.
//
// # Format Registry
//
// Registry maps codec names to Decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("mp3", mp3.Decoder{})
//	src, err := registry.Decode("mp3", f)
//
// # Concurrency
//
// Registry and ResamplerPool are safe for concurrent use. Resampler,
// ChannelMixer and the Source adapters are not; give each stream its own.
package audio
