// SPDX-License-Identifier: EPL-2.0

package audio

// Convert chains the adapters needed to bring src to rate Hz and channels
// channels: a MixerSource first, so fewer channels are resampled when
// downmixing, then a ResampledSource. A zero rate or channel count keeps the
// source's value. When nothing changes src is returned as is.
func Convert(src Source, rate, channels, quality int) (Source, error) {
	out := src

	if channels > 0 && channels != out.Channels() {
		out = NewMixerSource(out, channels)
	}

	if rate > 0 && rate != out.SampleRate() {
		rs, err := NewResampledSource(out, rate, quality)
		if err != nil {
			return nil, err
		}
		out = rs
	}

	return out, nil
}
