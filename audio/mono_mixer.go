// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MixerSource converts an interleaved Source to another channel count with
// a ChannelMixer.
type MixerSource struct {
	src    Source
	mixer  *ChannelMixer
	tmp    []float32
	planar [][]float32
}

// NewMixerSource returns src remixed to channels channels.
func NewMixerSource(src Source, channels int) *MixerSource {
	return &MixerSource{
		src:    src,
		mixer:  NewChannelMixer(channels),
		tmp:    make([]float32, 4096),
		planar: make([][]float32, src.Channels()),
	}
}

// NewMonoMixer returns src downmixed to one channel.
func NewMonoMixer(src Source) *MixerSource {
	return NewMixerSource(src, 1)
}

func (m *MixerSource) SampleRate() int { return m.src.SampleRate() }
func (m *MixerSource) Channels() int   { return m.mixer.Channels() }
func (m *MixerSource) BufSize() int    { return m.src.BufSize() }
func (m *MixerSource) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// ReadSamples fills dst with interleaved frames in the output layout.
func (m *MixerSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	inCh := m.src.Channels()
	outCh := m.mixer.Channels()
	if inCh == outCh {
		// Pass-through: read directly
		return m.src.ReadSamples(dst)
	}
	if len(dst)%outCh != 0 {
		return 0, ErrInvalidDstSize
	}

	maxFrames := len(dst) / outCh
	samplesNeeded := maxFrames * inCh

	// Grow tmp buffer if needed (but don't shrink to avoid thrashing)
	if cap(m.tmp) < samplesNeeded {
		m.tmp = make([]float32, max(samplesNeeded, 8192))
	}
	m.tmp = m.tmp[:samplesNeeded]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	frames := n / inCh

	for ch := range m.planar {
		if cap(m.planar[ch]) < maxFrames {
			m.planar[ch] = make([]float32, maxFrames)
		}
		plane := m.planar[ch][:frames]
		for f := range plane {
			plane[f] = m.tmp[f*inCh+ch]
		}
		m.planar[ch] = plane
	}

	mixed := m.mixer.Mix(m.planar, frames)
	for f := range frames {
		for ch, plane := range mixed {
			dst[f*outCh+ch] = plane[f]
		}
	}

	return frames * outCh, err
}
