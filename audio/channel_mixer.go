// SPDX-License-Identifier: EPL-2.0

package audio

// minus3dB is the gain applied to centre and surround channels folded into
// the front pair.
const minus3dB = 0.7071067811865476

type silentKey struct {
	slot int
	size int
}

// ChannelMixer converts planar audio between channel layouts. Mono, stereo,
// quad and 5.1 (L, R, C, LFE, SL, SR) have dedicated matrices; other pairs
// drop trailing channels or pad with silence.
//
// Downmixes write into the input buffers and return them. Silent channels are
// buffers owned by the mixer, zeroed on every call. Returned slices are valid
// until the next call.
type ChannelMixer struct {
	channels int
	silent   map[silentKey][]float32
	ret      [][]float32
}

// NewChannelMixer returns a mixer producing channels output channels.
func NewChannelMixer(channels int) *ChannelMixer {
	return &ChannelMixer{
		channels: channels,
		silent:   make(map[silentKey][]float32),
	}
}

func (m *ChannelMixer) SetChannels(channels int) { m.channels = channels }
func (m *ChannelMixer) Channels() int            { return m.channels }

// Mix maps the first length samples of input to the output layout. Input
// already in the output layout is returned as is.
func (m *ChannelMixer) Mix(input [][]float32, length int) [][]float32 {
	in := len(input)
	if in == m.channels || in == 0 {
		return input
	}

	switch {
	case in == 1 && m.channels == 2:
		return m.result(input[0], input[0])
	case in == 1 && m.channels == 4:
		return m.result(input[0], input[0], m.silence(2, length), m.silence(3, length))
	case in == 1 && m.channels == 6:
		return m.result(m.silence(0, length), m.silence(1, length), input[0],
			m.silence(3, length), m.silence(4, length), m.silence(5, length))
	case in == 2 && m.channels == 1:
		return m.mix2to1(input, length)
	case in == 2 && m.channels == 4:
		return m.result(input[0], input[1], m.silence(2, length), m.silence(3, length))
	case in == 2 && m.channels == 6:
		return m.result(input[0], input[1], m.silence(2, length),
			m.silence(3, length), m.silence(4, length), m.silence(5, length))
	case in == 4 && m.channels == 1:
		return m.mix4to1(input, length)
	case in == 4 && m.channels == 2:
		return m.mix4to2(input, length)
	case in == 4 && m.channels == 6:
		return m.result(input[0], input[1], m.silence(2, length), m.silence(3, length), input[2], input[3])
	case in == 6 && m.channels == 1:
		return m.mix6to1(input, length)
	case in == 6 && m.channels == 2:
		return m.mix6to2(input, length)
	case in == 6 && m.channels == 4:
		return m.mix6to4(input, length)
	}

	return m.mixAnyToAny(input, length)
}

func (m *ChannelMixer) result(channels ...[]float32) [][]float32 {
	m.ret = append(m.ret[:0], channels...)
	return m.ret
}

// silence returns a zeroed buffer of size samples for output slot.
func (m *ChannelMixer) silence(slot, size int) []float32 {
	k := silentKey{slot: slot, size: size}

	buf, ok := m.silent[k]
	if !ok {
		buf = make([]float32, size)
		m.silent[k] = buf
		return buf
	}
	clear(buf)

	return buf
}

func (m *ChannelMixer) mix2to1(input [][]float32, length int) [][]float32 {
	l, r := input[0][:length], input[1][:length]
	for i := range l {
		l[i] = (l[i] + r[i]) / 2
	}

	return m.result(input[0])
}

func (m *ChannelMixer) mix4to1(input [][]float32, length int) [][]float32 {
	out := input[0][:length]
	for i := range out {
		sum := float64(input[0][i]) + float64(input[1][i]) + float64(input[2][i]) + float64(input[3][i])
		out[i] = float32(sum / 4)
	}

	return m.result(input[0])
}

func (m *ChannelMixer) mix4to2(input [][]float32, length int) [][]float32 {
	l, r := input[0][:length], input[1][:length]
	for i := range l {
		l[i] = float32((float64(l[i]) + float64(input[2][i])) / 2)
		r[i] = float32((float64(r[i]) + float64(input[3][i])) / 2)
	}

	return m.result(input[0], input[1])
}

func (m *ChannelMixer) mix6to1(input [][]float32, length int) [][]float32 {
	out := input[0][:length]
	for i := range out {
		l, r, c := float64(input[0][i]), float64(input[1][i]), float64(input[2][i])
		sl, sr := float64(input[4][i]), float64(input[5][i])

		front := float64(float32(minus3dB * (l + r)))
		rear := float64(float32(0.5 * (sl + sr)))
		out[i] = float32(front + c + rear)
	}

	return m.result(input[0])
}

func (m *ChannelMixer) mix6to2(input [][]float32, length int) [][]float32 {
	lo, ro := input[0][:length], input[1][:length]
	for i := range lo {
		c := input[2][i]
		sl, sr := input[4][i], input[5][i]

		lo[i] = float32(float64(lo[i]) + float64(float32(minus3dB*float64(c+sl))))
		ro[i] = float32(float64(ro[i]) + float64(float32(minus3dB*float64(c+sr))))
	}

	return m.result(input[0], input[1])
}

func (m *ChannelMixer) mix6to4(input [][]float32, length int) [][]float32 {
	lo, ro := input[0][:length], input[1][:length]
	for i := range lo {
		c := float32(minus3dB * float64(input[2][i]))

		lo[i] += c
		ro[i] += c
	}

	return m.result(input[0], input[1], input[4], input[5])
}

// mixAnyToAny keeps the leading channels, padding with silence when the
// output has more.
func (m *ChannelMixer) mixAnyToAny(input [][]float32, length int) [][]float32 {
	if m.channels < len(input) {
		return m.result(input[:m.channels]...)
	}

	m.ret = append(m.ret[:0], input...)
	for slot := len(input); slot < m.channels; slot++ {
		m.ret = append(m.ret, m.silence(slot, length))
	}

	return m.ret
}
