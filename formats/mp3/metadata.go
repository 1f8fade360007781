// SPDX-License-Identifier: EPL-2.0

package mp3

// Metadata describes one MP3 stream. Demux creates it; afterwards only
// SeekTable changes, when a seek attaches or extends it.
type Metadata struct {
	SampleRate int
	Channels   int
	// BitRate in bit/s: the stream rate for CBR, the last one seen for VBR.
	BitRate int
	VBR     bool
	// LSF is set for MPEG-2 and MPEG-2.5 streams.
	LSF             bool
	SamplesPerFrame int

	// DataStart and DataEnd bound the compressed audio, tags and the
	// Xing/VBRI info frame excluded.
	DataStart int64
	DataEnd   int64

	// Duration in seconds.
	Duration float64

	// MaxByteSizePerSample bounds the compressed bytes needed per decoded
	// sample; read windows are sized from it.
	MaxByteSizePerSample float64

	// AverageFrameSize in bytes over the data region.
	AverageFrameSize float64

	// TOC is the 100-entry Xing seek table, nil when absent.
	TOC []byte

	// EncoderDelay and EncoderPadding come from a LAME tag; zero without one.
	EncoderDelay   int
	EncoderPadding int

	SeekTable *SeekTable
}

// FrameDuration returns the playback time of one frame in seconds.
func (m *Metadata) FrameDuration() float64 {
	return float64(m.SamplesPerFrame) / float64(m.SampleRate)
}

// TotalFrames estimates the number of audio frames from Duration.
func (m *Metadata) TotalFrames() int {
	return int(m.Duration * float64(m.SampleRate) / float64(m.SamplesPerFrame))
}

// DataLength returns DataEnd - DataStart.
func (m *Metadata) DataLength() int64 {
	return m.DataEnd - m.DataStart
}
