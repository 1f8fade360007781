// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"math"

	"github.com/ik5/audstream/bytesource"
)

// ReservoirBackoffFrames is how many frames before the target decoding starts
// at, so the bit reservoir of the target frame is rebuilt. The primed samples
// are reported in SeekResult.SamplesToSkip.
const ReservoirBackoffFrames = 9

// SeekResult tells the decoder where to resume.
type SeekResult struct {
	// Time is the playback position, in seconds, after SamplesToSkip samples
	// have been discarded.
	Time float64
	// Offset is the byte position decoding restarts at.
	Offset int64
	// SamplesToSkip is the number of decoded samples per channel to drop.
	SamplesToSkip int
	// Frame is the index of the frame at Offset.
	Frame int
}

// Seek computes where decoding must restart to play from t seconds. VBR
// streams without a Xing TOC may scan src to extend md.SeekTable.
func Seek(t float64, md *Metadata, src *bytesource.Reader) (SeekResult, error) {
	t = min(md.Duration, max(0, t))

	spf := md.SamplesPerFrame
	tpf := md.FrameDuration()
	frames := md.TotalFrames()

	frame := 0
	if md.Duration > 0 {
		frame = int(math.Round(t / md.Duration * float64(frames)))
	}

	current := float64(frame) * tpf
	target := max(0, frame-ReservoirBackoffFrames)
	skip := (frame - target) * spf

	var offset int64

	switch {
	case !md.VBR:
		offset = md.DataStart + int64(float64(target)*md.AverageFrameSize)

	case len(md.TOC) == tocLength && frames > 0:
		frame = int(math.Round(float64(frame)/float64(frames)*100) / 100 * float64(frames))
		current = float64(frame+1) * tpf
		skip = spf
		target = frame

		i := min(tocLength-1, int(math.Round(float64(frame)/float64(frames)*100)))
		pct := float64(md.TOC[i]) / 256
		offset = md.DataStart + int64(pct*float64(md.DataLength()))

	default:
		if md.SeekTable == nil {
			md.SeekTable = NewSeekTable()
		}
		table := md.SeekTable

		if err := table.FillUntil(t+tpf, md, src); err != nil {
			return SeekResult{}, err
		}

		if table.IsFromMetadata {
			frame = table.ClosestFrameOf(frame)
			current = float64(frame+1) * tpf
			skip = spf
			offset = table.OffsetOfFrame(frame)
			target = frame
		} else {
			offset = table.OffsetOfFrame(target)
		}
	}

	if target == 0 {
		skip = md.EncoderDelay
	}

	return SeekResult{
		Time:          current,
		Offset:        max(md.DataStart, min(offset, md.DataEnd)),
		SamplesToSkip: skip,
		Frame:         target,
	}, nil
}
