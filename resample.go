// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/utils"
)

// ResampleToMono16 drains src through a downmix to mono and a resampler to
// targetRate, and returns the result as 16-bit PCM along with its rate.
// bufferSize is the number of samples read per call. src is not closed.
func ResampleToMono16(src audio.Source, targetRate int, bufferSize int) ([]int16, int, error) {
	if targetRate <= 0 {
		return nil, targetRate, fmt.Errorf("%w: %d", audio.ErrInvalidRate, targetRate)
	}

	mono, err := audio.Convert(src, targetRate, 1, audio.DefaultQuality)
	if err != nil {
		return nil, targetRate, fmt.Errorf("%w", err)
	}

	pcm16 := make([]int16, 0, targetRate*2)
	buf := make([]float32, bufferSize)

	for {
		n, err := mono.ReadSamples(buf)
		for _, x := range buf[:n] {
			pcm16 = append(pcm16, utils.Float32ToInt16(x))
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, targetRate, fmt.Errorf("%w", err)
		}
	}

	return pcm16, targetRate, nil
}
