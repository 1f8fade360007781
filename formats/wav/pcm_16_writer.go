// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	headerSize = 44
	// samples converted per Write call on the underlying writer
	writeChunk = 4096
)

// pcmHeader fills a canonical 44 byte RIFF/WAVE header for 16-bit PCM.
func pcmHeader(hdr []byte, sampleRate, channels, samples int) {
	const bytesPerSample = 2
	blockAlign := channels * bytesPerSample
	dataSize := uint32(samples * bytesPerSample)

	copy(hdr[0:], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:], headerSize-8+dataSize)
	copy(hdr[8:], "WAVE")

	copy(hdr[12:], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:], 16)
	binary.LittleEndian.PutUint16(hdr[20:], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(hdr[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:], 8*bytesPerSample)

	copy(hdr[36:], "data")
	binary.LittleEndian.PutUint32(hdr[40:], dataSize)
}

// WritePCM16 writes interleaved int16 samples as a complete WAV stream.
// Unlike Writer it needs no io.Seeker since the data size is known up front.
func WritePCM16(w io.Writer, sampleRate, channels int, samples []int16) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if channels <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}
	if len(samples)%channels != 0 {
		return fmt.Errorf("%w: %d samples, %d channels", ErrPartialFrame, len(samples), channels)
	}

	var hdr [headerSize]byte
	pcmHeader(hdr[:], sampleRate, channels, len(samples))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if len(samples) == 0 {
		return nil
	}

	buf := make([]byte, 2*min(len(samples), writeChunk))
	for len(samples) > 0 {
		n := min(len(samples), writeChunk)
		out := buf[:2*n]
		for i, s := range samples[:n] {
			binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
		}
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("writing samples: %w", err)
		}
		samples = samples[n:]
	}

	return nil
}

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate.
func WriteWAV16(w io.Writer, sampleRate int, samples []int16) error {
	return WritePCM16(w, sampleRate, 1, samples)
}
