// SPDX-License-Identifier: EPL-2.0

// Package wav writes 16-bit PCM WAV files.
//
// Writer is the streaming path. It accepts planar or interleaved float32
// chunks as they come out of a decode pipeline and encodes them with
// github.com/go-audio/wav. Samples are clamped to [-1, 1] before scaling.
// The destination must be an io.WriteSeeker because the RIFF and data sizes
// are patched when the writer is closed:
//
//	f, _ := os.Create("out.wav")
//	w, err := wav.NewWriter(f, 44100, 2)
//	...
//	err = w.Write(chunk.Channels)
//	...
//	err = w.Close()
//
// WritePCM16 and WriteWAV16 cover the case where all samples are already in
// memory as int16. They write the canonical 44 byte header followed by the
// data and only need an io.Writer.
package wav
