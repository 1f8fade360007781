// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	gowav "github.com/go-audio/wav"
	"github.com/google/go-cmp/cmp"
)

func tempWAV(t testing.TB) *os.File {
	t.Helper()

	f, err := os.Create(filepath.Join(t.TempDir(), "out.wav"))
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	return f
}

// readBack decodes the file at path and returns its format and samples.
func readBack(t *testing.T, path string) (*gowav.Decoder, []int) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()

	dec := gowav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("decoder rejected the file")
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v", err)
	}

	return dec, pcm.Data
}

func TestNewWriter_Errors(t *testing.T) {
	t.Parallel()

	f := tempWAV(t)
	if _, err := NewWriter(f, 0, 2); !errors.Is(err, ErrInvalidSampleRate) {
		t.Errorf("NewWriter(rate 0) error = %v, want %v", err, ErrInvalidSampleRate)
	}
	if _, err := NewWriter(f, 44100, 0); !errors.Is(err, ErrInvalidChannels) {
		t.Errorf("NewWriter(channels 0) error = %v, want %v", err, ErrInvalidChannels)
	}
}

func TestWriter_Planar(t *testing.T) {
	t.Parallel()

	f := tempWAV(t)
	w, err := NewWriter(f, 22050, 2)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	chunks := [][][]float32{
		{{0, 0.5, 1}, {-1, -0.25, 2}},
		{{}, {}},
		{{-2}, {0}},
	}
	for _, c := range chunks {
		if err := w.Write(c); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if w.Frames() != 4 {
		t.Errorf("Frames() = %d, want 4", w.Frames())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	dec, got := readBack(t, f.Name())
	if dec.SampleRate != 22050 || dec.NumChans != 2 || dec.BitDepth != 16 {
		t.Errorf("format = %d Hz, %d ch, %d bit, want 22050 Hz, 2 ch, 16 bit",
			dec.SampleRate, dec.NumChans, dec.BitDepth)
	}

	want := []int{0, -32767, 16383, -8191, 32767, 32767, -32767, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestWriter_Interleaved(t *testing.T) {
	t.Parallel()

	f := tempWAV(t)
	w, err := NewWriter(f, 8000, 3)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if err := w.WriteInterleaved([]float32{0.5, 0, -0.5, 1, -1, 0}); err != nil {
		t.Fatalf("WriteInterleaved() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, got := readBack(t, f.Name())
	want := []int{16383, 0, -16383, 32767, -32767, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestWriter_Empty(t *testing.T) {
	t.Parallel()

	f := tempWAV(t)
	w, err := NewWriter(f, 48000, 1)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	raw, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(raw) != headerSize {
		t.Fatalf("file size = %d, want %d", len(raw), headerSize)
	}

	want := header{
		Riff:          "RIFF",
		RiffSize:      36,
		Wave:          "WAVE",
		Fmt:           "fmt ",
		FmtSize:       16,
		AudioFormat:   1,
		Channels:      1,
		SampleRate:    48000,
		ByteRate:      96000,
		BlockAlign:    2,
		BitsPerSample: 16,
		Data:          "data",
	}
	if diff := cmp.Diff(want, parseHeader(t, raw)); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestWriter_InputErrors(t *testing.T) {
	t.Parallel()

	w, err := NewWriter(tempWAV(t), 8000, 2)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"too few planes", func() error { return w.Write([][]float32{{0}}) }, ErrChannelMismatch},
		{"too many planes", func() error { return w.Write(make([][]float32, 3)) }, ErrChannelMismatch},
		{"ragged planes", func() error { return w.Write([][]float32{{0, 1}, {0}}) }, ErrPlaneLength},
		{"partial frame", func() error { return w.WriteInterleaved([]float32{0, 1, 2}) }, ErrPartialFrame},
	}

	for _, tt := range tests {
		if err := tt.call(); !errors.Is(err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.want)
		}
	}
	if w.Frames() != 0 {
		t.Errorf("Frames() = %d after rejected writes, want 0", w.Frames())
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
	if err := w.Write([][]float32{{0}, {0}}); !errors.Is(err, ErrClosed) {
		t.Errorf("Write() after Close error = %v, want %v", err, ErrClosed)
	}
	if err := w.WriteInterleaved([]float32{0, 0}); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteInterleaved() after Close error = %v, want %v", err, ErrClosed)
	}
}

func BenchmarkWriter_Write(b *testing.B) {
	w, err := NewWriter(tempWAV(b), 44100, 2)
	if err != nil {
		b.Fatalf("NewWriter() error = %v", err)
	}
	defer w.Close()

	planes := [][]float32{make([]float32, 8820), make([]float32, 8820)}
	for i := range planes[0] {
		planes[0][i] = float32(i%200)/100 - 1
		planes[1][i] = -planes[0][i]
	}

	b.ReportAllocs()
	for b.Loop() {
		_ = w.Write(planes)
	}
}
