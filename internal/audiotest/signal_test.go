// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlanes(t *testing.T) {
	t.Parallel()

	got := Planes(2, 3, func(frame, ch int) float32 { return float32(10*ch + frame) })
	want := [][]float32{{0, 1, 2}, {10, 11, 12}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Planes() mismatch (-want +got):\n%s", diff)
	}
}

func TestSource_ReadsInterleavedUntilEOF(t *testing.T) {
	t.Parallel()

	src := NewSource(8000, 2, 3, PerChannel(0.25, -0.5))
	buf := make([]float32, 5)

	n, err := src.ReadSamples(buf)
	if err != nil || n != 4 {
		t.Fatalf("ReadSamples() = %d, %v, want 4, nil", n, err)
	}
	if diff := cmp.Diff([]float32{0.25, -0.5, 0.25, -0.5}, buf[:n]); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}

	n, err = src.ReadSamples(buf)
	if !errors.Is(err, io.EOF) || n != 2 {
		t.Fatalf("ReadSamples() = %d, %v, want 2, EOF", n, err)
	}

	if n, err = src.ReadSamples(buf); !errors.Is(err, io.EOF) || n != 0 {
		t.Fatalf("ReadSamples() after end = %d, %v, want 0, EOF", n, err)
	}

	src.Reset()
	if n, err = src.ReadSamples(buf); err != nil || n != 4 {
		t.Fatalf("ReadSamples() after Reset = %d, %v, want 4, nil", n, err)
	}
}

func TestSource_Close(t *testing.T) {
	t.Parallel()

	src := NewSource(8000, 1, 1, Silence)
	if src.Closed() {
		t.Fatal("Closed() = true before Close")
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !src.Closed() {
		t.Error("Closed() = false after Close")
	}
}

func TestSine(t *testing.T) {
	t.Parallel()

	sig := Sine(8000, 2000)
	for frame, want := range []float32{0, 1, 0, -1} {
		if got := sig(frame, 0); got < want-1e-6 || got > want+1e-6 {
			t.Errorf("Sine(8000, 2000)(%d) = %v, want %v", frame, got, want)
		}
	}
}
