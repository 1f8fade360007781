// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/formats"
	"github.com/ik5/audstream/formats/wav"
	"github.com/ik5/audstream/internal/audiotest"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}

	return path
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	if diff := cmp.Diff([]string{formats.MP3}, NewRegistry().Formats()); diff != "" {
		t.Errorf("Formats() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeFile_MP3(t *testing.T) {
	t.Parallel()

	h := audiotest.MP3Header(audiotest.MPEG1, 9, 1, false, true)
	data, _ := audiotest.MP3Stream{
		ID3v2:  audiotest.ID3v2Tag(map[string]string{"TIT2": "Tone"}, 16),
		Frames: audiotest.CBRFrames(h, 20),
	}.Build()
	path := writeFile(t, "tone.mp3", data)

	src, format, err := DecodeFile(nil, path)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if format != formats.MP3 {
		t.Errorf("format = %q, want %q", format, formats.MP3)
	}
	if src.SampleRate() != 48000 || src.Channels() != 1 {
		t.Errorf("source = %d Hz %d ch, want 48000 Hz 1 ch", src.SampleRate(), src.Channels())
	}

	if err := src.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	fsrc := src.(*fileSource)
	if err := fsrc.f.Close(); !errors.Is(err, os.ErrClosed) {
		t.Errorf("file still open after Close(), second close error = %v", err)
	}
}

func TestDecodeFile_Errors(t *testing.T) {
	t.Parallel()

	wavPath := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(wavPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := wav.WriteWAV16(f, 8000, make([]int16, 80)); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		path       string
		wantErr    error
		wantFormat string
	}{
		{"missing", filepath.Join(t.TempDir(), "nope.mp3"), fs.ErrNotExist, ""},
		{"text", writeFile(t, "notes.txt", []byte("just some text, no audio")), ErrUnrecognized, ""},
		{"short", writeFile(t, "tiny.mp3", []byte{0x00, 0x01}), ErrUnrecognized, ""},
		{"empty", writeFile(t, "empty.mp3", nil), ErrUnrecognized, ""},
		{"no decoder", wavPath, audio.ErrUnknownFormat, formats.WAV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, format, err := DecodeFile(nil, tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DecodeFile() error = %v, want %v", err, tt.wantErr)
			}
			if src != nil {
				t.Error("DecodeFile() returned a source with an error")
			}
			if format != tt.wantFormat {
				t.Errorf("format = %q, want %q", format, tt.wantFormat)
			}
		})
	}
}

func TestDecodeFile_CustomRegistry(t *testing.T) {
	t.Parallel()

	h := audiotest.MP3Header(audiotest.MPEG1, 9, 0, false, false)
	data, _ := audiotest.MP3Stream{Frames: audiotest.CBRFrames(h, 4)}.Build()
	path := writeFile(t, "a.mp3", data)

	_, _, err := DecodeFile(audio.NewRegistry(), path)
	if !errors.Is(err, audio.ErrUnknownFormat) {
		t.Errorf("DecodeFile(empty registry) error = %v, want %v", err, audio.ErrUnknownFormat)
	}
}
