// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"math"
	"testing"

	"github.com/ik5/audstream/bytesource"
	"github.com/ik5/audstream/internal/audiotest"
)

func cbrMetadata() *Metadata {
	return &Metadata{
		SampleRate:           44100,
		Channels:             2,
		BitRate:              128000,
		SamplesPerFrame:      1152,
		DataStart:            1024,
		DataEnd:              163840,
		Duration:             10,
		MaxByteSizePerSample: 2881.0 / 1152,
		AverageFrameSize:     417.96,
		EncoderDelay:         576,
	}
}

func TestSeek_CBR(t *testing.T) {
	t.Parallel()

	md := cbrMetadata()
	tpf := md.FrameDuration()

	// 10 s of 1152-sample frames at 44.1 kHz, so 5 s lands on frame 191.
	if got := md.TotalFrames(); got != 382 {
		t.Fatalf("TotalFrames() = %d, want 382", got)
	}

	tests := []struct {
		name      string
		time      float64
		wantFrame int
		wantTime  float64
		wantSkip  int
	}{
		{"middle", 5, 182, 191 * tpf, 9 * 1152},
		{"start", 0, 0, 0, 576},
		{"negative clamps to start", -3, 0, 0, 576},
		{"within backoff uses encoder delay", 5 * tpf, 0, 5 * tpf, 576},
		{"past end clamps to duration", 42, 373, 382 * tpf, 9 * 1152},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Seek(tt.time, md, nil)
			if err != nil {
				t.Fatalf("Seek() error = %v", err)
			}

			if got.Frame != tt.wantFrame {
				t.Errorf("Frame = %d, want %d", got.Frame, tt.wantFrame)
			}
			if math.Abs(got.Time-tt.wantTime) > 1e-9 {
				t.Errorf("Time = %v, want %v", got.Time, tt.wantTime)
			}
			if got.SamplesToSkip != tt.wantSkip {
				t.Errorf("SamplesToSkip = %d, want %d", got.SamplesToSkip, tt.wantSkip)
			}

			wantOffset := md.DataStart + int64(float64(tt.wantFrame)*md.AverageFrameSize)
			if got.Offset != wantOffset {
				t.Errorf("Offset = %d, want %d", got.Offset, wantOffset)
			}
		})
	}
}

func TestSeek_CBRProperties(t *testing.T) {
	t.Parallel()

	md := cbrMetadata()
	frames := md.TotalFrames()

	for i := 0; i <= 100; i++ {
		tm := md.Duration * float64(i) / 100

		got, err := Seek(tm, md, nil)
		if err != nil {
			t.Fatalf("Seek(%v) error = %v", tm, err)
		}

		frame := int(math.Round(tm / md.Duration * float64(frames)))
		if want := max(0, frame-ReservoirBackoffFrames); got.Frame != want {
			t.Errorf("Seek(%v).Frame = %d, want %d", tm, got.Frame, want)
		}
		if got.Offset < md.DataStart || got.Offset > md.DataEnd {
			t.Errorf("Seek(%v).Offset = %d outside [%d, %d]", tm, got.Offset, md.DataStart, md.DataEnd)
		}
		if got.Frame > 0 && got.SamplesToSkip != ReservoirBackoffFrames*md.SamplesPerFrame {
			t.Errorf("Seek(%v).SamplesToSkip = %d", tm, got.SamplesToSkip)
		}
	}
}

func TestSeek_TOC(t *testing.T) {
	t.Parallel()

	md := cbrMetadata()
	md.VBR = true
	md.TOC = make([]byte, 100)
	for i := range md.TOC {
		md.TOC[i] = byte(i * 256 / 100)
	}

	got, err := Seek(5, md, nil)
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}

	tpf := md.FrameDuration()
	if got.Frame != 191 {
		t.Errorf("Frame = %d, want 191", got.Frame)
	}
	if want := 192 * tpf; math.Abs(got.Time-want) > 1e-9 {
		t.Errorf("Time = %v, want %v", got.Time, want)
	}
	if got.SamplesToSkip != md.SamplesPerFrame {
		t.Errorf("SamplesToSkip = %d, want %d", got.SamplesToSkip, md.SamplesPerFrame)
	}
	if want := md.DataStart + int64(float64(md.TOC[50])/256*float64(md.DataLength())); got.Offset != want {
		t.Errorf("Offset = %d, want %d", got.Offset, want)
	}

	got, err = Seek(0, md, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Offset != md.DataStart || got.SamplesToSkip != md.EncoderDelay {
		t.Errorf("Seek(0) = %+v, want offset %d skip %d", got, md.DataStart, md.EncoderDelay)
	}
}

func TestSeek_ScannedTable(t *testing.T) {
	t.Parallel()

	data, offsets := audiotest.MP3Stream{Frames: vbrFrames(100)}.Build()
	src := bytesource.FromBytes(data)

	md, err := Demux(src)
	if err != nil {
		t.Fatal(err)
	}

	for _, tm := range []float64{0, 0.1, 0.9, 1.5, 0.4} {
		got, err := Seek(tm, md, src)
		if err != nil {
			t.Fatalf("Seek(%v) error = %v", tm, err)
		}

		if md.SeekTable == nil || md.SeekTable.IsFromMetadata {
			t.Fatal("Seek() did not attach a scanned seek table")
		}
		if got.Frame >= len(offsets) {
			t.Fatalf("Seek(%v).Frame = %d beyond stream", tm, got.Frame)
		}
		if got.Offset != offsets[got.Frame] {
			t.Errorf("Seek(%v).Offset = %d, want frame %d at %d", tm, got.Offset, got.Frame, offsets[got.Frame])
		}
		if got.Frame > 0 && got.SamplesToSkip != ReservoirBackoffFrames*md.SamplesPerFrame {
			t.Errorf("Seek(%v).SamplesToSkip = %d", tm, got.SamplesToSkip)
		}
		if md.SeekTable.TOCFilledUntil < tm+md.FrameDuration() && !md.SeekTable.Exhausted() {
			t.Errorf("Seek(%v) left table filled until %v", tm, md.SeekTable.TOCFilledUntil)
		}
	}
}

func TestSeek_VBRITable(t *testing.T) {
	t.Parallel()

	entries := make([]uint16, 9)
	for i := range entries {
		entries[i] = 10 * 417
	}

	data, offsets := audiotest.MP3Stream{
		Frames: audiotest.CBRFrames(cbrHeader, 100),
		VBRI:   &audiotest.VBRITag{Frames: 100, Scale: 1, FramesPerEntry: 10, Entries: entries},
	}.Build()
	src := bytesource.FromBytes(data)

	md, err := Demux(src)
	if err != nil {
		t.Fatal(err)
	}

	tpf := md.FrameDuration()
	frames := md.TotalFrames()

	for _, tm := range []float64{0.5, 1.0, 2.0} {
		got, err := Seek(tm, md, src)
		if err != nil {
			t.Fatalf("Seek(%v) error = %v", tm, err)
		}

		frame := md.SeekTable.ClosestFrameOf(int(math.Round(tm / md.Duration * float64(frames))))
		if got.Frame != frame {
			t.Errorf("Seek(%v).Frame = %d, want %d", tm, got.Frame, frame)
		}
		if got.Frame%10 != 0 {
			t.Errorf("Seek(%v).Frame = %d not on a table entry", tm, got.Frame)
		}
		if got.Offset != offsets[got.Frame] {
			t.Errorf("Seek(%v).Offset = %d, want %d", tm, got.Offset, offsets[got.Frame])
		}
		if want := float64(frame+1) * tpf; math.Abs(got.Time-want) > 1e-9 {
			t.Errorf("Seek(%v).Time = %v, want %v", tm, got.Time, want)
		}
		if got.SamplesToSkip != md.SamplesPerFrame {
			t.Errorf("Seek(%v).SamplesToSkip = %d, want %d", tm, got.SamplesToSkip, md.SamplesPerFrame)
		}
	}
}
