// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ik5/audstream/bytesource"
	"github.com/ik5/audstream/internal/audiotest"
)

var (
	cbrHeader  = audiotest.MP3Header(audiotest.MPEG1, 9, 0, false, false)  // 128k, 417 bytes
	cbrHeader2 = audiotest.MP3Header(audiotest.MPEG1, 11, 0, false, false) // 192k, 626 bytes
)

func vbrFrames(n int) []uint32 {
	frames := make([]uint32, n)
	for i := range frames {
		if i%2 == 0 {
			frames[i] = cbrHeader
		} else {
			frames[i] = cbrHeader2
		}
	}

	return frames
}

func demuxBytes(t *testing.T, data []byte) *Metadata {
	t.Helper()

	md, err := Demux(bytesource.FromBytes(data))
	if err != nil {
		t.Fatalf("Demux() error = %v", err)
	}

	return md
}

func TestDemux_CBR(t *testing.T) {
	t.Parallel()

	data, _ := audiotest.MP3Stream{Frames: audiotest.CBRFrames(cbrHeader, 100)}.Build()
	md := demuxBytes(t, data)

	if md.SampleRate != 44100 || md.Channels != 2 || md.BitRate != 128000 {
		t.Errorf("stream = %d Hz, %d ch, %d bit/s; want 44100 Hz, 2 ch, 128000 bit/s",
			md.SampleRate, md.Channels, md.BitRate)
	}
	if md.VBR {
		t.Error("VBR = true, want false")
	}
	if md.LSF {
		t.Error("LSF = true, want false")
	}
	if md.SamplesPerFrame != 1152 {
		t.Errorf("SamplesPerFrame = %d, want 1152", md.SamplesPerFrame)
	}
	if md.DataStart != 0 || md.DataEnd != 41700 {
		t.Errorf("data = [%d, %d), want [0, 41700)", md.DataStart, md.DataEnd)
	}

	wantDuration := 41700.0 * 8 / 128000
	if math.Abs(md.Duration-wantDuration) > 1e-9 {
		t.Errorf("Duration = %v, want %v", md.Duration, wantDuration)
	}
	if md.TotalFrames() != 99 {
		t.Errorf("TotalFrames() = %d, want 99", md.TotalFrames())
	}
	if want := 41700.0 / 99; math.Abs(md.AverageFrameSize-want) > 1e-9 {
		t.Errorf("AverageFrameSize = %v, want %v", md.AverageFrameSize, want)
	}
	if want := 2881.0 / 1152; md.MaxByteSizePerSample != want {
		t.Errorf("MaxByteSizePerSample = %v, want %v", md.MaxByteSizePerSample, want)
	}
	if md.TOC != nil || md.SeekTable != nil {
		t.Error("CBR stream without info frame has a TOC or seek table")
	}
}

func TestDemux_Tags(t *testing.T) {
	t.Parallel()

	tag := audiotest.ID3v2Tag(map[string]string{"TIT2": "Title", "TPE1": "Artist"}, 64)
	data, offsets := audiotest.MP3Stream{
		ID3v2:  tag,
		Frames: audiotest.CBRFrames(cbrHeader, 20),
		ID3v1:  true,
	}.Build()

	md := demuxBytes(t, data)

	if md.DataStart != int64(len(tag)) {
		t.Errorf("DataStart = %d, want %d", md.DataStart, len(tag))
	}
	if md.DataStart != offsets[0] {
		t.Errorf("DataStart = %d, first frame at %d", md.DataStart, offsets[0])
	}
	if want := int64(len(data) - 128); md.DataEnd != want {
		t.Errorf("DataEnd = %d, want %d", md.DataEnd, want)
	}
}

func TestDemux_ID3v2Footer(t *testing.T) {
	t.Parallel()

	tag := []byte{'I', 'D', '3', 4, 0, 0x10, 0, 0, 0, 6}
	tag = append(tag, make([]byte, 6+10)...)

	frames, _ := audiotest.MP3Stream{Frames: audiotest.CBRFrames(cbrHeader, 10)}.Build()
	md := demuxBytes(t, append(tag, frames...))

	if md.DataStart != 26 {
		t.Errorf("DataStart = %d, want 26", md.DataStart)
	}
}

func TestDemux_MalformedSynchsafe(t *testing.T) {
	t.Parallel()

	tag := []byte{'I', 'D', '3', 3, 0, 0, 0x80, 0x80, 0x80, 0x85}
	tag = append(tag, make([]byte, 5)...)

	frames, _ := audiotest.MP3Stream{Frames: audiotest.CBRFrames(cbrHeader, 10)}.Build()
	md := demuxBytes(t, append(tag, frames...))

	if md.DataStart != 15 {
		t.Errorf("DataStart = %d, want 15", md.DataStart)
	}
}

func TestDemux_SkipsInvalidCandidates(t *testing.T) {
	t.Parallel()

	bad := cbrHeader | 3<<10 // reserved sample rate
	data := []byte{byte(bad >> 24), byte(bad >> 16), byte(bad >> 8), byte(bad)}
	data = append(data, make([]byte, 20)...)

	frames, _ := audiotest.MP3Stream{Frames: audiotest.CBRFrames(cbrHeader, 10)}.Build()
	md := demuxBytes(t, append(data, frames...))

	if md.SampleRate != 44100 || md.BitRate != 128000 {
		t.Errorf("stream = %d Hz %d bit/s, want 44100 Hz 128000 bit/s", md.SampleRate, md.BitRate)
	}
}

func TestDemux_VBR(t *testing.T) {
	t.Parallel()

	data, _ := audiotest.MP3Stream{Frames: vbrFrames(40)}.Build()
	md := demuxBytes(t, data)

	if !md.VBR {
		t.Error("VBR = false, want true")
	}
	if md.TOC != nil {
		t.Error("TOC != nil without Xing frame")
	}
}

func TestDemux_LSF(t *testing.T) {
	t.Parallel()

	h := audiotest.MP3Header(audiotest.MPEG2, 8, 0, false, true)
	data, _ := audiotest.MP3Stream{Frames: audiotest.CBRFrames(h, 50)}.Build()
	md := demuxBytes(t, data)

	if !md.LSF || md.SamplesPerFrame != 576 || md.SampleRate != 22050 || md.Channels != 1 {
		t.Errorf("stream = lsf %v, spf %d, %d Hz, %d ch; want lsf true, spf 576, 22050 Hz, 1 ch",
			md.LSF, md.SamplesPerFrame, md.SampleRate, md.Channels)
	}
	if want := 2881.0 * 0.5 / 1152; md.MaxByteSizePerSample != want {
		t.Errorf("MaxByteSizePerSample = %v, want %v", md.MaxByteSizePerSample, want)
	}
}

func TestDemux_Xing(t *testing.T) {
	t.Parallel()

	toc := make([]byte, 100)
	for i := range toc {
		toc[i] = byte(i * 256 / 100)
	}

	data, offsets := audiotest.MP3Stream{
		Frames: vbrFrames(30),
		Xing: &audiotest.XingTag{
			Frames:  1000,
			TOC:     toc,
			LAME:    true,
			Delay:   576,
			Padding: 1105,
		},
	}.Build()

	md := demuxBytes(t, data)

	if !md.VBR {
		t.Error("VBR = false, want true")
	}
	if want := 1000.0 * 1152 / 44100; md.Duration != want {
		t.Errorf("Duration = %v, want %v", md.Duration, want)
	}
	if md.DataStart != offsets[0] {
		t.Errorf("DataStart = %d, want %d (after info frame)", md.DataStart, offsets[0])
	}
	if diff := cmp.Diff(toc, md.TOC); diff != "" {
		t.Errorf("TOC mismatch (-want +got):\n%s", diff)
	}
	if md.EncoderDelay != 576 || md.EncoderPadding != 1105 {
		t.Errorf("encoder delay/padding = %d/%d, want 576/1105", md.EncoderDelay, md.EncoderPadding)
	}
}

func TestDemux_Info(t *testing.T) {
	t.Parallel()

	data, offsets := audiotest.MP3Stream{
		Frames: audiotest.CBRFrames(cbrHeader, 30),
		Xing:   &audiotest.XingTag{Info: true, Frames: 30},
	}.Build()

	md := demuxBytes(t, data)

	if md.VBR {
		t.Error("VBR = true for an Info frame, want false")
	}
	if want := 30.0 * 1152 / 44100; md.Duration != want {
		t.Errorf("Duration = %v, want %v", md.Duration, want)
	}
	if md.DataStart != offsets[0] {
		t.Errorf("DataStart = %d, want %d", md.DataStart, offsets[0])
	}
	if md.EncoderDelay != 0 {
		t.Errorf("EncoderDelay = %d without LAME tag, want 0", md.EncoderDelay)
	}
}

func TestDemux_VBRI(t *testing.T) {
	t.Parallel()

	entries := make([]uint16, 9)
	for i := range entries {
		entries[i] = 10 * 417
	}

	data, offsets := audiotest.MP3Stream{
		Frames: audiotest.CBRFrames(cbrHeader, 100),
		VBRI: &audiotest.VBRITag{
			Frames:         100,
			Scale:          1,
			FramesPerEntry: 10,
			Entries:        entries,
		},
	}.Build()

	md := demuxBytes(t, data)

	if !md.VBR {
		t.Error("VBR = false, want true")
	}
	if md.DataStart != offsets[0] {
		t.Errorf("DataStart = %d, want %d", md.DataStart, offsets[0])
	}

	table := md.SeekTable
	if table == nil || !table.IsFromMetadata {
		t.Fatal("VBRI stream has no metadata seek table")
	}
	if table.Step() != 10 || table.Frames != 10 {
		t.Errorf("table step %d frames %d, want 10 and 10", table.Step(), table.Frames)
	}
	for i, off := range table.Offsets() {
		if off != offsets[i*10] {
			t.Errorf("table[%d] = %d, want %d", i, off, offsets[i*10])
		}
	}
	if table.TOCFilledUntil != md.Duration {
		t.Errorf("TOCFilledUntil = %v, want %v", table.TOCFilledUntil, md.Duration)
	}
}

func TestDemux_NotRecognized(t *testing.T) {
	t.Parallel()

	onlyTag := audiotest.ID3v2Tag(map[string]string{"TIT2": "x"}, 32)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"tiny", []byte{0xff, 0xfb}},
		{"text", []byte("This is not MP3 data, not even close to it.")},
		{"only id3v2", onlyTag},
		{"zeros", make([]byte, 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			md, err := Demux(bytesource.FromBytes(tt.data))
			if !errors.Is(err, ErrNotRecognized) {
				t.Errorf("Demux() error = %v, want ErrNotRecognized", err)
			}
			if md != nil {
				t.Errorf("Demux() = %+v, want nil", md)
			}
		})
	}
}

func TestDemux_Deterministic(t *testing.T) {
	t.Parallel()

	data, _ := audiotest.MP3Stream{
		ID3v2:  audiotest.ID3v2Tag(map[string]string{"TALB": "Album"}, 10),
		Frames: vbrFrames(60),
		ID3v1:  true,
	}.Build()

	first := demuxBytes(t, data)
	second := demuxBytes(t, data)

	if diff := cmp.Diff(first, second, cmp.AllowUnexported(SeekTable{})); diff != "" {
		t.Errorf("Demux() not deterministic (-first +second):\n%s", diff)
	}
}

func BenchmarkDemux(b *testing.B) {
	data, _ := audiotest.MP3Stream{Frames: vbrFrames(200)}.Build()

	b.ReportAllocs()
	for b.Loop() {
		if _, err := Demux(bytesource.FromBytes(data)); err != nil {
			b.Fatal(err)
		}
	}
}
