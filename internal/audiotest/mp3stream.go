// SPDX-License-Identifier: EPL-2.0

package audiotest

import "encoding/binary"

// MPEGVersion selects the version bits of a synthetic frame header.
type MPEGVersion int

const (
	MPEG1 MPEGVersion = iota
	MPEG2
	MPEG25
)

var (
	mp3SampleRates = [3]int{44100, 48000, 32000}

	mp3BitRates = [2][15]int{
		{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
	}
)

// MP3Header composes a layer III frame header without CRC.
func MP3Header(v MPEGVersion, bitRateIndex, sampleRateIndex int, padding, mono bool) uint32 {
	h := uint32(0xffe20000) | 1<<16 // sync, layer III, no CRC

	switch v {
	case MPEG1:
		h |= 3 << 19
	case MPEG2:
		h |= 2 << 19
	}

	h |= uint32(bitRateIndex&0xf) << 12
	h |= uint32(sampleRateIndex&3) << 10
	if padding {
		h |= 1 << 9
	}
	if mono {
		h |= 3 << 6
	}

	return h
}

// MP3FrameSize returns the byte length of the frame h starts.
func MP3FrameSize(h uint32) int {
	lsf, shift := 0, 0
	switch (h >> 19) & 3 {
	case 2:
		lsf, shift = 1, 1
	case 0:
		lsf, shift = 1, 2
	}

	rate := mp3SampleRates[(h>>10)&3] >> shift
	kbps := mp3BitRates[lsf][(h>>12)&0xf]
	pad := int(h>>9) & 1

	return kbps*144000/(rate<<lsf) + pad
}

// XingTag describes a Xing or Info frame written before the audio frames.
type XingTag struct {
	Info    bool // "Info" instead of "Xing", as written for CBR files
	Frames  uint32
	TOC     []byte // written when it has 100 entries
	LAME    bool
	Delay   int
	Padding int
}

// VBRITag describes a Fraunhofer VBRI frame. Entries are 2 bytes wide.
type VBRITag struct {
	Frames         uint32
	Scale          uint16
	FramesPerEntry uint16
	Entries        []uint16
}

// MP3Stream describes a synthetic MP3 file. Payloads are zero, which go-mp3
// decodes as silence.
type MP3Stream struct {
	ID3v2  []byte // raw tag, see ID3v2Tag
	Junk   int    // zero bytes between the tag and the first frame
	Frames []uint32
	Xing   *XingTag
	VBRI   *VBRITag
	ID3v1  bool
}

// Build renders the stream and returns the byte offsets of its audio frames.
// An info frame uses the header of the first audio frame.
func (s MP3Stream) Build() ([]byte, []int64) {
	out := append([]byte(nil), s.ID3v2...)
	out = append(out, make([]byte, s.Junk)...)

	if len(s.Frames) > 0 && (s.Xing != nil || s.VBRI != nil) {
		out = append(out, s.infoFrame(s.Frames[0])...)
	}

	offsets := make([]int64, 0, len(s.Frames))
	for _, h := range s.Frames {
		offsets = append(offsets, int64(len(out)))
		frame := make([]byte, MP3FrameSize(h))
		binary.BigEndian.PutUint32(frame, h)
		out = append(out, frame...)
	}

	if s.ID3v1 {
		tag := make([]byte, 128)
		copy(tag, "TAG")
		out = append(out, tag...)
	}

	return out, offsets
}

func (s MP3Stream) infoFrame(h uint32) []byte {
	frame := make([]byte, MP3FrameSize(h))
	binary.BigEndian.PutUint32(frame, h)

	if s.VBRI != nil {
		v := s.VBRI
		p := frame[36:]
		copy(p, "VBRI")
		binary.BigEndian.PutUint16(p[4:], 1)
		binary.BigEndian.PutUint32(p[14:], v.Frames)
		binary.BigEndian.PutUint16(p[18:], uint16(len(v.Entries)))
		binary.BigEndian.PutUint16(p[20:], v.Scale)
		binary.BigEndian.PutUint16(p[22:], 2)
		binary.BigEndian.PutUint16(p[24:], v.FramesPerEntry)
		for i, e := range v.Entries {
			binary.BigEndian.PutUint16(p[26+2*i:], e)
		}
		return frame
	}

	x := s.Xing
	p := frame[4+xingSideInfo(h):]
	if x.Info {
		copy(p, "Info")
	} else {
		copy(p, "Xing")
	}

	flags := uint32(0x1)
	if len(x.TOC) == 100 {
		flags |= 0x4
	}
	binary.BigEndian.PutUint32(p[4:], flags)
	binary.BigEndian.PutUint32(p[8:], x.Frames)

	at := 12
	if flags&0x4 != 0 {
		copy(p[at:], x.TOC)
		at += 100
	}

	if x.LAME {
		copy(p[at:], "LAME3.100")
		d := p[at+9+12:]
		d[0] = byte(x.Delay >> 4)
		d[1] = byte(x.Delay<<4) | byte(x.Padding>>8&0x0f)
		d[2] = byte(x.Padding)
	}

	return frame
}

func xingSideInfo(h uint32) int {
	mpeg1 := (h>>19)&3 == 3
	mono := (h>>6)&3 == 3

	switch {
	case mpeg1 && mono:
		return 17
	case mpeg1:
		return 32
	case mono:
		return 9
	default:
		return 17
	}
}

// CBRFrames returns n copies of h.
func CBRFrames(h uint32, n int) []uint32 {
	frames := make([]uint32, n)
	for i := range frames {
		frames[i] = h
	}

	return frames
}

// ID3v2Tag renders an ID3v2.3 tag with the given text frames (for example
// "TIT2", "TPE1", "TALB") followed by padding zero bytes.
func ID3v2Tag(frames map[string]string, padding int) []byte {
	var body []byte
	for _, id := range []string{"TIT2", "TPE1", "TALB", "TYER", "TRCK"} {
		text, ok := frames[id]
		if !ok {
			continue
		}
		hdr := make([]byte, 10)
		copy(hdr, id)
		binary.BigEndian.PutUint32(hdr[4:], uint32(len(text)+1))
		body = append(body, hdr...)
		body = append(body, 0) // ISO-8859-1
		body = append(body, text...)
	}
	body = append(body, make([]byte, padding)...)

	n := len(body)
	tag := []byte{'I', 'D', '3', 3, 0, 0,
		byte(n>>21&0x7f), byte(n>>14&0x7f), byte(n>>7&0x7f), byte(n&0x7f)}

	return append(tag, body...)
}
