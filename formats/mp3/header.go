// SPDX-License-Identifier: EPL-2.0

package mp3

var freqTab = [...]int{44100, 48000, 32000}

// bitRateTab holds kbit/s values: MPEG-1 first, then MPEG-2/2.5 (LSF).
var bitRateTab = [...]int{
	0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320,
	0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160,
}

const (
	// syncMask selects the 11 sync bits and the 2 layer bits.
	syncMask = 0xffe60000
	// syncLayer3 is the masked value of a layer III frame header.
	syncLayer3 = 0xffe20000

	tagID3   = 0x494433   // "ID3"
	tagTAG   = 0x544147   // "TAG"
	tagXing  = 0x58696e67 // "Xing"
	tagInfo  = 0x496e666f // "Info"
	tagVBRI  = 0x56425249 // "VBRI"
	id3v1Len = 128
)

type frameHeader struct {
	sampleRate      int
	bitRate         int // bit/s
	channels        int
	lsf             int
	padding         int
	frameSize       int // bytes, header included
	samplesPerFrame int
}

func isSync(h uint32) bool {
	return h&syncMask == syncLayer3
}

// parseHeader decodes a 32-bit frame header. ok is false when an index is
// outside its table or decodes to zero.
func parseHeader(h uint32) (fh frameHeader, ok bool) {
	var lsf, mpeg25 int
	if h&(1<<20) != 0 {
		if h&(1<<19) == 0 {
			lsf = 1
		}
	} else {
		lsf, mpeg25 = 1, 1
	}

	srIndex := int(h>>10) & 3
	if srIndex >= len(freqTab) {
		return fh, false
	}
	sampleRate := freqTab[srIndex] >> (lsf + mpeg25)

	brIndex := lsf*15 + int(h>>12)&0xf
	if brIndex >= len(bitRateTab) {
		return fh, false
	}
	bitRate := bitRateTab[brIndex] * 1000

	if bitRate == 0 || sampleRate == 0 {
		return fh, false
	}

	fh = frameHeader{
		sampleRate:      sampleRate,
		bitRate:         bitRate,
		channels:        2,
		lsf:             lsf,
		padding:         int(h>>9) & 1,
		samplesPerFrame: 1152,
	}
	if (h>>6)&3 == 3 {
		fh.channels = 1
	}
	if lsf == 1 {
		fh.samplesPerFrame = 576
	}
	fh.frameSize = (bitRate/1000*144000)/(sampleRate<<lsf) + fh.padding

	return fh, true
}

// sideInfoSize is the length of the side information that follows the
// 4-byte header; the Xing tag starts right after it.
func (fh frameHeader) sideInfoSize() int {
	switch {
	case fh.lsf == 0 && fh.channels == 1:
		return 17
	case fh.lsf == 0:
		return 32
	case fh.channels == 1:
		return 9
	default:
		return 17
	}
}
