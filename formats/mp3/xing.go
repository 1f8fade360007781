// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"

	"github.com/ik5/audstream/bytesource"
)

// Xing header flags.
const (
	xingFrames = 0x1
	xingBytes  = 0x2
	xingTOC    = 0x4
	xingScale  = 0x8
)

const (
	tocLength = 100

	// lameVersionLen is the length of the encoder string that opens a LAME tag.
	lameVersionLen = 9
	// lameDelayOffset is the distance from the end of the version string to
	// the packed 12-bit delay and padding fields.
	lameDelayOffset = 12

	// vbriOffset is the fixed distance of "VBRI" from the frame start:
	// header plus 32 bytes of side information.
	vbriOffset = 4 + 32
	vbriHeaderLen = 26
)

// probeInfoFrame checks the first frame for a Xing, Info or VBRI marker and
// fills md from it. found reports whether a marker was present; the frame
// then carries no audio and DataStart moves past it.
func probeInfoFrame(src *bytesource.Reader, md *Metadata, frameStart int64, fh frameHeader) (found bool, err error) {
	frameEnd := frameStart + int64(fh.frameSize)

	xingPos := frameStart + 4 + int64(fh.sideInfoSize())
	if xingPos+8 <= md.DataEnd {
		tag, err := src.Uint32(xingPos, binary.BigEndian)
		if err != nil {
			return false, err
		}
		if tag == tagXing || tag == tagInfo {
			if err := parseXing(src, md, xingPos, tag == tagXing); err != nil {
				return false, err
			}
			md.DataStart = frameEnd
			return true, nil
		}
	}

	vbriPos := frameStart + vbriOffset
	if vbriPos+vbriHeaderLen <= md.DataEnd {
		tag, err := src.Uint32(vbriPos, binary.BigEndian)
		if err != nil {
			return false, err
		}
		if tag == tagVBRI {
			md.DataStart = frameEnd
			if err := parseVBRI(src, md, vbriPos); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	return false, nil
}

func parseXing(src *bytesource.Reader, md *Metadata, pos int64, vbr bool) error {
	if vbr {
		md.VBR = true
	}

	flags, err := src.Uint32(pos+4, binary.BigEndian)
	if err != nil {
		return err
	}

	p := pos + 8
	if flags&xingFrames != 0 {
		frames, err := src.Uint32(p, binary.BigEndian)
		if err != nil {
			return err
		}
		md.Duration = float64(frames) * float64(md.SamplesPerFrame) / float64(md.SampleRate)
		p += 4
	}
	if flags&xingBytes != 0 {
		p += 4
	}
	if flags&xingTOC != 0 {
		if err := src.Ensure(p, tocLength); err != nil {
			return err
		}
		toc := make([]byte, tocLength)
		for i := range toc {
			toc[i], _ = src.Uint8(p + int64(i))
		}
		md.TOC = toc
		p += tocLength
	}
	if flags&xingScale != 0 {
		p += 4
	}

	return parseLAME(src, md, p)
}

// parseLAME reads encoder delay and padding when a LAME extension follows the
// Xing fields. A missing or truncated tag leaves both at zero.
func parseLAME(src *bytesource.Reader, md *Metadata, pos int64) error {
	at := pos + lameVersionLen + lameDelayOffset
	if at+3 > md.DataEnd {
		return nil
	}

	id, err := src.Uint32(pos, binary.BigEndian)
	if err != nil {
		return err
	}
	// "LAME" or "Lavf"/"Lavc" from encoders that write the same layout.
	if id != 0x4c414d45 && id>>8 != 0x4c6176 {
		return nil
	}

	var b [3]byte
	for i := range b {
		b[i], err = src.Uint8(at + int64(i))
		if err != nil {
			return err
		}
	}

	md.EncoderDelay = int(b[0])<<4 | int(b[1])>>4
	md.EncoderPadding = int(b[1]&0x0f)<<8 | int(b[2])

	return nil
}

func parseVBRI(src *bytesource.Reader, md *Metadata, pos int64) error {
	md.VBR = true

	frames, err := src.Uint32(pos+14, binary.BigEndian)
	if err != nil {
		return err
	}
	md.Duration = float64(frames) * float64(md.SamplesPerFrame) / float64(md.SampleRate)

	entries, err := src.Uint16(pos+18, binary.BigEndian)
	if err != nil {
		return err
	}
	scale, err := src.Uint16(pos+20, binary.BigEndian)
	if err != nil {
		return err
	}
	entrySize, err := src.Uint16(pos+22, binary.BigEndian)
	if err != nil {
		return err
	}
	framesPerEntry, err := src.Uint16(pos+24, binary.BigEndian)
	if err != nil {
		return err
	}

	if entries == 0 || framesPerEntry == 0 || entrySize == 0 || entrySize > 4 {
		return nil
	}

	tocStart := pos + vbriHeaderLen
	if tocStart+int64(entries)*int64(entrySize) > md.DataEnd {
		return nil
	}

	offsets := make([]int64, 1, int(entries)+1)
	offsets[0] = md.DataStart
	at := tocStart
	for range entries {
		var v int64
		for range entrySize {
			b, err := src.Uint8(at)
			if err != nil {
				return err
			}
			v = v<<8 | int64(b)
			at++
		}

		next := offsets[len(offsets)-1] + v*int64(scale)
		if next <= offsets[len(offsets)-1] || next >= md.DataEnd {
			break
		}
		offsets = append(offsets, next)
	}

	md.SeekTable = newMetadataSeekTable(offsets, int(framesPerEntry))

	return nil
}
