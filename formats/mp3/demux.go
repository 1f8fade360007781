// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"

	"github.com/ik5/audstream/bytesource"
)

// scanLimit bounds the header scan: 20 frames of the largest MPEG-1 size.
const scanLimit = 2314 * 20

// maxHeaders is the number of frame headers after which VBR detection stops.
const maxHeaders = 4

// Demux reads the stream layout of an MP3 file. It returns ErrNotRecognized
// when no layer III frame is found in the scan window or the data region is
// empty. Read failures other than running off the medium are returned as-is.
func Demux(src *bytesource.Reader) (*Metadata, error) {
	md, err := demux(src)
	if errors.Is(err, bytesource.ErrOutOfRange) {
		return nil, ErrNotRecognized
	}

	return md, err
}

func demux(src *bytesource.Reader) (*Metadata, error) {
	size := src.Size()
	if size < 4 {
		return nil, ErrNotRecognized
	}

	var dataStart int64
	dataEnd := size

	head, err := src.Uint32(0, binary.BigEndian)
	if err != nil {
		return nil, err
	}
	if head>>8 == tagID3 {
		tagSize, err := id3v2Size(src)
		if err != nil {
			return nil, err
		}
		dataStart = tagSize
	}

	if size >= id3v1Len {
		tag, err := src.Uint32(size-id3v1Len, binary.BigEndian)
		if err != nil {
			return nil, err
		}
		if tag>>8 == tagTAG {
			dataEnd -= id3v1Len
		}
	}

	if dataStart >= dataEnd {
		return nil, ErrNotRecognized
	}

	var (
		md           *Metadata
		header       uint32
		headersFound int
	)

	limit := min(dataEnd, dataStart+scanLimit)
	for i := dataStart; i < limit; i++ {
		b, err := src.Uint8(i)
		if err != nil {
			return nil, err
		}

		header = header<<8 | uint32(b)
		if !isSync(header) {
			continue
		}
		if headersFound > maxHeaders {
			break
		}

		fh, ok := parseHeader(header)
		if !ok {
			continue
		}
		headersFound++
		frameStart := i - 3

		if md == nil {
			md = &Metadata{
				SampleRate:      fh.sampleRate,
				Channels:        fh.channels,
				BitRate:         fh.bitRate,
				LSF:             fh.lsf == 1,
				SamplesPerFrame: fh.samplesPerFrame,
				DataStart:       dataStart,
				DataEnd:         dataEnd,
			}

			found, err := probeInfoFrame(src, md, frameStart, fh)
			if err != nil {
				return nil, err
			}
			if found {
				break
			}
		} else if md.BitRate != fh.bitRate {
			md.BitRate = fh.bitRate
			md.VBR = true
		}

		header = 0
		i = frameStart + int64(fh.frameSize) - 1
	}

	if md == nil || md.DataStart >= md.DataEnd {
		return nil, ErrNotRecognized
	}

	if md.Duration == 0 {
		md.Duration = float64(md.DataLength()) * 8 / float64(md.BitRate)
	}

	md.MaxByteSizePerSample = 2881 * (float64(md.SamplesPerFrame) / 1152) / 1152
	if frames := md.TotalFrames(); frames > 0 {
		md.AverageFrameSize = float64(md.DataLength()) / float64(frames)
	}

	if md.SeekTable != nil {
		md.SeekTable.TOCFilledUntil = md.Duration
	}

	return md, nil
}

// id3v2Size returns the byte length of a leading ID3v2 tag: header, body and
// optional footer.
func id3v2Size(src *bytesource.Reader) (int64, error) {
	if err := src.Ensure(0, 10); err != nil {
		return 0, err
	}

	flags, _ := src.Uint8(5)
	footer := int64((flags>>4)&1) * 10

	var body int64
	for i := int64(6); i < 10; i++ {
		b, _ := src.Uint8(i)
		// A set high bit is invalid in a synchsafe integer; drop it.
		body = body<<7 | int64(b&0x7f)
	}

	return body + 10 + footer, nil
}
