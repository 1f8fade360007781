// SPDX-License-Identifier: EPL-2.0

// Package formats recognizes audio containers from their leading bytes.
// Decoders for individual formats live in the sub-packages.
package formats

import "bytes"

// Codec names returned by Sniff.
const (
	WAV  = "wav"
	MP3  = "mp3"
	AAC  = "aac"
	WebM = "webm"
	Ogg  = "ogg"
)

// SniffLen is the number of leading bytes Sniff looks at.
const SniffLen = 12

var (
	riff   = []byte("RIFF")
	wave   = []byte("WAVE")
	id3    = []byte("ID3")
	ebml   = []byte{0x1a, 0x45, 0xdf, 0xa3}
	oggMag = []byte("OggS")
)

// Sniff returns the codec name of the stream starting with head, or "" when
// nothing matches. Only the first SniffLen bytes are considered. Signatures
// may start at any position; the leftmost one wins, and at equal positions
// the order WAV, MP3, AAC, WebM, Ogg applies.
func Sniff(head []byte) string {
	if len(head) > SniffLen {
		head = head[:SniffLen]
	}

	for i := range head {
		if name := matchAt(head[i:]); name != "" {
			return name
		}
	}

	return ""
}

func matchAt(b []byte) string {
	switch {
	case len(b) >= 12 && bytes.HasPrefix(b, riff) && bytes.HasPrefix(b[8:], wave):
		return WAV
	case bytes.HasPrefix(b, id3), isMPEGSync(b):
		return MP3
	case len(b) >= 2 && b[0] == 0xff && (b[1] == 0xf1 || b[1] == 0xf9):
		return AAC
	case bytes.HasPrefix(b, ebml):
		return WebM
	case bytes.HasPrefix(b, oggMag):
		return Ogg
	}

	return ""
}

// isMPEGSync reports an 11-bit frame sync followed by a byte with a valid
// bitrate and sample rate index.
func isMPEGSync(b []byte) bool {
	return len(b) >= 4 && b[0] == 0xff && b[1] >= 0xf0 && b[2] >= 0x02 && b[2] <= 0xef
}
