// SPDX-License-Identifier: EPL-2.0

// Package seeker maps a playback time to a byte offset for any codec the
// module can seek in.
package seeker

import (
	"fmt"

	"github.com/ik5/audstream/bytesource"
	"github.com/ik5/audstream/formats"
	"github.com/ik5/audstream/formats/mp3"
)

// Seek returns where decoding of codec must resume to reach time t in
// seconds. md must come from the codec's demuxer; src is read when the
// stream's seek table has to be extended. Codecs other than mp3 fail with
// ErrUnsupportedType.
func Seek(codec string, t float64, md *mp3.Metadata, src *bytesource.Reader) (mp3.SeekResult, error) {
	switch codec {
	case formats.MP3:
		res, err := mp3.Seek(t, md, src)
		if err != nil {
			return mp3.SeekResult{}, fmt.Errorf("seeking %s to %.3fs: %w", codec, t, err)
		}
		return res, nil
	}

	return mp3.SeekResult{}, fmt.Errorf("%w: %q", ErrUnsupportedType, codec)
}

// Supported reports whether Seek handles codec.
func Supported(codec string) bool {
	return codec == formats.MP3
}
