// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	// ErrNotRecognized is returned by Demux when no MPEG audio layer III
	// stream could be found. Callers map it to "codec not supported".
	ErrNotRecognized = errors.New("mp3: format not recognized")

	ErrDecoderStarted    = errors.New("mp3: previous decoding in session, call End()")
	ErrDecoderNotStarted = errors.New("mp3: call Start() before decoding")
)
