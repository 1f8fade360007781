// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrInvalidChannels   = errors.New("channel count must be positive")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrChannelMismatch   = errors.New("plane count does not match channel count")
	ErrPlaneLength       = errors.New("planes differ in length")
	ErrPartialFrame      = errors.New("interleaved samples do not form whole frames")
	ErrClosed            = errors.New("writer is closed")
)
