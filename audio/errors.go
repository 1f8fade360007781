// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat  = errors.New("no decoder registered for format")

	ErrBadQuality      = errors.New("bad quality value")
	ErrInvalidRate     = errors.New("invalid sample rate")
	ErrNotStarted      = errors.New("resampler not started")
	ErrAlreadyStarted  = errors.New("resampler already started")
	ErrChannelMismatch = errors.New("input doesn't have expected channel count")
	ErrInvalidLength   = errors.New("length exceeds channel buffer")
	ErrFilterTooLarge  = errors.New("filter too large for rate ratio")
)
