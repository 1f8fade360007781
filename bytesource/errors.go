// SPDX-License-Identifier: EPL-2.0

package bytesource

import "errors"

var (
	// ErrOutOfRange is returned when a read reaches past the end of the medium.
	ErrOutOfRange = errors.New("read past end of medium")
)
