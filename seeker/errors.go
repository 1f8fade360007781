// SPDX-License-Identifier: EPL-2.0

package seeker

import "errors"

var ErrUnsupportedType = errors.New("unsupported type")
