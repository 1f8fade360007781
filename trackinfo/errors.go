// SPDX-License-Identifier: EPL-2.0

package trackinfo

import "errors"

var ErrCodecNotSupported = errors.New("codec not supported")
