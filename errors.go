// SPDX-License-Identifier: EPL-2.0

package audstream

import "errors"

var ErrUnrecognized = errors.New("unrecognized audio stream")
