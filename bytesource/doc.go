// SPDX-License-Identifier: EPL-2.0

// Package bytesource provides random-access reads over a large immutable
// byte medium (a file or an in-memory blob) through a lazily loaded window.
//
// Two independent windows are kept:
//
//   - the metadata window, used by the typed accessors (Uint8, Uint32, ...)
//     and sized as the requested range plus Slack bytes;
//   - the bulk window, returned by BufferOfSizeAt and sized at ten times the
//     requested size, used by the decode hot path.
//
// Keeping them apart stops small header reads and large per-frame reads from
// evicting each other. A miss on either window replaces it completely.
//
//	src, err := bytesource.Open("track.mp3")
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//
//	v, err := src.Uint32(0, binary.BigEndian)
//
// Reads beyond the end of the medium fail with ErrOutOfRange.
package bytesource
