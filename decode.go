// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/formats"
	"github.com/ik5/audstream/formats/mp3"
)

// NewRegistry returns a registry with every built-in decoder.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(formats.MP3, mp3.Decoder{})

	return reg
}

// fileSource closes the file the wrapped source reads from.
type fileSource struct {
	audio.Source
	f *os.File
}

func (s *fileSource) Close() error {
	return multierr.Append(s.Source.Close(), s.f.Close())
}

// DecodeFile sniffs the file at path and decodes it with the matching
// decoder from reg, or from NewRegistry when reg is nil. It returns the
// source and the detected format. Closing the source closes the file.
func DecodeFile(reg *audio.Registry, path string) (audio.Source, string, error) {
	if reg == nil {
		reg = NewRegistry()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w", err)
	}

	format, err := sniffFile(f)
	if err == nil {
		var src audio.Source
		src, err = reg.Decode(format, f)
		if err == nil {
			return &fileSource{Source: src, f: f}, format, nil
		}
	}

	return nil, format, multierr.Append(fmt.Errorf("%s: %w", path, err), f.Close())
}

// sniffFile detects the format from the head of f and rewinds it.
func sniffFile(f *os.File) (string, error) {
	head := make([]byte, formats.SniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading header: %w", err)
	}

	format := formats.Sniff(head[:n])
	if format == "" {
		return "", ErrUnrecognized
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w", err)
	}

	return format, nil
}
