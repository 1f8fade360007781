// SPDX-License-Identifier: EPL-2.0

package bytesource

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Slack is the number of bytes loaded past the requested range on a
// metadata window miss.
const Slack = 65536

// bulkFactor scales the requested size of a bulk window load.
const bulkFactor = 10

// Reader is a windowed random-access reader. It is not safe for concurrent
// use; a decode session owns its Reader.
type Reader struct {
	r      io.ReaderAt
	size   int64
	closer io.Closer

	buf   []byte
	start int64
	end   int64

	bulk      []byte
	bulkStart int64
	bulkEnd   int64
}

// New returns a Reader over the first size bytes of r.
func New(r io.ReaderAt, size int64) *Reader {
	return &Reader{
		r:         r,
		size:      size,
		start:     -1,
		end:       -1,
		bulkStart: -1,
		bulkEnd:   -1,
	}
}

// FromBytes returns a Reader over an in-memory blob.
func FromBytes(data []byte) *Reader {
	return New(bytes.NewReader(data), int64(len(data)))
}

// Open returns a Reader over the file at path. Close releases the file.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	s := New(f, info.Size())
	s.closer = f

	return s, nil
}

// Size returns the length of the medium in bytes.
func (s *Reader) Size() int64 { return s.size }

// Start returns the first offset of the metadata window, or -1 before the
// first load.
func (s *Reader) Start() int64 { return s.start }

// End returns the offset one past the metadata window.
func (s *Reader) End() int64 { return s.end }

// Close releases the backing file, if any.
func (s *Reader) Close() error {
	s.buf, s.bulk = nil, nil
	if s.closer == nil {
		return nil
	}

	err := s.closer.Close()
	s.closer = nil
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// Ensure makes offset..offset+length readable through the typed accessors.
func (s *Reader) Ensure(offset, length int64) error {
	if offset < 0 || length < 0 {
		return fmt.Errorf("%w: offset %d length %d", ErrOutOfRange, offset, length)
	}
	if s.buf != nil && s.start <= offset && offset+length <= s.end {
		return nil
	}
	if offset+length > s.size {
		return fmt.Errorf("%w: offset %d length %d size %d", ErrOutOfRange, offset, length, s.size)
	}

	start := max(min(s.size-1, offset), 0)
	end := max(min(s.size, offset+length+Slack), 0)

	buf, err := s.load(s.buf, start, end)
	if err != nil {
		// the failed read may have overwritten the old window
		s.buf, s.start, s.end = nil, -1, -1
		return err
	}

	s.buf, s.start, s.end = buf, start, end

	return nil
}

// BufferOfSizeAt returns the bulk window covering at least
// [start, start+size) clamped to the medium, together with the medium offset
// of its first byte. The returned slice is only valid until the next call.
func (s *Reader) BufferOfSizeAt(size, start int64) ([]byte, int64, error) {
	if s.size == 0 {
		return nil, 0, fmt.Errorf("%w: empty medium", ErrOutOfRange)
	}

	start = min(s.size-1, max(0, start))
	end := min(s.size, start+size)

	if s.bulk != nil && s.bulkStart <= start && end <= s.bulkEnd {
		return s.bulk, s.bulkStart, nil
	}

	end = min(s.size, start+size*bulkFactor)

	buf, err := s.load(s.bulk, start, end)
	if err != nil {
		s.bulk, s.bulkStart, s.bulkEnd = nil, -1, -1
		return nil, 0, err
	}

	s.bulk, s.bulkStart, s.bulkEnd = buf, start, end

	return s.bulk, s.bulkStart, nil
}

// Section returns an io.SectionReader over [offset, offset+n) of the medium.
// It bypasses both windows.
func (s *Reader) Section(offset, n int64) *io.SectionReader {
	return io.NewSectionReader(s.r, offset, n)
}

func (s *Reader) load(buf []byte, start, end int64) ([]byte, error) {
	n := int(end - start)
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]

	read, err := s.r.ReadAt(buf, start)
	if read == n {
		return buf, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}

	return nil, fmt.Errorf("reading [%d, %d): %w", start, end, err)
}

func (s *Reader) window(offset, length int64) ([]byte, error) {
	if err := s.Ensure(offset, length); err != nil {
		return nil, err
	}

	i := offset - s.start

	return s.buf[i : i+length], nil
}

func (s *Reader) Uint8(offset int64) (uint8, error) {
	b, err := s.window(offset, 1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func (s *Reader) Int8(offset int64) (int8, error) {
	v, err := s.Uint8(offset)
	return int8(v), err
}

func (s *Reader) Uint16(offset int64, order binary.ByteOrder) (uint16, error) {
	b, err := s.window(offset, 2)
	if err != nil {
		return 0, err
	}

	return order.Uint16(b), nil
}

func (s *Reader) Int16(offset int64, order binary.ByteOrder) (int16, error) {
	v, err := s.Uint16(offset, order)
	return int16(v), err
}

func (s *Reader) Uint32(offset int64, order binary.ByteOrder) (uint32, error) {
	b, err := s.window(offset, 4)
	if err != nil {
		return 0, err
	}

	return order.Uint32(b), nil
}

func (s *Reader) Int32(offset int64, order binary.ByteOrder) (int32, error) {
	v, err := s.Uint32(offset, order)
	return int32(v), err
}

func (s *Reader) Float32(offset int64, order binary.ByteOrder) (float32, error) {
	v, err := s.Uint32(offset, order)
	return math.Float32frombits(v), err
}

func (s *Reader) Float64(offset int64, order binary.ByteOrder) (float64, error) {
	b, err := s.window(offset, 8)
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(order.Uint64(b)), nil
}
