// SPDX-License-Identifier: EPL-2.0

// Package trackinfo describes audio files: stream properties from the
// demuxer and artist, title and album from their tags. Files without usable
// tags are named after their file name.
package trackinfo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dhowden/tag"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audstream/bytesource"
	"github.com/ik5/audstream/formats"
	"github.com/ik5/audstream/formats/mp3"
)

// Unknown stands in for missing names.
const Unknown = "Unknown"

// DefaultLimit is the number of files ReadAll parses at once.
const DefaultLimit = 8

var (
	separatorPattern = regexp.MustCompile(`^(.+)\s*-\s*(.+)$`)
	extensionPattern = regexp.MustCompile(`(?i)\.[a-z0-9_\-]{1,8}$`)
	unknownPattern   = regexp.MustCompile(`(?i)^[\s<{\[(]*unknown[}\])>\s]*$`)
)

// Info describes one track.
type Info struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Genre       string
	Year        int
	Track       int
	TrackTotal  int
	Disc        int
	DiscTotal   int

	Codec          string
	Duration       time.Duration
	SampleRate     int
	Channels       int
	BitRate        int
	VBR            bool
	EncoderDelay   int
	EncoderPadding int

	// Autogenerated is set when Artist and Title come from the file name.
	Autogenerated bool
}

// Read describes the stream in src. Tags are optional; when the artist or
// title is missing both are derived from fileName.
func Read(src *bytesource.Reader, fileName string) (Info, error) {
	head := make([]byte, formats.SniffLen)
	n, err := io.ReadFull(src.Section(0, formats.SniffLen), head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Info{}, fmt.Errorf("reading %s: %w", fileName, err)
	}

	codec := formats.Sniff(head[:n])
	if codec != formats.MP3 {
		return Info{}, fmt.Errorf("%w: %s", ErrCodecNotSupported, fileName)
	}

	md, err := mp3.Demux(src)
	if errors.Is(err, mp3.ErrNotRecognized) {
		return Info{}, fmt.Errorf("%w: %s: %w", ErrCodecNotSupported, fileName, err)
	}
	if err != nil {
		return Info{}, fmt.Errorf("demuxing %s: %w", fileName, err)
	}

	info := Info{
		Codec:          codec,
		Duration:       time.Duration(md.Duration * float64(time.Second)),
		SampleRate:     md.SampleRate,
		Channels:       md.Channels,
		BitRate:        md.BitRate,
		VBR:            md.VBR,
		EncoderDelay:   md.EncoderDelay,
		EncoderPadding: md.EncoderPadding,
	}

	// A file without tags, or with tags the parser rejects, still plays.
	if m, err := tag.ReadFrom(src.Section(0, src.Size())); err == nil {
		applyTags(&info, m)
	}

	if info.Artist == "" || info.Title == "" {
		info.Artist, info.Title = FromFileName(fileName)
		info.Autogenerated = true
	}

	return info, nil
}

func applyTags(info *Info, m tag.Metadata) {
	info.Title = known(m.Title())
	info.Artist = known(m.Artist())
	info.Album = known(m.Album())
	info.AlbumArtist = known(m.AlbumArtist())
	info.Genre = known(m.Genre())
	info.Year = m.Year()
	info.Track, info.TrackTotal = m.Track()
	info.Disc, info.DiscTotal = m.Disc()
}

// known returns s trimmed, or "" when it is a placeholder such as
// "<Unknown>".
func known(s string) string {
	s = strings.TrimSpace(s)
	if IsUnknown(s) {
		return ""
	}

	return s
}

// IsUnknown reports whether s is empty or a placeholder for a missing name.
func IsUnknown(s string) bool {
	return s == "" || unknownPattern.MatchString(s)
}

// FromFileName splits a file name of the form "Artist - Title.ext". Without
// a separator the whole name is the title and the artist is Unknown.
func FromFileName(fileName string) (artist, title string) {
	name := extensionPattern.ReplaceAllString(fileName, "")

	m := separatorPattern.FindStringSubmatch(name)
	if m == nil {
		return Unknown, orUnknown(capitalize(strings.TrimSpace(name)))
	}

	return orUnknown(capitalize(strings.TrimSpace(m[1]))), orUnknown(capitalize(strings.TrimSpace(m[2])))
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}

	return s
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}

// Result is the outcome for one path of ReadAll.
type Result struct {
	Path string
	Info Info
	Err  error
}

// ReadAll describes paths, at most limit at a time (DefaultLimit when limit
// is not positive). Per-file failures are reported in the results; the
// returned error is only set when ctx ends before all files were read.
func ReadAll(ctx context.Context, paths []string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	results := make([]Result, len(paths))
	for i, path := range paths {
		results[i].Path = path
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i].Info, results[i].Err = readFile(path)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("%w", err)
	}

	return results, nil
}

func readFile(path string) (Info, error) {
	src, err := bytesource.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer src.Close()

	return Read(src, filepath.Base(path))
}
