package core

// streaming.go cleans the byte stream before the CSV parser sees it.
//
// Spreadsheet exports routinely start with a UTF-8 byte order mark, which
// would otherwise stick to the first header ("\uFEFFCountry Name"), and now
// and then contain stray Latin-1 bytes. SourceReader strips the former and
// replaces the latter with '?' without buffering the whole file.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SourceReader wraps an io.Reader, skips a leading UTF-8 BOM and replaces
// invalid UTF-8 bytes with '?'.
type SourceReader struct {
	br         *bufio.Reader
	bomChecked bool

	// Tail of a multi-byte rune that did not fit in the caller's buffer.
	pending []byte
}

// NewSourceReader creates a SourceReader over r.
func NewSourceReader(r io.Reader) *SourceReader {
	return &SourceReader{br: bufio.NewReaderSize(r, 64*1024)}
}

// Read implements io.Reader.
func (s *SourceReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if !s.bomChecked {
		s.bomChecked = true
		if head, err := s.br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			_, _ = s.br.Discard(len(utf8BOM))
		}
	}

	written := 0
	for written < len(p) {
		if len(s.pending) > 0 {
			c := copy(p[written:], s.pending)
			s.pending = s.pending[c:]
			written += c
			continue
		}

		r, size, err := s.br.ReadRune()
		if err != nil {
			return written, err
		}

		// Invalid byte: a single '?' keeps the output no longer than the input.
		if r == utf8.RuneError && size == 1 {
			p[written] = '?'
			written++
			continue
		}

		if size <= len(p)-written {
			utf8.EncodeRune(p[written:], r)
			written += size
			continue
		}

		var buf [utf8.UTFMax]byte
		utf8.EncodeRune(buf[:], r)
		c := copy(p[written:], buf[:size])
		s.pending = append(s.pending[:0], buf[c:size]...)
		written += c
	}

	return written, nil
}
