package longpoll

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sagemsg/gmweb/internal/metrics"
)

// maxElementSize caps accumulated element size at 10MB (fatal on
// overflow), per spec §4.5.2.
const maxElementSize = 10 * 1024 * 1024

// Framer decodes the nested-JSON-array long-poll stream body
// (spec §4.5.2): the first two bytes must be "[[", elements are
// comma-separated, the stream terminates with "]]" or plain EOF.
// Element accumulation proceeds byte-by-byte until a candidate
// element (ending with ']') parses as a standalone JSON value; on
// success the buffer is always cleared, even if a later decode step
// fails, so the framer stays synchronized.
type Framer struct {
	r        io.Reader
	buf      []byte
	prefixed bool
}

// NewFramer wraps a stream body reader.
func NewFramer(r io.Reader) *Framer {
	return &Framer{r: r}
}

// Next reads and returns the next decoded element as a raw JSON
// value, or io.EOF when the stream ends cleanly (]] or plain EOF).
func (f *Framer) Next() (json.RawMessage, error) {
	if !f.prefixed {
		if err := f.consumePrefix(); err != nil {
			return nil, err
		}
	}

	one := make([]byte, 1)
	for {
		n, err := f.r.Read(one)
		if n == 0 && err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("longpoll: reading stream: %w", err)
		}
		b := one[0]

		if b == ',' && len(f.buf) == 0 {
			continue // separator between elements
		}
		if b == ']' && len(f.buf) == 0 {
			// closing "]]" — the second ']' of the frame terminator.
			return nil, io.EOF
		}

		f.buf = append(f.buf, b)
		if len(f.buf) > maxElementSize {
			metrics.FrameOverflows.Inc()
			return nil, fmt.Errorf("longpoll: element exceeds %d bytes", maxElementSize)
		}

		if b == ']' {
			var candidate json.RawMessage
			if json.Valid(f.buf) {
				candidate = append(json.RawMessage(nil), f.buf...)
				f.buf = f.buf[:0]
				return candidate, nil
			}
			// Not yet a complete value (e.g. a nested array's closing
			// bracket) — keep accumulating.
		}
	}
}

// consumePrefix reads and validates the opening "[[".
func (f *Framer) consumePrefix() error {
	prefix := make([]byte, 2)
	if _, err := io.ReadFull(f.r, prefix); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return io.EOF
		}
		return fmt.Errorf("longpoll: reading stream prefix: %w", err)
	}
	if !bytes.Equal(prefix, []byte("[[")) {
		return fmt.Errorf("longpoll: stream did not start with \"[[\", got %q", prefix)
	}
	f.prefixed = true
	return nil
}
