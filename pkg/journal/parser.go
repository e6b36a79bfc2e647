package journal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ErrUnreadable is returned when the journal bytes cannot be read or decoded.
var ErrUnreadable = errors.New("journal export is unreadable")

// ShiftJIS is the encoding Money Forward uses for its CSV exports.
var ShiftJIS encoding.Encoding = japanese.ShiftJIS

var lineBreak = regexp.MustCompile(`\r?\n`)

// Option configures Parse.
type Option func(*options)

type options struct {
	markers Markers
}

// WithMarkers overrides the tax-category markers.
func WithMarkers(m Markers) Option {
	return func(o *options) {
		o.markers = m
	}
}

// Parse reads a journal export encoded with enc and returns its transactions
// sorted by date. The first non-blank line is a header and is skipped.
// A nil enc means the input is already UTF-8.
func Parse(r io.Reader, enc encoding.Encoding, opts ...Option) ([]Transaction, error) {
	o := options{markers: DefaultMarkers()}
	for _, opt := range opts {
		opt(&o)
	}

	var src io.Reader = r
	if enc != nil {
		src = transform.NewReader(r, enc.NewDecoder())
	}

	decoded, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var rows []Line
	header := true
	for _, text := range lineBreak.Split(string(decoded), -1) {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if header {
			header = false
			continue
		}
		rows = append(rows, LineFromFields(SplitFields(text)))
	}

	transactions := Group(rows, o.markers)
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date < transactions[j].Date
	})

	slog.Debug("Parsed journal export", "rows", len(rows), "transactions", len(transactions))

	return transactions, nil
}

// ParseBytes is Parse over an in-memory export.
func ParseBytes(data []byte, enc encoding.Encoding, opts ...Option) ([]Transaction, error) {
	return Parse(bytes.NewReader(data), enc, opts...)
}
