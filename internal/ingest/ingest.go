package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"yt-traffic/internal/domain"
)

// DefaultSourceTypes are the traffic source prefixes that carry a video id.
var DefaultSourceTypes = []string{"YT_RELATED"}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type Options struct {
	Encodings   []Encoding // tried in order, default UTF-8 then Latin-1
	SourceTypes []string   // default YT_RELATED
}

func (o Options) withDefaults() Options {
	if len(o.Encodings) == 0 {
		o.Encodings = DefaultEncodings
	}
	if len(o.SourceTypes) == 0 {
		o.SourceTypes = DefaultSourceTypes
	}
	return o
}

// FormatError means the file as a whole cannot be used.
type FormatError struct {
	Field  string
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("csv format error: %s (line %d): %s", e.Field, e.Line, e.Reason)
	}
	return fmt.Sprintf("csv format error: %s: %s", e.Field, e.Reason)
}

// RowError describes a data row that was dropped.
type RowError struct {
	Line    int
	VideoID domain.VideoID
	Field   string
	Value   string
	Err     error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d (%s): %s=%q: %v", e.Line, e.VideoID, e.Field, e.Value, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

type Result struct {
	Rows       []domain.TrafficRow // one per id, first-appearance order
	Encoding   Encoding
	DataRows   int // rows after the header and totals
	Skipped    int // rows whose source is not a matching video reference
	Duplicates int
	Malformed  []RowError
}

func (r *Result) IDs() []domain.VideoID {
	ids := make([]domain.VideoID, len(r.Rows))
	for i, row := range r.Rows {
		ids[i] = row.VideoID
	}
	return ids
}

func ParseFile(path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	return Parse(data, opts)
}

// Parse reads an analytics traffic-source export. Line 1 is the header and
// line 2 the totals row. When an id appears more than once the row with the
// most views is kept; on a tie the first one wins.
func Parse(data []byte, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	text, enc, err := decodeFirst(data, opts.Encodings)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &FormatError{Field: "header", Line: 1, Reason: "file is empty"}
	}
	if err != nil {
		return nil, csvError(err)
	}
	cols, err := resolveLayout(header)
	if err != nil {
		return nil, err
	}

	res := &Result{Encoding: enc}
	index := make(map[domain.VideoID]int)
	totalsSeen := false

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		if !totalsSeen {
			totalsSeen = true
			continue
		}
		line, _ := r.FieldPos(0)
		res.DataRows++

		id, ok := extractID(field(rec, cols.source), opts.SourceTypes)
		if !ok {
			res.Skipped++
			continue
		}

		row, rowErr := parseRow(rec, cols, id, line)
		if rowErr != nil {
			res.Malformed = append(res.Malformed, *rowErr)
			continue
		}

		if pos, dup := index[id]; dup {
			res.Duplicates++
			if row.Views > res.Rows[pos].Views {
				res.Rows[pos] = row
			}
			continue
		}
		index[id] = len(res.Rows)
		res.Rows = append(res.Rows, row)
	}

	switch {
	case res.DataRows == 0:
		return nil, &FormatError{Field: colSource.name, Reason: "no data rows after header and totals"}
	case len(res.Rows) == 0 && len(res.Malformed) == 0:
		return nil, &FormatError{Field: colSource.name, Reason: fmt.Sprintf("no rows reference a video (%s.<id>)", strings.Join(opts.SourceTypes, "|"))}
	case len(res.Rows) == 0:
		return nil, &FormatError{Field: res.Malformed[0].Field, Line: res.Malformed[0].Line, Reason: "every matching row is malformed"}
	}
	return res, nil
}

func parseRow(rec []string, cols layout, id domain.VideoID, line int) (domain.TrafficRow, *RowError) {
	row := domain.TrafficRow{
		VideoID:       id,
		TrafficSource: field(rec, cols.source),
		Line:          line,
	}
	bad := func(name string, idx int, err error) *RowError {
		return &RowError{Line: line, VideoID: id, Field: name, Value: field(rec, idx), Err: err}
	}

	var err error
	if row.Impressions, err = parseCount(field(rec, cols.impressions)); err != nil {
		return row, bad(colImpressions.name, cols.impressions, err)
	}
	if row.CTR, err = parseFloat(field(rec, cols.ctr), 0, 100); err != nil {
		return row, bad(colCTR.name, cols.ctr, err)
	}
	if row.Views, err = parseCount(field(rec, cols.views)); err != nil {
		return row, bad(colViews.name, cols.views, err)
	}
	if row.AvgViewDuration, err = parseDuration(field(rec, cols.avgDuration)); err != nil {
		return row, bad(colAvgDuration.name, cols.avgDuration, err)
	}
	if row.WatchTimeHours, err = parseFloat(field(rec, cols.watchTime), 0, 1e12); err != nil {
		return row, bad(colWatchTime.name, cols.watchTime, err)
	}
	return row, nil
}

// extractID returns the id from "SOURCE_TYPE.id" when SOURCE_TYPE is accepted.
func extractID(source string, types []string) (domain.VideoID, bool) {
	for _, t := range types {
		prefix := t + "."
		if !strings.HasPrefix(source, prefix) {
			continue
		}
		id := source[len(prefix):]
		if videoIDPattern.MatchString(id) {
			return domain.VideoID(id), true
		}
	}
	return "", false
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &FormatError{Field: "csv", Line: pe.Line, Reason: pe.Err.Error()}
	}
	return fmt.Errorf("ingest: %w", err)
}
