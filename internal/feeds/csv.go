package feeds

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

type table struct {
	columns []string
	index   map[string]int
	rows    [][]string
	lines   []int
}

// readTable loads the whole CSV. Blank lines are skipped, short rows padded.
func readTable(r io.Reader, file string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ValidationError{File: file, Err: ErrEmptyFile}
	}
	if err != nil {
		return nil, &ValidationError{File: file, Err: ErrMalformed, Detail: err.Error()}
	}

	t := &table{index: map[string]int{}}
	for i, h := range headers {
		name := cleanHeader(h)
		t.columns = append(t.columns, name)
		key := normalizeHeader(name)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}

	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return nil, &ValidationError{File: file, Line: line, Err: ErrMalformed, Detail: err.Error()}
		}
		// encoding/csv drops empty lines, so take the position from the reader.
		line, _ = reader.FieldPos(0)
		if blankRecord(rec) {
			continue
		}
		for len(rec) < len(t.columns) {
			rec = append(rec, "")
		}
		t.rows = append(t.rows, rec)
		t.lines = append(t.lines, line)
	}
	return t, nil
}

func (t *table) has(name string) bool {
	_, ok := t.index[normalizeHeader(name)]
	return ok
}

func (t *table) missing(names ...string) []string {
	var out []string
	for _, n := range names {
		if !t.has(n) {
			out = append(out, n)
		}
	}
	return out
}

func (t *table) get(rec []string, name string) string {
	pos, ok := t.index[normalizeHeader(name)]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func (t *table) fields(rec []string) map[string]string {
	out := make(map[string]string, len(t.columns))
	for i, c := range t.columns {
		if i < len(rec) {
			out[c] = strings.TrimSpace(rec[i])
		}
	}
	return out
}

func cleanHeader(h string) string {
	return strings.TrimSpace(strings.ReplaceAll(h, "\ufeff", ""))
}

func normalizeHeader(h string) string {
	return strings.ToLower(cleanHeader(h))
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02",
}

// ParseTimestamp accepts the export formats seen in both feeds. Blank input
// yields the zero time and no error.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm.In(loc), nil
		}
	}
	for _, layout := range timestampLayouts {
		if tm, err := time.ParseInLocation(layout, s, loc); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, errors.New("unsupported time format: " + strconv.Quote(s))
}

// ParseCount reads an order count such as "12" or "12.0". Blank counts are 0;
// NaN, infinities and values outside the int range are rejected.
func ParseCount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f >= math.MaxInt || f < math.MinInt {
		return 0, false
	}
	return int(f), true
}
