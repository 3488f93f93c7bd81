package journal

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/fxplan/market"
	"github.com/rustyeddy/fxplan/pkg/id"
	"github.com/rustyeddy/fxplan/signal"
)

// Columns is the CSV header, in order.
var Columns = []string{
	"Date", "Pair", "Direction", "Entry", "Exit", "SL", "TP",
	"Lot_Size", "P/L (Pips)", "P/L ($)", "Outcome", "Reason", "Review",
}

// numeric columns default to 0.0 when missing, the rest to "".
var numericColumns = map[string]bool{
	"Entry": true, "Exit": true, "SL": true, "TP": true,
	"Lot_Size": true, "P/L (Pips)": true, "P/L ($)": true,
}

// dateLayouts are accepted on load. Records are always written with DateLayout.
var dateLayouts = []string{DateLayout, "2006-01-02 15:04", "2006-01-02 15:04:05", time.RFC3339}

// CSVStore keeps the journal in a single CSV file. Records receive fresh
// IDs on every load.
type CSVStore struct {
	path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Path() string { return s.path }

func (s *CSVStore) Load(ctx context.Context) ([]Record, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV decodes a journal. Columns are matched by header name; missing
// columns are backfilled.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	var out []Record
	for row := 2; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		rec, err := decodeRow(index, fields)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeRow(index map[string]int, fields []string) (Record, error) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(fields) {
			if numericColumns[col] {
				return "0.0"
			}
			return ""
		}
		return strings.TrimSpace(fields[i])
	}
	num := func(col string) (float64, error) {
		v := get(col)
		if v == "" {
			return 0, nil
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", col, err)
		}
		return x, nil
	}

	var rec Record
	var err error
	if rec.Date, err = parseDate(get("Date")); err != nil {
		return rec, err
	}
	rec.Pair = market.NormalizePair(get("Pair"))
	if d := get("Direction"); d != "" && d != "None" {
		if rec.Direction, err = signal.ParseDirection(d); err != nil {
			return rec, err
		}
	}

	targets := []struct {
		col string
		dst *float64
	}{
		{"Entry", &rec.Entry},
		{"Exit", &rec.Exit},
		{"SL", &rec.StopLoss},
		{"TP", &rec.TakeProfit},
		{"Lot_Size", &rec.LotSize},
		{"P/L (Pips)", &rec.PLPips},
		{"P/L ($)", &rec.PLUSD},
	}
	for _, t := range targets {
		if *t.dst, err = num(t.col); err != nil {
			return rec, err
		}
	}

	if rec.Outcome, err = ParseOutcome(get("Outcome")); err != nil {
		return rec, err
	}
	rec.Reason = get("Reason")
	rec.Review = get("Review")
	if rec.Date.IsZero() {
		rec.ID = id.New()
	} else {
		rec.ID = id.NewAt(rec.Date)
	}
	return rec, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, market.Invalid("date", "unrecognised date %q", s)
}

// Save rewrites the file through a temp file and rename so a failed write
// leaves the previous journal in place.
func (s *CSVStore) Save(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".journal-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// WriteCSV encodes records with the Columns header.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		date := ""
		if !r.Date.IsZero() {
			date = r.Date.Format(DateLayout)
		}
		row := []string{
			date,
			r.Pair,
			r.Direction.String(),
			f(r.Entry),
			f(r.Exit),
			f(r.StopLoss),
			f(r.TakeProfit),
			f(r.LotSize),
			f(r.PLPips),
			f(r.PLUSD),
			r.Outcome.String(),
			r.Reason,
			r.Review,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *CSVStore) Close() error { return nil }

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
