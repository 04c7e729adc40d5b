// Package ingest parses uploaded retailer sheets (xlsx or csv) into domain
// rows. Headers are sanitized before matching so the usual spreadsheet
// decorations ("Distributor Name*", trailing spaces, mixed case) don't matter.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"routeplanner/internal/model"
)

var (
	ErrEmptySheet        = errors.New("sheet has no data rows")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	errMissingColumns    = errors.New("missing required columns")
	nonAlphanumericOrWS  = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
)

// Parse reads retailer rows from the given file content, dispatching on the
// filename extension (.xlsx or .csv).
func Parse(r io.Reader, filename string) ([]model.Retailer, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return ParseWorkbook(r)
	case ".csv":
		return ParseCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ParseWorkbook reads the first sheet of an xlsx workbook.
func ParseWorkbook(r io.Reader) ([]model.Retailer, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return fromRows(rows)
}

// ParseCSV reads retailer rows from csv content.
func ParseCSV(r io.Reader) ([]model.Retailer, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(rows)
}

// SanitizeColumn normalizes a header cell: special characters stripped,
// lowercased, spaces collapsed to underscores.
// "Salesperson  Latitude*" becomes "salesperson_latitude".
func SanitizeColumn(col string) string {
	clean := nonAlphanumericOrWS.ReplaceAllString(col, "")
	clean = strings.ToLower(strings.TrimSpace(clean))
	return strings.Join(strings.Fields(clean), "_")
}

// columns maps sanitized header names to their index.
type columns map[string]int

// index returns the position of the first matching header alternative.
func (c columns) index(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := c[n]; ok {
			return i, true
		}
	}
	return 0, false
}

func fromRows(rows [][]string) ([]model.Retailer, error) {
	if len(rows) < 2 {
		return nil, ErrEmptySheet
	}

	cols := make(columns, len(rows[0]))
	for i, h := range rows[0] {
		cols[SanitizeColumn(h)] = i
	}

	outletIdx, ok1 := cols.index("outletname", "outlet_name")
	marketIdx, ok2 := cols.index("market")
	dealerIdx, ok3 := cols.index("distributorname", "distributor_name")
	latIdx, ok4 := cols.index("latitude")
	lonIdx, ok5 := cols.index("longitude")
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return nil, fmt.Errorf("%w: need outletname, market, distributorname, latitude, longitude", errMissingColumns)
	}

	spLatIdx, hasSPLat := cols.index("salesperson_latitude", "salespersonlatitude")
	spLonIdx, hasSPLon := cols.index("salesperson_longitude", "salespersonlongitude")
	visitIdx, hasVisit := cols.index("last_visited_date", "lastvisiteddate", "last_visited")

	out := make([]model.Retailer, 0, len(rows)-1)
	for _, row := range rows[1:] {
		outlet := strings.TrimSpace(cell(row, outletIdx))
		if outlet == "" {
			continue
		}

		r := model.Retailer{
			Outlet:      outlet,
			Market:      normalize(cell(row, marketIdx)),
			Distributor: normalize(cell(row, dealerIdx)),
			Latitude:    parseCoord(cell(row, latIdx)),
			Longitude:   parseCoord(cell(row, lonIdx)),
		}
		if hasSPLat && hasSPLon {
			r.SalespersonLatitude = parseCoord(cell(row, spLatIdx))
			r.SalespersonLongitude = parseCoord(cell(row, spLonIdx))
			// a start point needs both halves
			if r.SalespersonLatitude == nil || r.SalespersonLongitude == nil {
				r.SalespersonLatitude = nil
				r.SalespersonLongitude = nil
			}
		}
		if hasVisit {
			r.LastVisited = parseDate(cell(row, visitIdx))
		}

		out = append(out, r)
	}

	if len(out) == 0 {
		return nil, ErrEmptySheet
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func parseCoord(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// dateLayouts covers the formats seen in field exports. Unparseable values
// mean "never visited" rather than an error.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"Jan 2, 2006",
	time.RFC3339,
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
