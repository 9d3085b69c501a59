package leadcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/starford/propdesk/internal/models"
)

// LeadAdder receives imported leads. *store.Store satisfies it.
type LeadAdder interface {
	AddLead(models.Lead) models.Lead
}

// RowError describes a skipped input row. Line is the 1-based file line the
// record starts on, so quoted fields spanning lines are accounted for.
type RowError struct {
	Line int    `json:"line"`
	Err  string `json:"error"`
}

// Summary reports the outcome of an import.
type Summary struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	IDs      []string   `json:"ids"`
	Errors   []RowError `json:"errors,omitempty"`
}

var errNoHeader = errors.New("leadcsv: missing header row")

// column names accepted in the header, lower-cased.
const (
	colName         = "name"
	colEmail        = "email"
	colPhone        = "phone"
	colStatus       = "status"
	colBudget       = "budget"
	colLocation     = "location"
	colSource       = "source"
	colPropertyType = "property type"
	colNotes        = "notes"
	colCreated      = "created date"
	colAgent        = "assigned agent"
)

// Parse reads CSV with a header row into leads. Header names are matched
// case-insensitively; only Name is required. Rows that fail to parse are
// reported and skipped. Missing status, source and property type default
// to new, other and apartment.
func Parse(r io.Reader) ([]models.Lead, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errNoHeader
	}
	if err != nil {
		return nil, nil, fmt.Errorf("leadcsv: read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := cols[colName]; !ok {
		return nil, nil, fmt.Errorf("leadcsv: header has no %q column", "Name")
	}

	var (
		leads   []models.Lead
		rowErrs []RowError
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			line := 0
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			rowErrs = append(rowErrs, RowError{Line: line, Err: err.Error()})
			continue
		}
		line, _ := cr.FieldPos(0)
		get := func(name string) string {
			if i, ok := cols[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		l, err := parseRow(get)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err.Error()})
			continue
		}
		leads = append(leads, l)
	}
	return leads, rowErrs, nil
}

func parseRow(get func(string) string) (models.Lead, error) {
	l := models.Lead{
		Name:          get(colName),
		Email:         get(colEmail),
		Phone:         get(colPhone),
		Location:      get(colLocation),
		Notes:         get(colNotes),
		AssignedAgent: get(colAgent),
		Status:        models.StatusNew,
		Source:        models.SourceOther,
		PropertyType:  models.PropertyApartment,
	}
	if l.Name == "" {
		return l, errors.New("name is empty")
	}
	if v := get(colStatus); v != "" {
		l.Status = models.LeadStatus(strings.ToLower(v))
		if !l.Status.Valid() {
			return l, fmt.Errorf("unknown status %q", v)
		}
	}
	if v := get(colSource); v != "" {
		l.Source = models.LeadSource(strings.ToLower(v))
		if !l.Source.Valid() {
			return l, fmt.Errorf("unknown source %q", v)
		}
	}
	if v := get(colPropertyType); v != "" {
		l.PropertyType = models.PropertyType(strings.ToLower(v))
		if !l.PropertyType.Valid() {
			return l, fmt.Errorf("unknown property type %q", v)
		}
	}
	if v := get(colBudget); v != "" {
		b, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil || math.IsNaN(b) || math.IsInf(b, 0) || b < 0 {
			return l, fmt.Errorf("invalid budget %q", v)
		}
		l.Budget = b
	}
	if v := get(colCreated); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return l, fmt.Errorf("invalid created date %q", v)
		}
		l.CreatedAt = t
	}
	return l, nil
}

// Import parses r and adds every valid row through dst in file order.
func Import(r io.Reader, dst LeadAdder) (Summary, error) {
	leads, rowErrs, err := Parse(r)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Skipped: len(rowErrs), Errors: rowErrs, IDs: make([]string, 0, len(leads))}
	for _, l := range leads {
		added := dst.AddLead(l)
		sum.IDs = append(sum.IDs, added.ID)
		sum.Imported++
	}
	return sum, nil
}
