// Package leadcsv converts leads to and from the CSV layout used by the
// lead list export.
package leadcsv

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/starford/propdesk/internal/models"
)

// Header is the first line of every export.
var Header = []string{"Name", "Email", "Phone", "Status", "Budget", "Location", "Created Date"}

const dateLayout = "2006-01-02"

// FileName returns the download name for an export made at t.
func FileName(t time.Time) string {
	return "leads_" + t.Format(dateLayout) + ".csv"
}

// Export renders leads as CSV. String fields are always quoted, Budget is
// written bare in its shortest decimal form and rows are separated by "\n"
// with no trailing newline.
func Export(leads []models.Lead) string {
	var b strings.Builder
	b.WriteString(strings.Join(Header, ","))
	for _, l := range leads {
		b.WriteByte('\n')
		writeRow(&b, l)
	}
	return b.String()
}

// Write renders leads to w.
func Write(w io.Writer, leads []models.Lead) error {
	_, err := io.WriteString(w, Export(leads))
	return err
}

func writeRow(b *strings.Builder, l models.Lead) {
	b.WriteString(quote(l.Name))
	b.WriteByte(',')
	b.WriteString(quote(l.Email))
	b.WriteByte(',')
	b.WriteString(quote(l.Phone))
	b.WriteByte(',')
	b.WriteString(quote(string(l.Status)))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(l.Budget, 'f', -1, 64))
	b.WriteByte(',')
	b.WriteString(quote(l.Location))
	b.WriteByte(',')
	b.WriteString(l.CreatedAt.Format(dateLayout))
}

// quote wraps s in double quotes, doubling any quotes inside it.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
