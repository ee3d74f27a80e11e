// Package export writes the filtered contract table as CSV or XLSX.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AnTengye/contractdesk/backend/model"
)

// ErrNoRows is returned when there is nothing to export
var ErrNoRows = errors.New("no data to export")

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a query value to a Format; empty means CSV
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType is the MIME type served for f
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv;charset=utf-8"
}

// Filename is the download name for an export taken on day
func (f Format) Filename(day time.Time) string {
	return fmt.Sprintf("合約清單_%s.%s", day.Format("2006-01-02"), f)
}

// Headers is the fixed export column set
var Headers = []string{"合約編號", "課", "廠商", "內容", "起始日", "到期日", "續約", "經辦", "申請日", "最終到期日", "備註"}

const bom = "\ufeff"

// column is one export column. Quoted columns are always wrapped in double
// quotes with embedded quotes doubled; the others are written as-is.
type column struct {
	value  func(*model.Contract) string
	quoted bool
}

var columns = []column{
	{value: func(c *model.Contract) string { return c.ContractNumber }},
	{value: func(c *model.Contract) string { return c.Department }},
	{value: func(c *model.Contract) string { return c.Vendor }, quoted: true},
	{value: func(c *model.Contract) string { return c.Content }, quoted: true},
	{value: func(c *model.Contract) string { return c.StartDate.String() }},
	{value: func(c *model.Contract) string { return c.EndDate.String() }},
	{value: func(c *model.Contract) string { return string(c.Renewal) }},
	{value: func(c *model.Contract) string { return c.Handler }},
	{value: func(c *model.Contract) string { return c.ApplicationDate.String() }},
	{value: func(c *model.Contract) string { return c.FinalDate.String() }},
	{value: func(c *model.Contract) string { return c.Note }, quoted: true},
}

// Row returns the export cells of c in Headers order, unquoted
func Row(c *model.Contract) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		row[i] = col.value(c)
	}
	return row
}

// WriteCSV writes records as UTF-8 CSV with a leading byte-order mark. Lines
// are separated by "\n" with no trailing newline. Nothing is written when
// records is empty.
func WriteCSV(w io.Writer, records []model.Contract) error {
	if len(records) == 0 {
		return ErrNoRows
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(bom)
	bw.WriteString(strings.Join(Headers, ","))
	for i := range records {
		bw.WriteByte('\n')
		for j, col := range columns {
			if j > 0 {
				bw.WriteByte(',')
			}
			v := col.value(&records[i])
			if col.quoted {
				v = quote(v)
			}
			bw.WriteString(v)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
