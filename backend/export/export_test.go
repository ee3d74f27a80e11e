package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/AnTengye/contractdesk/backend/model"
)

func sample() []model.Contract {
	return []model.Contract{
		{
			ID:              "c1",
			ContractNumber:  "A-001",
			Department:      "資訊處",
			Vendor:          `O"Brien`,
			Content:         "Hosting, backup",
			StartDate:       model.ParseDate("2024/01/10"),
			EndDate:         model.ParseDate("2025/01/09"),
			Renewal:         model.RenewalYes,
			Handler:         "王小明",
			ApplicationDate: model.ParseDate("2024/01/02"),
			Note:            "",
		},
		{
			ID:             "c2",
			ContractNumber: "A-002",
			Department:     "採購部",
			Vendor:         "Globex",
			Content:        "Lease",
			StartDate:      model.ParseDate("2023/05/01"),
			Note:           `said "ok"`,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\ufeff"), "missing byte-order mark")

	lines := strings.Split(strings.TrimPrefix(out, "\ufeff"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "合約編號,課,廠商,內容,起始日,到期日,續約,經辦,申請日,最終到期日,備註", lines[0])
	assert.Equal(t, `A-001,資訊處,"O""Brien","Hosting, backup",2024/01/10,2025/01/09,Y,王小明,2024/01/02,,""`, lines[1])
	assert.Equal(t, `A-002,採購部,"Globex","Lease",2023/05/01,,,,,,"said ""ok"""`, lines[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, nil)
	assert.ErrorIs(t, err, ErrNoRows)
	assert.Zero(t, buf.Len(), "no partial file on empty export")
}

func TestWriteCSVKeepsMalformedDates(t *testing.T) {
	var buf bytes.Buffer
	rows := []model.Contract{{ContractNumber: "X", StartDate: model.ParseDate("TBD")}}
	require.NoError(t, WriteCSV(&buf, rows))
	assert.Contains(t, buf.String(), "X,,\"\",\"\",TBD,")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sample()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, `O"Brien`, rows[1][2])
	assert.Equal(t, "2023/05/01", rows[2][4])
}

func TestWriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteXLSX(&buf, []model.Contract{}), ErrNoRows)
	assert.Zero(t, buf.Len())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	day := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "合約清單_2024-06-15.csv", FormatCSV.Filename(day))
	assert.Equal(t, "合約清單_2024-06-15.xlsx", FormatXLSX.Filename(day))
}
