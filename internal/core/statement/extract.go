package statement

import (
	"bytes"
	"io"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// headerScanLimit bounds the header-row search window.
const headerScanLimit = 50

// customerHeaderKeywords identify the customer column in accounting-system
// exports. A row containing any of these (case-insensitive) is the header row.
var customerHeaderKeywords = []string{
	"customer",
	"client",
	"party name",
	"bill to",
	"account name",
	"payer",
}

// RowSet is a sheet re-interpreted as keyed records: the located header row
// provides the field names, every subsequent row one record. Header order is
// preserved so field resolution stays deterministic.
type RowSet struct {
	Header  []string
	Records []map[string]string
}

// loadWorkbookRows opens the uploaded bytes as a workbook and returns the
// first sheet as a raw cell grid. Tries xlsx first, then legacy xls.
func loadWorkbookRows(file io.Reader) ([][]string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	if f, err := excelize.OpenReader(bytes.NewReader(data)); err == nil {
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrMalformedFile
		}
		return f.GetRows(sheets[0])
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, ErrMalformedFile
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, ErrMalformedFile
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, ErrMalformedFile
	}
	var rows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// locateHeaderRow scans at most the first 50 rows for a cell whose lower-cased
// text contains a customer-column keyword. First match wins.
func locateHeaderRow(rows [][]string) (int, error) {
	limit := headerScanLimit
	if len(rows) < limit {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		for _, cell := range rows[i] {
			lower := strings.ToLower(cell)
			for _, kw := range customerHeaderKeywords {
				if strings.Contains(lower, kw) {
					return i, nil
				}
			}
		}
	}
	return 0, ErrHeaderNotFound
}

// extractRecords locates the header row and re-interprets every row below it
// as a keyed record. Missing cells default to the empty string, never to an
// absent key. Duplicate or blank header cells keep the first occurrence.
func extractRecords(rows [][]string) (*RowSet, error) {
	headerIdx, err := locateHeaderRow(rows)
	if err != nil {
		return nil, err
	}

	var header []string
	seen := make(map[string]bool)
	headerRow := rows[headerIdx]
	for _, cell := range headerRow {
		name := strings.TrimSpace(cell)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		header = append(header, name)
	}

	columnOf := make(map[string]int, len(header))
	for i, cell := range headerRow {
		name := strings.TrimSpace(cell)
		if name == "" {
			continue
		}
		if _, ok := columnOf[name]; !ok {
			columnOf[name] = i
		}
	}

	var records []map[string]string
	for _, row := range rows[headerIdx+1:] {
		record := make(map[string]string, len(header))
		for _, name := range header {
			col := columnOf[name]
			if col < len(row) {
				record[name] = row[col]
			} else {
				record[name] = ""
			}
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, ErrEmptyData
	}
	return &RowSet{Header: header, Records: records}, nil
}
