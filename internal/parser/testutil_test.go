package parser

import (
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"
)

type sheetFixture struct {
	Name string
	Rows [][]string
}

func buildWorkbook(t *testing.T, sheets ...sheetFixture) *excelize.File {
	t.Helper()

	wb := excelize.NewFile()
	defaultSheet := wb.GetSheetName(wb.GetActiveSheetIndex())

	for _, s := range sheets {
		if _, err := wb.NewSheet(s.Name); err != nil {
			t.Fatalf("NewSheet %s failed: %v", s.Name, err)
		}
		for i, cells := range s.Rows {
			row := make([]interface{}, 0, len(cells))
			for _, c := range cells {
				row = append(row, c)
			}
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := wb.SetSheetRow(s.Name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow %s failed: %v", s.Name, err)
			}
		}
	}

	keepDefault := len(sheets) == 0
	for _, s := range sheets {
		if s.Name == defaultSheet {
			keepDefault = true
		}
	}
	if !keepDefault {
		_ = wb.DeleteSheet(defaultSheet)
	}
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

func listeningRows(n int) [][]string {
	rows := [][]string{{"Part II Listening Comprehension"}}
	for i := 1; i <= n; i++ {
		rows = append(rows,
			[]string{strconv.Itoa(i) + ".", "Question text"},
			[]string{"A. one", "B. two", "C. three", "D. four"},
			[]string{"答案: C"},
		)
	}
	return rows
}
