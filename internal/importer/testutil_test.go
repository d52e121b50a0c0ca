package importer

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"
)

type sheetFixture struct {
	Name string
	Rows [][]string
}

// writeWorkbook 在 path 生成工作簿（自动创建目录）
func writeWorkbook(t *testing.T, path string, sheets ...sheetFixture) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	wb := excelize.NewFile()
	defer wb.Close()
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

	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("SaveAs %s failed: %v", path, err)
	}
}

// paperSheets 一套最小但完整的试卷：写作 + n 道听力 + 1 道阅读 + 翻译
func paperSheets(listening int) []sheetFixture {
	rows := [][]string{{"Part II Listening Comprehension"}}
	for i := 1; i <= listening; i++ {
		rows = append(rows,
			[]string{strconv.Itoa(i) + ".", "Listening question " + strconv.Itoa(i)},
			[]string{"A. one", "B. two", "C. three", "D. four"},
			[]string{"答案: A"},
		)
	}
	return []sheetFixture{
		{Name: "写作", Rows: [][]string{
			{"Directions: write an essay on campus life."},
			{"You should write at least 120 words but no more than 180 words."},
		}},
		{Name: "听力", Rows: rows},
		{Name: "阅读", Rows: [][]string{
			{"46", "What is the passage mainly about?"},
			{"A. Tea", "B. Coffee", "C. Water", "D. Milk"},
			{"D"},
		}},
		{Name: "翻译", Rows: [][]string{
			{"中国的茶文化历史悠久。"},
		}},
	}
}

// sampleTree 构造一个包含有效试卷、无效文件名、答案文件和损坏文件的目录
func sampleTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeWorkbook(t, filepath.Join(root, "CET4", "2023_12.xlsx"), paperSheets(3)...)
	writeWorkbook(t, filepath.Join(root, "CET4", "2023-06-2.xlsx"), paperSheets(2)...)
	writeWorkbook(t, filepath.Join(root, "CET4", "notes.xlsx"), paperSheets(1)...)
	writeWorkbook(t, filepath.Join(root, "CET4", "2023_12_answer.xlsx"), paperSheets(1)...)
	writeWorkbook(t, filepath.Join(root, "CET6", "2024年6月英语六级真题第1套.xlsx"), paperSheets(4)...)
	writeWorkbook(t, filepath.Join(root, "CET6", "2022_12.xlsx"), sheetFixture{Name: "Sheet1", Rows: [][]string{{"nothing to see"}}})

	if err := os.WriteFile(filepath.Join(root, "CET6", "2021_06.xlsx"), []byte("not a zip"), 0644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "CET6", "readme.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatalf("write txt: %v", err)
	}
	return root
}
