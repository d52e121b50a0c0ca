package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"cetpaper/internal/model"
	"cetpaper/internal/parser"
	"cetpaper/internal/store"
)

// CheckSheet 校验结果 Sheet 名
const CheckSheet = "校验"

// 各板块导出时使用的 Sheet 名与标题行；Sheet 名能被识别器按名称识别
var sectionSheets = map[model.SectionType]struct {
	Name   string
	Header string
}{
	model.SectionWriting:     {Name: "写作"},
	model.SectionListening:   {Name: "听力", Header: "Part II Listening Comprehension"},
	model.SectionReading:     {Name: "阅读", Header: "Part III Reading Comprehension"},
	model.SectionTranslation: {Name: "翻译"},
	model.SectionUnknown:     {Name: "其他"},
}

// Exporter 试卷审阅导出器
//
// 导出的工作簿与解析器读取的行结构一致（题号行、选项行、答案行），重新导入得到相同的题目。
type Exporter struct {
	store *store.Store
}

// NewExporter 创建导出器
func NewExporter(store *store.Store) *Exporter {
	return &Exporter{store: store}
}

// ExportOptions 导出选项
type ExportOptions struct {
	PaperID  string
	Progress func(ProgressEvent)
}

// Export 从存储读取试卷并生成工作簿
func (e *Exporter) Export(opts ExportOptions) (*excelize.File, *model.ExamPaper, error) {
	reportProgress(opts.Progress, 0, "读取试卷")
	paper, err := e.store.GetPaper(opts.PaperID)
	if err != nil {
		return nil, nil, fmt.Errorf("读取试卷失败: %w", err)
	}

	f, err := Build(paper, opts.Progress)
	if err != nil {
		return nil, nil, err
	}
	return f, paper, nil
}

// WritePaper 将试卷写入 path
func WritePaper(paper *model.ExamPaper, path string) error {
	f, err := Build(paper, nil)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存导出文件失败: %w", err)
	}
	return nil
}

// FileName 下载文件名：2023年12月英语四级真题_第1套.xlsx
func FileName(paper *model.ExamPaper) string {
	return fmt.Sprintf("%s_第%d套.xlsx", paper.Title, paper.PaperNumber)
}

// Build 生成审阅工作簿：每个板块一个 Sheet，最后是校验 Sheet
func Build(paper *model.ExamPaper, progress func(ProgressEvent)) (*excelize.File, error) {
	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)

	sections := make([]model.SectionType, 0, len(model.SectionOrder))
	for _, section := range model.SectionOrder {
		if len(paper.QuestionsBySection(section)) > 0 {
			sections = append(sections, section)
		}
	}

	for i, section := range sections {
		reportProgress(progress, 10+80*i/len(sections), "写入"+sectionSheets[section].Name)
		if err := writeSection(f, section, paper.QuestionsBySection(section)); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	reportProgress(progress, 90, "写入校验结果")
	if err := writeCheckSheet(f, paper); err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("删除默认 Sheet 失败: %w", err)
	}
	f.SetActiveSheet(0)

	reportProgress(progress, 100, "导出完成")
	return f, nil
}

func writeSection(f *excelize.File, section model.SectionType, questions []*model.Question) error {
	sheet := sectionSheets[section]
	if _, err := f.NewSheet(sheet.Name); err != nil {
		return fmt.Errorf("创建 %s 失败: %w", sheet.Name, err)
	}

	w := &rowWriter{f: f, sheet: sheet.Name}

	switch section {
	case model.SectionWriting:
		// 写作题干按行写出，解析时从 Directions 行开始逐行拼接
		for _, q := range questions {
			for _, line := range strings.Split(q.Content, "\n") {
				if strings.TrimSpace(line) != "" {
					w.write(line)
				}
			}
		}
	case model.SectionTranslation:
		for _, q := range questions {
			w.write(q.Content)
		}
	default:
		if sheet.Header != "" {
			w.write(sheet.Header)
			if err := setHeaderStyle(f, sheet.Name, w.row); err != nil {
				return err
			}
		}
		for _, q := range questions {
			w.write(q.QuestionNumber.String()+".", q.Content)
			if len(q.Options) > 0 {
				cells := make([]string, 0, len(q.Options))
				for _, o := range q.Options {
					cells = append(cells, o.Letter+". "+o.Text)
				}
				w.write(cells...)
			}
			if q.CorrectAnswer != "" {
				w.write("答案: " + q.CorrectAnswer)
			}
		}
	}

	if w.err != nil {
		return fmt.Errorf("写入 %s 失败: %w", sheet.Name, w.err)
	}
	return f.SetColWidth(sheet.Name, "A", "D", 40)
}

// writeCheckSheet 校验 Sheet：第一列放板块名，避免被解析为题号行
func writeCheckSheet(f *excelize.File, paper *model.ExamPaper) error {
	if _, err := f.NewSheet(CheckSheet); err != nil {
		return fmt.Errorf("创建校验 Sheet 失败: %w", err)
	}

	w := &rowWriter{f: f, sheet: CheckSheet}
	w.write("试卷", paper.Title)
	w.write("题目数", strconv.Itoa(paper.TotalQuestions))
	w.write("板块", "题号", "选项数", "说明")
	if err := setHeaderStyle(f, CheckSheet, w.row); err != nil {
		return err
	}

	for _, q := range paper.Questions {
		warning, ok := parser.CheckQuestion(q)
		if !ok {
			continue
		}
		w.write(string(warning.Section), warning.QuestionNumber.String(), strconv.Itoa(warning.Options), warning.Reason)
	}

	if w.err != nil {
		return fmt.Errorf("写入校验 Sheet 失败: %w", w.err)
	}
	return f.SetColWidth(CheckSheet, "A", "D", 24)
}

// rowWriter 顺序写行，记录第一个错误
type rowWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *rowWriter) write(cells ...string) {
	if w.err != nil {
		return
	}
	w.row++
	values := make([]interface{}, 0, len(cells))
	for _, c := range cells {
		values = append(values, c)
	}
	cell, _ := excelize.CoordinatesToCellName(1, w.row)
	w.err = w.f.SetSheetRow(w.sheet, cell, &values)
}

func setHeaderStyle(f *excelize.File, sheet string, row int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("创建样式失败: %w", err)
	}
	return f.SetRowStyle(sheet, row, row, style)
}
