package parser

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"cetpaper/internal/model"
)

// WorkbookParser 试卷工作簿解析器
type WorkbookParser struct {
	file       *excelize.File
	recognizer *SheetRecognizer
	opts       Options
}

// NewWorkbookParser 创建解析器
func NewWorkbookParser(file *excelize.File, opts Options) *WorkbookParser {
	opts.defaults()
	return &WorkbookParser{
		file:       file,
		recognizer: NewSheetRecognizer(),
		opts:       opts,
	}
}

// ParseFile 打开并解析单个工作簿文件
func ParseFile(path string, key model.PaperKey, opts Options) (*model.ExamPaper, *PaperReport, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer file.Close()

	paper, report, err := NewWorkbookParser(file, opts).Parse(key)
	if paper != nil {
		paper.SourceFile = path
	}
	return paper, report, err
}

// ParseReader 从内存读取工作簿并解析
func ParseReader(r io.Reader, key model.PaperKey, opts Options) (*model.ExamPaper, *PaperReport, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer file.Close()
	return NewWorkbookParser(file, opts).Parse(key)
}

// Parse 解析整个工作簿
// 单个 Sheet 读取失败只记录在报告中；所有 Sheet 都没有题目时返回 ErrNoValidContent
func (p *WorkbookParser) Parse(key model.PaperKey) (*model.ExamPaper, *PaperReport, error) {
	report := &PaperReport{Sheets: []model.SheetReport{}}
	sections := Sections{}

	for _, sheetName := range p.file.GetSheetList() {
		sheet := p.parseSheet(sheetName, sections, report)
		report.Sheets = append(report.Sheets, sheet)
	}

	if sections.Count() == 0 {
		return nil, report, ErrNoValidContent
	}

	AssignAudio(sections[model.SectionListening], AudioFiles(key, p.opts.AudioBaseURL), p.opts.Audio)
	paper := Assemble(key, sections, p.opts.AudioBaseURL)
	return paper, report, nil
}

func (p *WorkbookParser) parseSheet(sheetName string, sections Sections, report *PaperReport) model.SheetReport {
	logger := p.opts.Logger

	rows, err := p.file.GetRows(sheetName)
	if err != nil {
		logger.Warn("读取 Sheet 失败", "sheet", sheetName, "error", err)
		return model.SheetReport{
			SheetName: sheetName,
			Section:   model.SectionUnknown,
			Error:     err.Error(),
		}
	}

	recognition := p.recognizer.Recognize(sheetName, rows)
	sheet := model.SheetReport{
		SheetName: sheetName,
		Section:   recognition.Section,
		ByName:    recognition.ByName,
		Rows:      len(rows),
	}

	switch recognition.Section {
	case model.SectionWriting:
		sections.Add(model.SectionWriting, ExtractWritingQuestion(rows, p.opts.Scores.Writing))
		sheet.Questions = 1
	case model.SectionTranslation:
		sections.Add(model.SectionTranslation, ExtractTranslationQuestion(rows, p.opts.Scores.Translation))
		sheet.Questions = 1
	default:
		// 听力/阅读/未识别的 Sheet 都走选择题分段，保证至少能抽出部分数据
		qs, warnings := Segment(recognition.Section, rows, p.opts.Scores.For(recognition.Section))
		sections.Add(recognition.Section, qs...)
		report.Warnings = append(report.Warnings, warnings...)
		sheet.Questions = len(qs)
	}

	logger.Debug("Sheet 解析完成",
		"sheet", sheetName,
		"section", recognition.Section,
		"by_name", recognition.ByName,
		"questions", sheet.Questions)
	return sheet
}
