package parser

import (
	"errors"
	"fmt"

	"cetpaper/internal/model"
)

var (
	// ErrUnreadableWorkbook 文件缺失或损坏
	ErrUnreadableWorkbook = errors.New("unreadable workbook")
	// ErrNoValidContent 工作簿可读，但所有 Sheet 都没有抽取到题目
	ErrNoValidContent = errors.New("no valid content")
	// ErrAmbiguousFilename 文件名无法识别年月
	ErrAmbiguousFilename = errors.New("ambiguous filename")
)

// ImportError 单个文件的导入错误
type ImportError struct {
	Path string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// NewImportError 包装文件级错误
func NewImportError(path string, err error) *ImportError {
	return &ImportError{Path: path, Err: err}
}

// PartialExtractionWarning 题目被保留但信息不完整（选项不足或缺少答案）
type PartialExtractionWarning struct {
	Section        model.SectionType    `json:"section" yaml:"section"`
	QuestionNumber model.QuestionNumber `json:"questionNumber" yaml:"questionNumber"`
	Options        int                  `json:"options" yaml:"options"`
	Reason         string               `json:"reason" yaml:"reason"`
}

func (w PartialExtractionWarning) String() string {
	return fmt.Sprintf("%s #%s: %s", w.Section, w.QuestionNumber, w.Reason)
}
