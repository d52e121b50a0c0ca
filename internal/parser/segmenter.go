package parser

import (
	"fmt"

	"cetpaper/internal/model"
)

// SegmentState 分段状态
type SegmentState int

const (
	SeekingQuestionStart SegmentState = iota // 尚未遇到题号
	InQuestion                               // 正在收集当前题目
)

func (s SegmentState) String() string {
	switch s {
	case SeekingQuestionStart:
		return "seeking"
	case InQuestion:
		return "in_question"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RowKind 单行的判定结果
type RowKind int

const (
	RowIgnored RowKind = iota
	RowQuestionStart
	RowOption
	RowAnswer
	RowContinuation
)

// Segmenter 选择题分段器：逐行推进状态机，把行归并为题目
type Segmenter struct {
	section model.SectionType
	score   float64

	state    SegmentState
	current  *model.Question
	answered bool

	questions []*model.Question
	warnings  []PartialExtractionWarning
}

// NewSegmenter 创建分段器，每个 Sheet 使用独立实例
func NewSegmenter(section model.SectionType, score float64) *Segmenter {
	return &Segmenter{
		section: section,
		score:   score,
		state:   SeekingQuestionStart,
	}
}

// State 当前状态
func (s *Segmenter) State() SegmentState { return s.state }

// Classify 判定一行在当前状态下的类别（不修改状态）
// 顺序固定：题号 → 选项 → 答案 → 续行。选项必须先于答案判断，
// 否则 "A. Recognized as correct" 这类行会被宽松的答案规则误判
func (s *Segmenter) Classify(row Row) RowKind {
	norm := NormalizeRow(row)
	if idx := FirstNonEmpty(norm); idx >= 0 {
		if _, ok := MatchQuestionStart(norm[idx]); ok {
			return RowQuestionStart
		}
	}
	if s.state != InQuestion {
		return RowIgnored
	}
	if IsOptionRow(norm) {
		return RowOption
	}
	if IsAnswerRow(norm) {
		return RowAnswer
	}
	if s.current.Content == "" && !IsBlankRow(row) {
		return RowContinuation
	}
	return RowIgnored
}

// Step 处理一行
func (s *Segmenter) Step(row Row) RowKind {
	kind := s.Classify(row)
	switch kind {
	case RowQuestionStart:
		s.startQuestion(row)
	case RowOption:
		MergeOptions(s.current, ExtractOptions(row))
	case RowAnswer:
		if s.answered {
			break
		}
		if letter, ok := ExtractAnswer(NormalizeRow(row)); ok {
			s.current.CorrectAnswer = letter
			s.answered = true
		}
	case RowContinuation:
		s.current.Content = JoinRow(row)
	}
	return kind
}

// Finish 收尾并返回所有题目与告警
func (s *Segmenter) Finish() ([]*model.Question, []PartialExtractionWarning) {
	s.finalize()
	s.state = SeekingQuestionStart
	return s.questions, s.warnings
}

func (s *Segmenter) startQuestion(row Row) {
	s.finalize()

	norm := NormalizeRow(row)
	idx := FirstNonEmpty(norm)
	number, _ := MatchQuestionStart(norm[idx])

	content := ""
	if idx+1 < len(row) {
		content = JoinRow(row[idx+1 : idx+2])
	}

	s.current = &model.Question{
		SectionType:    s.section,
		QuestionType:   model.QuestionTypeSingleChoice,
		QuestionNumber: model.Num(number),
		Content:        content,
		Options:        []model.Option{},
		Score:          s.score,
	}
	s.answered = false
	s.state = InQuestion
}

// finalize 没有题干的题目直接丢弃；选项不足或缺答案的保留并标记
func (s *Segmenter) finalize() {
	q := s.current
	s.current = nil
	s.answered = false
	if q == nil || q.Content == "" {
		return
	}

	if w, ok := CheckQuestion(q); ok {
		q.Flagged = true
		s.warnings = append(s.warnings, w)
	}
	s.questions = append(s.questions, q)
}

// CheckQuestion 检查选择题是否完整：选项不足或缺少答案时返回告警
func CheckQuestion(q *model.Question) (PartialExtractionWarning, bool) {
	if q.QuestionType != model.QuestionTypeSingleChoice {
		return PartialExtractionWarning{}, false
	}

	var reason string
	switch {
	case !q.Valid():
		reason = fmt.Sprintf("only %d distinct options", len(q.Options))
	case len(q.Options) < ExpectedOptions && q.CorrectAnswer == "":
		reason = fmt.Sprintf("%d options and no correct answer", len(q.Options))
	case len(q.Options) < ExpectedOptions:
		reason = fmt.Sprintf("%d options, expected %d", len(q.Options), ExpectedOptions)
	case q.CorrectAnswer == "":
		reason = "missing correct answer"
	default:
		return PartialExtractionWarning{}, false
	}
	return PartialExtractionWarning{
		Section:        q.SectionType,
		QuestionNumber: q.QuestionNumber,
		Options:        len(q.Options),
		Reason:         reason,
	}, true
}

// Segment 对一组行执行完整的分段流程
func Segment(section model.SectionType, rows []Row, score float64) ([]*model.Question, []PartialExtractionWarning) {
	s := NewSegmenter(section, score)
	for _, row := range rows {
		s.Step(row)
	}
	return s.Finish()
}
