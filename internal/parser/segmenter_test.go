package parser

import (
	"testing"

	"cetpaper/internal/model"
)

func TestSegment_MinimalChoiceQuestion(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{"1.", "What is X?"},
		{"A. Alpha", "B. Beta"},
		{"答案: B"},
	}
	qs, warnings := Segment(model.SectionReading, rows, 14.2)
	if len(qs) != 1 {
		t.Fatalf("questions=%d want 1", len(qs))
	}

	q := qs[0]
	if q.QuestionNumber != model.Num(1) {
		t.Fatalf("number=%v", q.QuestionNumber)
	}
	if q.Content != "What is X?" {
		t.Fatalf("content=%q", q.Content)
	}
	want := []model.Option{{Letter: "A", Text: "Alpha"}, {Letter: "B", Text: "Beta"}}
	if len(q.Options) != len(want) {
		t.Fatalf("options=%+v", q.Options)
	}
	for i := range want {
		if q.Options[i] != want[i] {
			t.Fatalf("option[%d]=%+v want %+v", i, q.Options[i], want[i])
		}
	}
	if q.CorrectAnswer != "B" {
		t.Fatalf("answer=%q", q.CorrectAnswer)
	}
	if q.QuestionType != model.QuestionTypeSingleChoice || q.Score != 14.2 {
		t.Fatalf("type=%s score=%v", q.QuestionType, q.Score)
	}
	if !q.Valid() {
		t.Fatalf("question with two options must be valid")
	}
	// 只有两个选项：保留但标记
	if !q.Flagged || len(warnings) != 1 {
		t.Fatalf("flagged=%v warnings=%v", q.Flagged, warnings)
	}
}

func TestSegment_OptionsSplitAcrossRows(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{"5", "Why did the man call?"},
		{"A. To book a room", "B. To cancel"},
		{"A. duplicate must be ignored", "C. To complain", "D. To ask"},
		{"答案: D"},
		{"答案: A"},
	}
	qs, warnings := Segment(model.SectionListening, rows, 7.1)
	if len(qs) != 1 {
		t.Fatalf("questions=%d", len(qs))
	}
	q := qs[0]
	if len(q.Options) != 4 {
		t.Fatalf("options=%+v", q.Options)
	}
	if q.Options[0].Text != "To book a room" {
		t.Fatalf("first occurrence must win: %+v", q.Options[0])
	}
	letters := ""
	for _, o := range q.Options {
		letters += o.Letter
	}
	if letters != "ABCD" {
		t.Fatalf("letters=%s", letters)
	}
	if q.CorrectAnswer != "D" {
		t.Fatalf("first answer must win, got %q", q.CorrectAnswer)
	}
	if q.Flagged || len(warnings) != 0 {
		t.Fatalf("complete question flagged: %v", warnings)
	}
}

func TestSegment_ContinuationAndDrops(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{"Section A"},
		{"Directions: decorative header before any question"},
		{"1."},
		{"", "Continuation", "line"},
		{"A) first", "B) second", "C) third", "D) fourth"},
		{"B"},
		{"2."},
		{"3.", "Orphan question"},
		{""},
		{"some decorative text after content"},
		{"A. a", "B. b", "C. c", "D. d"},
		{"答案：Ａ"},
	}
	qs, _ := Segment(model.SectionReading, rows, 14.2)
	if len(qs) != 2 {
		t.Fatalf("questions=%d want 2 (question 2 has no content)", len(qs))
	}
	if qs[0].Content != "Continuation line" || qs[0].CorrectAnswer != "B" {
		t.Fatalf("q1=%+v", qs[0])
	}
	if qs[1].QuestionNumber != model.Num(3) || qs[1].Content != "Orphan question" {
		t.Fatalf("q3=%+v", qs[1])
	}
	if qs[1].CorrectAnswer != "A" {
		t.Fatalf("full-width answer marker: %q", qs[1].CorrectAnswer)
	}
}

func TestSegment_InvalidQuestionIsFlaggedNotPromoted(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{"1", "Only one option"},
		{"A. lonely"},
	}
	qs, warnings := Segment(model.SectionUnknown, rows, 0)
	if len(qs) != 1 {
		t.Fatalf("questions=%d", len(qs))
	}
	if qs[0].Valid() {
		t.Fatalf("single-option question must not be valid")
	}
	if !qs[0].Flagged || len(warnings) != 1 || warnings[0].Options != 1 {
		t.Fatalf("warnings=%+v", warnings)
	}
}

func TestSegmenter_StateTransitions(t *testing.T) {
	t.Parallel()

	s := NewSegmenter(model.SectionReading, 14.2)
	if s.State() != SeekingQuestionStart {
		t.Fatalf("initial state=%s", s.State())
	}
	if kind := s.Step(Row{"A. option before question"}); kind != RowIgnored {
		t.Fatalf("option before any question must be ignored, got %v", kind)
	}
	if kind := s.Step(Row{"7", "Q"}); kind != RowQuestionStart || s.State() != InQuestion {
		t.Fatalf("kind=%v state=%s", kind, s.State())
	}
	if kind := s.Step(Row{"trailing text"}); kind != RowIgnored {
		t.Fatalf("text after content must be ignored, got %v", kind)
	}
	qs, _ := s.Finish()
	if len(qs) != 1 || s.State() != SeekingQuestionStart {
		t.Fatalf("finish: %d questions, state=%s", len(qs), s.State())
	}
}
