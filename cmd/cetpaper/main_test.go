package main

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"cetpaper/internal/model"
	"cetpaper/internal/parser"
)

func TestResolveKey(t *testing.T) {
	t.Parallel()

	key, err := resolveKey("/papers/CET6/2023_12_2.xlsx", "", 0, 0, 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if key != (model.PaperKey{ExamType: model.ExamTypeCET6, Year: 2023, Month: 12, PaperNumber: 2}) {
		t.Fatalf("key=%+v", key)
	}

	key, err = resolveKey("/tmp/mock.xlsx", "cet4", 2021, 6, 0)
	if err != nil {
		t.Fatalf("resolve with flags: %v", err)
	}
	if key != (model.PaperKey{ExamType: model.ExamTypeCET4, Year: 2021, Month: 6, PaperNumber: 1}) {
		t.Fatalf("key=%+v", key)
	}

	if _, err := resolveKey("/tmp/2023_12.xlsx", "", 0, 0, 0); err == nil {
		t.Fatalf("exam type should be required")
	}
	if _, err := resolveKey("/tmp/mock.xlsx", "CET4", 0, 0, 0); err == nil {
		t.Fatalf("ambiguous filename should fail without -year/-month")
	}
}

func TestWritePaper_YAML(t *testing.T) {
	t.Parallel()

	paper := &model.ExamPaper{
		PaperKey: model.PaperKey{ExamType: model.ExamTypeCET4, Year: 2023, Month: 12, PaperNumber: 1},
		Title:    "2023年12月英语四级真题",
		Questions: []*model.Question{{
			SectionType:    model.SectionWriting,
			QuestionType:   model.QuestionTypeWriting,
			QuestionNumber: model.Labeled(model.LabelWriting),
			Content:        "Directions: write an essay.",
			SortOrder:      1,
		}},
		TotalQuestions: 1,
	}

	var buf bytes.Buffer
	if err := writePaper(&buf, "yaml", paper, &parser.PaperReport{}); err != nil {
		t.Fatalf("yaml: %v", err)
	}

	var doc map[string]map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if doc["paper"]["examType"] != "CET4" || doc["paper"]["year"] != 2023 {
		t.Fatalf("paper key not inlined:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "questionNumber: Writing") {
		t.Fatalf("label number missing:\n%s", buf.String())
	}

	buf.Reset()
	if err := writePaper(&buf, "json", paper, &parser.PaperReport{}); err != nil || !strings.Contains(buf.String(), `"questionNumber": "Writing"`) {
		t.Fatalf("json err=%v\n%s", err, buf.String())
	}
	if err := writePaper(&buf, "xml", paper, &parser.PaperReport{}); err == nil {
		t.Fatalf("unknown format should fail")
	}
}
