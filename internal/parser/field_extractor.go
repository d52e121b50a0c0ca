package parser

import (
	"strings"
	"unicode/utf8"

	"cetpaper/internal/model"
)

// DefaultWritingDirective 未找到写作说明时使用的默认题干
const DefaultWritingDirective = "Directions: For this part, you are allowed 30 minutes to write an essay. " +
	"You should write at least 120 words but no more than 180 words."

// DefaultTranslationDirective 未找到翻译原文时使用的默认题干
const DefaultTranslationDirective = "Directions: For this part, you are allowed 30 minutes to translate " +
	"a passage from Chinese into English. You should write your answer on Answer Sheet 2."

var (
	writingTriggers = []string{"directions", "写作", "作文", "write", "essay"}
	wordCountWords  = []string{"words", "词"}
)

// ExtractOptions 解析一行中的所有选项，同一字母只保留第一次出现
func ExtractOptions(row Row) []model.Option {
	var out []model.Option
	seen := make(map[string]struct{})
	for _, cell := range row {
		letter, text, ok := MatchOption(NormalizeCell(cell))
		if !ok {
			continue
		}
		if _, dup := seen[letter]; dup {
			continue
		}
		seen[letter] = struct{}{}
		out = append(out, model.Option{Letter: letter, Text: text})
	}
	return out
}

// MergeOptions 将新选项合并进题目，已存在的字母保持不变
func MergeOptions(q *model.Question, opts []model.Option) {
	for _, o := range opts {
		if q.HasOption(o.Letter) {
			continue
		}
		q.Options = append(q.Options, o)
	}
}

// ExtractWritingPrompt 从触发行（Directions/写作/作文/write/essay）开始向下拼接，
// 直到出现字数要求行（含该行）；找不到触发行时返回默认题干
func ExtractWritingPrompt(rows []Row) string {
	start := -1
	for i, row := range rows {
		if ContainsAnyFold(JoinRow(row), writingTriggers) {
			start = i
			break
		}
	}
	if start < 0 {
		return DefaultWritingDirective
	}

	var lines []string
	for _, row := range rows[start:] {
		line := JoinRow(row)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if isWordCountLine(line) {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func isWordCountLine(line string) bool {
	if strings.Contains(line, "120") && strings.Contains(line, "180") {
		return true
	}
	return ContainsAnyFold(line, wordCountWords)
}

// ExtractTranslationContent 取第一行含汉字、且含中文句读或长度超过 10 个字符的文本
func ExtractTranslationContent(rows []Row) string {
	for _, row := range rows {
		line := JoinRow(row)
		if !ContainsCJK(line) {
			continue
		}
		if strings.ContainsAny(line, "。，") || utf8.RuneCountInString(line) > 10 {
			return line
		}
	}
	return DefaultTranslationDirective
}

// ExtractWritingQuestion 写作 Sheet 生成唯一一道写作题
func ExtractWritingQuestion(rows []Row, score float64) *model.Question {
	return &model.Question{
		SectionType:    model.SectionWriting,
		QuestionType:   model.QuestionTypeWriting,
		QuestionNumber: model.Labeled(model.LabelWriting),
		Content:        ExtractWritingPrompt(rows),
		Options:        []model.Option{},
		Score:          score,
	}
}

// ExtractTranslationQuestion 翻译 Sheet 生成唯一一道翻译题
func ExtractTranslationQuestion(rows []Row, score float64) *model.Question {
	return &model.Question{
		SectionType:    model.SectionTranslation,
		QuestionType:   model.QuestionTypeTranslation,
		QuestionNumber: model.Labeled(model.LabelTranslation),
		Content:        ExtractTranslationContent(rows),
		Options:        []model.Option{},
		Score:          score,
	}
}
