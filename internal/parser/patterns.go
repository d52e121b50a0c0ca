package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// 行级判定规则。所有输入应先经过 NormalizeCell。
var (
	// 题号单元格："1" / "1." / "12、"
	questionStartRe = regexp.MustCompile(`^(\d+)[\.、]?$`)

	// 选项行判定：存在以 "A." / "B)" / "C、" 开头的单元格
	optionTokenRe = regexp.MustCompile(`^[A-D][\.\)、]\s*\S`)

	// 选项抽取：字母后需跟分隔符，或大写字母后跟空白
	optionDelimitedRe = regexp.MustCompile(`(?i)^([A-D])[\.、\)]\s*(.+)$`)
	optionSpacedRe    = regexp.MustCompile(`^([A-D])\s+(.+)$`)

	// 答案抽取，按顺序尝试，取第一个命中规则的最后一个捕获组
	answerKeywordRe = regexp.MustCompile(`(?i)(答案|ANSWER|KEY)\s*[:：]\s*([A-D])\b`)
	answerBareRe    = regexp.MustCompile(`^([A-D])$`)
	answerCorrectRe = regexp.MustCompile(`正确答案[:：]?\s*([A-Da-d])`)

	answerMarkers = []string{"答案", "ANSWER", "KEY"}
)

var answerPatterns = []*regexp.Regexp{answerKeywordRe, answerBareRe, answerCorrectRe}

// MatchQuestionStart 单元格是否为裸题号，返回题号
func MatchQuestionStart(cell string) (int, bool) {
	m := questionStartRe.FindStringSubmatch(cell)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// IsOptionRow 行内任一单元格形如 "A. xxx"
func IsOptionRow(row Row) bool {
	for _, c := range row {
		if optionTokenRe.MatchString(c) {
			return true
		}
	}
	return false
}

// IsAnswerRow 行内包含答案标记，或整行是单个字母，或命中 "正确答案: X"
// 调用方必须先判断 IsOptionRow
func IsAnswerRow(row Row) bool {
	text := JoinRow(row)
	if text == "" {
		return false
	}
	if ContainsAny(text, answerMarkers) {
		return true
	}
	for _, re := range answerPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// MatchOption 解析单个选项单元格
func MatchOption(cell string) (letter, text string, ok bool) {
	for _, re := range []*regexp.Regexp{optionDelimitedRe, optionSpacedRe} {
		if m := re.FindStringSubmatch(cell); m != nil {
			text = strings.TrimSpace(m[2])
			if text == "" {
				continue
			}
			return strings.ToUpper(m[1]), text, true
		}
	}
	return "", "", false
}

// ExtractAnswer 从整行文本中抽取答案字母
func ExtractAnswer(row Row) (string, bool) {
	text := JoinRow(row)
	for _, re := range answerPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.ToUpper(m[len(m)-1]), true
		}
	}
	return "", false
}
