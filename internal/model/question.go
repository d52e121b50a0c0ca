package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SectionType 试卷板块
type SectionType string

const (
	SectionWriting     SectionType = "writing"
	SectionListening   SectionType = "listening"
	SectionReading     SectionType = "reading"
	SectionTranslation SectionType = "translation"
	SectionUnknown     SectionType = "unknown"
)

// SectionOrder 组卷顺序：写作 → 听力 → 阅读 → 翻译，未识别板块排在最后
var SectionOrder = []SectionType{
	SectionWriting,
	SectionListening,
	SectionReading,
	SectionTranslation,
	SectionUnknown,
}

// QuestionType 题型
type QuestionType string

const (
	QuestionTypeWriting      QuestionType = "writing"
	QuestionTypeSingleChoice QuestionType = "single_choice"
	QuestionTypeTranslation  QuestionType = "translation"
)

// 主观题题号
const (
	LabelWriting     = "Writing"
	LabelTranslation = "Translation"
)

// QuestionNumber 题号：选择题为正整数，主观题为固定标签
type QuestionNumber struct {
	N     int
	Label string
}

// Num 数字题号
func Num(n int) QuestionNumber { return QuestionNumber{N: n} }

// Labeled 标签题号
func Labeled(label string) QuestionNumber { return QuestionNumber{Label: label} }

// IsLabel 是否为标签题号
func (n QuestionNumber) IsLabel() bool { return n.Label != "" }

func (n QuestionNumber) String() string {
	if n.IsLabel() {
		return n.Label
	}
	return strconv.Itoa(n.N)
}

// MarshalJSON 数字题号输出为 number，标签输出为 string
func (n QuestionNumber) MarshalJSON() ([]byte, error) {
	if n.IsLabel() {
		return json.Marshal(n.Label)
	}
	return json.Marshal(n.N)
}

// UnmarshalJSON 兼容 number 与 string 两种形式
func (n *QuestionNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = ParseQuestionNumber(s)
		return nil
	}
	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return fmt.Errorf("invalid question number %s: %w", data, err)
	}
	*n = Num(i)
	return nil
}

// MarshalYAML 与 JSON 保持一致
func (n QuestionNumber) MarshalYAML() (interface{}, error) {
	if n.IsLabel() {
		return n.Label, nil
	}
	return n.N, nil
}

// ParseQuestionNumber 解析存储层的题号文本
func ParseQuestionNumber(s string) QuestionNumber {
	if i, err := strconv.Atoi(s); err == nil {
		return Num(i)
	}
	return Labeled(s)
}

// Option 选项
type Option struct {
	Letter string `json:"letter" yaml:"letter"`
	Text   string `json:"text" yaml:"text"`
}

// AudioRef 听力题音频片段 [StartSec, EndSec)
type AudioRef struct {
	FileRole AudioRole `json:"fileRole" yaml:"fileRole"`
	File     string    `json:"file,omitempty" yaml:"file,omitempty"`
	StartSec int       `json:"startSec" yaml:"startSec"`
	EndSec   int       `json:"endSec" yaml:"endSec"`
}

// Question 一道题
type Question struct {
	ID             string         `json:"id,omitempty" yaml:"id,omitempty"`
	SectionType    SectionType    `json:"sectionType" yaml:"sectionType"`
	QuestionType   QuestionType   `json:"questionType" yaml:"questionType"`
	QuestionNumber QuestionNumber `json:"questionNumber" yaml:"questionNumber"`
	Content        string         `json:"content" yaml:"content"`
	Options        []Option       `json:"options" yaml:"options"`
	CorrectAnswer  string         `json:"correctAnswer" yaml:"correctAnswer"`
	Score          float64        `json:"score" yaml:"score"`
	SortOrder      int            `json:"sortOrder" yaml:"sortOrder"`
	AudioRef       *AudioRef      `json:"audioRef,omitempty" yaml:"audioRef,omitempty"`

	// Flagged 选项不足或缺少答案，需要下游校验
	Flagged bool `json:"flagged,omitempty" yaml:"flagged,omitempty"`
}

// HasOption 是否已包含该字母的选项
func (q *Question) HasOption(letter string) bool {
	for _, o := range q.Options {
		if o.Letter == letter {
			return true
		}
	}
	return false
}

// Valid 单选题至少两个不同字母的选项；主观题需要题干
func (q *Question) Valid() bool {
	if q.Content == "" {
		return false
	}
	if q.QuestionType != QuestionTypeSingleChoice {
		return true
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		seen[o.Letter] = struct{}{}
	}
	return len(seen) >= 2
}
