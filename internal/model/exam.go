package model

import (
	"fmt"
	"time"
)

// ExamType 考试类型
type ExamType string

const (
	ExamTypeCET4 ExamType = "CET4" // 大学英语四级
	ExamTypeCET6 ExamType = "CET6" // 大学英语六级
)

// DisplayName 标题中使用的考试名称
func (t ExamType) DisplayName() string {
	switch t {
	case ExamTypeCET4:
		return "英语四级"
	case ExamTypeCET6:
		return "英语六级"
	default:
		return string(t)
	}
}

// Slug 文件名中使用的小写标识
func (t ExamType) Slug() string {
	switch t {
	case ExamTypeCET4:
		return "cet4"
	case ExamTypeCET6:
		return "cet6"
	default:
		return "exam"
	}
}

// ParseExamType 解析考试类型，兼容 "cet4" / "CET-4" / "四级"
func ParseExamType(s string) (ExamType, error) {
	switch s {
	case "CET4", "cet4", "CET-4", "cet-4", "四级":
		return ExamTypeCET4, nil
	case "CET6", "cet6", "CET-6", "cet-6", "六级":
		return ExamTypeCET6, nil
	}
	return "", fmt.Errorf("unknown exam type: %q", s)
}

// AudioRole 听力音频分段
type AudioRole string

const (
	AudioRoleShort   AudioRole = "short"   // 短篇新闻/短对话
	AudioRoleLong1   AudioRole = "long1"   // 长对话一
	AudioRoleLong2   AudioRole = "long2"   // 长对话二/篇章
	AudioRoleLecture AudioRole = "lecture" // 讲座
)

// AudioRoles 全部音频分段（固定顺序）
var AudioRoles = []AudioRole{AudioRoleShort, AudioRoleLong1, AudioRoleLong2, AudioRoleLecture}

// PaperKey 试卷唯一键：类型 + 年 + 月 + 套数
type PaperKey struct {
	ExamType    ExamType `json:"examType" yaml:"examType"`
	Year        int      `json:"year" yaml:"year"`
	Month       int      `json:"month" yaml:"month"`
	PaperNumber int      `json:"paperNumber" yaml:"paperNumber"`
}

// String 形如 CET4-2023-12-1
func (k PaperKey) String() string {
	return fmt.Sprintf("%s-%04d-%02d-%d", k.ExamType, k.Year, k.Month, k.PaperNumber)
}

// ExamPaper 一套解析后的真题试卷
type ExamPaper struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	PaperKey `yaml:",inline"`

	Title          string               `json:"title" yaml:"title"`
	Questions      []*Question          `json:"questions" yaml:"questions"`
	AudioFiles     map[AudioRole]string `json:"audioFiles" yaml:"audioFiles"`
	TotalQuestions int                  `json:"totalQuestions" yaml:"totalQuestions"`

	// 以下字段由存储层维护
	Active     bool      `json:"active" yaml:"active"`
	SourceFile string    `json:"sourceFile,omitempty" yaml:"sourceFile,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// PaperTitle 生成试卷标题：2023年12月英语四级真题
func PaperTitle(examType ExamType, year, month int) string {
	return fmt.Sprintf("%d年%d月%s真题", year, month, examType.DisplayName())
}

// QuestionsBySection 按板块筛选题目（保持原顺序）
func (p *ExamPaper) QuestionsBySection(section SectionType) []*Question {
	var out []*Question
	for _, q := range p.Questions {
		if q.SectionType == section {
			out = append(out, q)
		}
	}
	return out
}

// TotalScore 试卷总分
func (p *ExamPaper) TotalScore() float64 {
	total := 0.0
	for _, q := range p.Questions {
		total += q.Score
	}
	return total
}
