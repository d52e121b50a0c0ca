package parser

import (
	"cetpaper/internal/model"
)

// Sections 各板块抽取出的题目，板块内保持 Sheet 与行的先后顺序
type Sections map[model.SectionType][]*model.Question

// Add 追加题目到板块
func (s Sections) Add(section model.SectionType, qs ...*model.Question) {
	s[section] = append(s[section], qs...)
}

// Count 题目总数
func (s Sections) Count() int {
	n := 0
	for _, qs := range s {
		n += len(qs)
	}
	return n
}

// Assemble 组卷：按 写作 → 听力 → 阅读 → 翻译 拼接，sort_order 从 1 连续编号
// 纯数据变换，不做任何 IO
func Assemble(key model.PaperKey, sections Sections, audioBaseURL string) *model.ExamPaper {
	paper := &model.ExamPaper{
		PaperKey:   key,
		Title:      model.PaperTitle(key.ExamType, key.Year, key.Month),
		AudioFiles: AudioFiles(key, audioBaseURL),
		Questions:  make([]*model.Question, 0, sections.Count()),
		Active:     true,
	}

	order := 0
	for _, section := range model.SectionOrder {
		for _, q := range sections[section] {
			order++
			q.SortOrder = order
			paper.Questions = append(paper.Questions, q)
		}
	}
	paper.TotalQuestions = len(paper.Questions)
	return paper
}
