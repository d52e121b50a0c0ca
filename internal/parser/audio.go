package parser

import (
	"fmt"
	"sort"

	"cetpaper/internal/model"
)

// AudioFileName 音频文件命名：cet4_202312_1_short.mp3
func AudioFileName(key model.PaperKey, role model.AudioRole) string {
	return fmt.Sprintf("%s_%04d%02d_%d_%s.mp3", key.ExamType.Slug(), key.Year, key.Month, key.PaperNumber, role)
}

// AudioFiles 按类型/年/月/套数生成各音频分段的文件引用
func AudioFiles(key model.PaperKey, baseURL string) map[model.AudioRole]string {
	files := make(map[model.AudioRole]string, len(model.AudioRoles))
	for _, role := range model.AudioRoles {
		name := AudioFileName(key, role)
		if baseURL != "" {
			name = joinURL(baseURL, name)
		}
		files[role] = name
	}
	return files
}

func joinURL(base, name string) string {
	if base[len(base)-1] == '/' {
		return base + name
	}
	return base + "/" + name
}

// AssignAudio 为听力题分配音频片段
//
// 按题号升序推进游标：从 short 开始，题号达到 Long1Start 时切到 long1 并把时间归零，
// 达到 Long2Start 时切到 long2 并归零；每题占 QuestionSeconds 秒。
// 切换按越过阈值（>=）判断，默认 9 和 16：边界题缺失时下一道更大题号照样切换。
// 阈值来自配置，不从数据推断。
func AssignAudio(questions []*model.Question, files map[model.AudioRole]string, layout AudioLayout) {
	ordered := make([]*model.Question, 0, len(questions))
	for _, q := range questions {
		if q.SectionType == model.SectionListening && !q.QuestionNumber.IsLabel() {
			ordered = append(ordered, q)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].QuestionNumber.N < ordered[j].QuestionNumber.N
	})

	role := model.AudioRoleShort
	current := 0
	for _, q := range ordered {
		n := q.QuestionNumber.N
		switch {
		case n >= layout.Long2Start && role != model.AudioRoleLong2:
			role = model.AudioRoleLong2
			current = 0
		case n >= layout.Long1Start && n < layout.Long2Start && role == model.AudioRoleShort:
			role = model.AudioRoleLong1
			current = 0
		}
		q.AudioRef = &model.AudioRef{
			FileRole: role,
			File:     files[role],
			StartSec: current,
			EndSec:   current + layout.QuestionSeconds,
		}
		current += layout.QuestionSeconds
	}
}
