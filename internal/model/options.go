package model

import (
	"encoding/json"
	"strings"
)

// PlaceholderOptions 选项无法还原时的兜底选项
func PlaceholderOptions() []Option {
	return []Option{
		{Letter: "A", Text: "选项A"},
		{Letter: "B", Text: "选项B"},
		{Letter: "C", Text: "选项C"},
		{Letter: "D", Text: "选项D"},
	}
}

// EncodeOptions 序列化选项（存储层 options 列）
func EncodeOptions(opts []Option) string {
	if len(opts) == 0 {
		return "[]"
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeOptions 还原选项列表
// 兼容 [{letter,text}] 与 {"A":"..."} 两种历史格式；无法解析时返回占位选项
func DecodeOptions(raw string) []Option {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return PlaceholderOptions()
	}

	var list []Option
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		if len(list) == 0 {
			return []Option{}
		}
		return list
	}

	var byLetter map[string]string
	if err := json.Unmarshal([]byte(raw), &byLetter); err == nil && len(byLetter) > 0 {
		out := make([]Option, 0, len(byLetter))
		for _, letter := range []string{"A", "B", "C", "D"} {
			if text, ok := byLetter[letter]; ok {
				out = append(out, Option{Letter: letter, Text: text})
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	return PlaceholderOptions()
}
