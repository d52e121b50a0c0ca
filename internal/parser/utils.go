package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeCell 规范化单元格：全角 ASCII 转半角，去除首尾空白，压缩内部空白
// 仅用于模式匹配；"。"、"、" 等中文标点保持不变
func NormalizeCell(s string) string {
	s = width.Fold.String(s)
	s = strings.TrimSpace(s)
	return whitespaceRe.ReplaceAllString(s, " ")
}

// NormalizeRow 规范化整行
func NormalizeRow(row Row) Row {
	out := make(Row, len(row))
	for i, c := range row {
		out[i] = NormalizeCell(c)
	}
	return out
}

// FirstNonEmpty 返回第一个非空单元格的下标，全空返回 -1
func FirstNonEmpty(row Row) int {
	for i, c := range row {
		if strings.TrimSpace(c) != "" {
			return i
		}
	}
	return -1
}

// JoinRow 以空格拼接所有非空单元格
func JoinRow(row Row) string {
	parts := make([]string, 0, len(row))
	for _, c := range row {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

// IsBlankRow 整行为空
func IsBlankRow(row Row) bool {
	return FirstNonEmpty(row) < 0
}

// FlattenRows 将整张 Sheet 拼接为一个小写字符串（用于内容识别）
func FlattenRows(rows []Row) string {
	var b strings.Builder
	for _, row := range rows {
		if line := JoinRow(row); line != "" {
			b.WriteString(strings.ToLower(line))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ContainsAnyFold 大小写不敏感的 ContainsAny
func ContainsAnyFold(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// IsCJK 基本汉字区 U+4E00–U+9FA5
func IsCJK(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FA5
}

// ContainsCJK 是否包含汉字
func ContainsCJK(s string) bool {
	for _, r := range s {
		if IsCJK(r) {
			return true
		}
	}
	return false
}
