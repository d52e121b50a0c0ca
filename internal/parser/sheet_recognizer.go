package parser

import (
	"regexp"
	"strings"
	"unicode"

	"cetpaper/internal/model"
)

// sectionRule 板块识别规则：Sheet 名关键词 + 内容标记
type sectionRule struct {
	Section      model.SectionType
	NameKeywords []string
	NamePattern  *regexp.Regexp
	Markers      []string
}

// SheetRecognizer Sheet 类型识别器
type SheetRecognizer struct {
	rules []sectionRule
}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer() *SheetRecognizer {
	return &SheetRecognizer{rules: defaultSectionRules()}
}

// 规则顺序即优先级：写作 → 听力 → 阅读 → 翻译
// "Part I" 需要按完整罗马数字匹配，否则会吞掉 "Part II"
func defaultSectionRules() []sectionRule {
	return []sectionRule{
		{
			Section:      model.SectionWriting,
			NameKeywords: []string{"写作", "作文", "writing", "第一部分"},
			NamePattern:  regexp.MustCompile(`(?i)\bpart\s*(i|1)\b`),
			Markers:      []string{"essay", "composition", "作文", "写作"},
		},
		{
			Section:      model.SectionListening,
			NameKeywords: []string{"听力", "listening", "第二部分"},
			NamePattern:  regexp.MustCompile(`(?i)\bpart\s*(ii|2)\b`),
			Markers:      []string{"conversation", "dialogue", "section a", "news report", "recording", "you will hear"},
		},
		{
			Section:      model.SectionReading,
			NameKeywords: []string{"阅读", "reading", "第三部分"},
			NamePattern:  regexp.MustCompile(`(?i)\bpart\s*(iii|3)\b`),
			Markers:      []string{"passage", "comprehension", "paragraph", "blank"},
		},
		{
			Section:      model.SectionTranslation,
			NameKeywords: []string{"翻译", "translation", "第四部分"},
			NamePattern:  regexp.MustCompile(`(?i)\bpart\s*(iv|4)\b`),
			Markers:      []string{"translate", "翻译"},
		},
	}
}

// Recognize 识别 Sheet 所属板块
// 先按 Sheet 名匹配；未命中时对整张 Sheet 的文本做内容识别；都失败返回 unknown
func (r *SheetRecognizer) Recognize(sheetName string, rows []Row) SheetRecognitionResult {
	if section, ok := r.recognizeByName(sheetName); ok {
		return SheetRecognitionResult{
			SheetName:  sheetName,
			Section:    section,
			ByName:     true,
			Confidence: 1,
		}
	}

	if section, conf := r.recognizeByContent(FlattenRows(rows)); section != model.SectionUnknown {
		return SheetRecognitionResult{
			SheetName:  sheetName,
			Section:    section,
			Confidence: conf,
		}
	}

	return SheetRecognitionResult{
		SheetName:  sheetName,
		Section:    model.SectionUnknown,
		Confidence: 0,
	}
}

// Classify 纯函数形式的识别入口
func Classify(sheetName string, rows []Row) model.SectionType {
	return NewSheetRecognizer().Recognize(sheetName, rows).Section
}

func (r *SheetRecognizer) recognizeByName(sheetName string) (model.SectionType, bool) {
	name := NormalizeCell(sheetName)
	if name == "" {
		return model.SectionUnknown, false
	}
	for _, rule := range r.rules {
		if ContainsAnyFold(name, rule.NameKeywords) || rule.NamePattern.MatchString(name) {
			return rule.Section, true
		}
	}
	return model.SectionUnknown, false
}

// contentOrder 内容识别顺序，第一个命中的板块胜出
// 翻译排在阅读之前：翻译说明里的 "translate a passage" 同时含有阅读标记 "passage"
var contentOrder = []model.SectionType{
	model.SectionWriting,
	model.SectionListening,
	model.SectionTranslation,
	model.SectionReading,
}

// recognizeByContent 按 contentOrder 依次检查内容标记，第一个命中的板块胜出
// 翻译另外接受中文标点密集的文本
func (r *SheetRecognizer) recognizeByContent(text string) (model.SectionType, float64) {
	if strings.TrimSpace(text) == "" {
		return model.SectionUnknown, 0
	}

	for _, section := range contentOrder {
		rule, ok := r.rule(section)
		if !ok {
			continue
		}
		if ContainsAny(text, rule.Markers) {
			return section, 0.6
		}
		if section == model.SectionTranslation && isChinesePunctuationDense(text) {
			return section, 0.5
		}
	}
	return model.SectionUnknown, 0
}

func (r *SheetRecognizer) rule(section model.SectionType) (sectionRule, bool) {
	for _, rule := range r.rules {
		if rule.Section == section {
			return rule, true
		}
	}
	return sectionRule{}, false
}

// isChinesePunctuationDense 汉字占可见字符 30% 以上，且至少两个中文句读
func isChinesePunctuationDense(text string) bool {
	visible, cjk := 0, 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		visible++
		if IsCJK(r) {
			cjk++
		}
	}
	if visible == 0 {
		return false
	}
	punct := strings.Count(text, "。") + strings.Count(text, "，") + strings.Count(text, "；")
	return float64(cjk)/float64(visible) >= 0.3 && punct >= 2
}
