package model

// SheetReport 单个 Sheet 的识别与抽取结果
type SheetReport struct {
	SheetName string      `json:"sheetName" yaml:"sheetName"`
	Section   SectionType `json:"section" yaml:"section"`
	ByName    bool        `json:"byName" yaml:"byName"` // true: 由 Sheet 名识别；false: 由内容识别或未识别
	Rows      int         `json:"rows" yaml:"rows"`
	Questions int         `json:"questions" yaml:"questions"`
	Error     string      `json:"error,omitempty" yaml:"error,omitempty"`
}
