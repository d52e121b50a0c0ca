package model

// FileFailure 单个文件导入失败原因
type FileFailure struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// ImportSummary 批量导入汇总（面向用户展示）
type ImportSummary struct {
	BatchID  string        `json:"batchId"`
	Imported int           `json:"imported"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Failures []FileFailure `json:"failures"`
	Skips    []FileFailure `json:"skips"`
}
