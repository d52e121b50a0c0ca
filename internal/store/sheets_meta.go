package store

import (
	"fmt"

	"cetpaper/internal/model"
)

// SheetMeta Sheet 识别与抽取的元信息（用于追溯与容错）
type SheetMeta struct {
	ImportLogID  string            `json:"importLogId"`
	PaperID      string            `json:"paperId"`
	SourceFile   string            `json:"sourceFile"`
	SheetName    string            `json:"sheetName"`
	Section      model.SectionType `json:"section"`
	ByName       bool              `json:"byName"`
	TotalRows    int               `json:"totalRows"`
	Questions    int               `json:"questions"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
}

// NewSheetMeta 由解析报告构造元信息
func NewSheetMeta(importLogID, paperID, sourceFile string, r model.SheetReport) SheetMeta {
	return SheetMeta{
		ImportLogID:  importLogID,
		PaperID:      paperID,
		SourceFile:   sourceFile,
		SheetName:    r.SheetName,
		Section:      r.Section,
		ByName:       r.ByName,
		TotalRows:    r.Rows,
		Questions:    r.Questions,
		ErrorMessage: r.Error,
	}
}

// InsertSheetMeta 写入 Sheet 元信息
func (s *Store) InsertSheetMeta(meta SheetMeta) error {
	if err := s.exec(s.db, `
		INSERT INTO sheets_meta (
			import_log_id, paper_id, source_file,
			sheet_name, section, by_name,
			total_rows, questions, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		meta.ImportLogID, meta.PaperID, meta.SourceFile,
		meta.SheetName, meta.Section, boolInt(meta.ByName),
		meta.TotalRows, meta.Questions, meta.ErrorMessage,
	); err != nil {
		return fmt.Errorf("failed to insert sheets_meta: %w", err)
	}
	return nil
}

// ListSheetMeta 试卷最近一次导入时各 Sheet 的元信息
func (s *Store) ListSheetMeta(paperID string) ([]SheetMeta, error) {
	rows, err := s.db.Query(s.rebind(`
		SELECT import_log_id, paper_id, source_file, sheet_name, section, by_name,
			total_rows, questions, error_message
		FROM sheets_meta
		WHERE paper_id = ? AND import_log_id = (
			SELECT import_log_id FROM sheets_meta WHERE paper_id = ? ORDER BY id DESC LIMIT 1
		)
		ORDER BY id
	`), paperID, paperID)
	if err != nil {
		return nil, fmt.Errorf("query sheets_meta: %w", err)
	}
	defer rows.Close()

	out := []SheetMeta{}
	for rows.Next() {
		var m SheetMeta
		var byName int
		if err := rows.Scan(
			&m.ImportLogID, &m.PaperID, &m.SourceFile, &m.SheetName, &m.Section, &byName,
			&m.TotalRows, &m.Questions, &m.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("scan sheets_meta: %w", err)
		}
		m.ByName = byName != 0
		out = append(out, m)
	}
	return out, rows.Err()
}
