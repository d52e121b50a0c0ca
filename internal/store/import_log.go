package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// 导入批次状态
const (
	ImportStatusProcessing = "processing"
	ImportStatusCompleted  = "completed"
	ImportStatusPartial    = "partial" // 有文件失败
	ImportStatusFailed     = "failed"
)

// 批次内文件状态
const (
	FileStatusImported = "imported"
	FileStatusFailed   = "failed"
	FileStatusSkipped  = "skipped"
)

// ImportLog 一次批量导入
type ImportLog struct {
	ID            string     `json:"id"`
	SourceDir     string     `json:"sourceDir"`
	Status        string     `json:"status"`
	TotalFiles    int        `json:"totalFiles"`
	ImportedFiles int        `json:"importedFiles"`
	FailedFiles   int        `json:"failedFiles"`
	SkippedFiles  int        `json:"skippedFiles"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
	StartedAt     time.Time  `json:"startedAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// ImportFile 批次内单个文件的结果
type ImportFile struct {
	ImportLogID string `json:"importLogId"`
	FilePath    string `json:"filePath"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	PaperID     string `json:"paperId,omitempty"`
	Questions   int    `json:"questions"`
}

// CreateImportLog 创建导入日志，id 为批次 ID
func (s *Store) CreateImportLog(id, sourceDir string) error {
	if err := s.exec(s.db, `
		INSERT INTO import_logs (id, source_dir, status, started_at)
		VALUES (?, ?, ?, ?)
	`, id, sourceDir, ImportStatusProcessing, now()); err != nil {
		return fmt.Errorf("failed to create import log: %w", err)
	}
	return nil
}

// UpdateImportLog 完成导入日志更新
func (s *Store) UpdateImportLog(id string, totalFiles, importedFiles, failedFiles, skippedFiles int, status, errorMessage string) error {
	if err := s.exec(s.db, `
		UPDATE import_logs SET
			total_files = ?,
			imported_files = ?,
			failed_files = ?,
			skipped_files = ?,
			status = ?,
			error_message = ?,
			completed_at = ?
		WHERE id = ?
	`, totalFiles, importedFiles, failedFiles, skippedFiles, status, errorMessage, now(), id); err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// InsertImportFile 记录批次内单个文件的结果
func (s *Store) InsertImportFile(f ImportFile) error {
	if err := s.exec(s.db, `
		INSERT INTO import_files (import_log_id, file_path, status, reason, paper_id, questions)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.ImportLogID, f.FilePath, f.Status, f.Reason, f.PaperID, f.Questions); err != nil {
		return fmt.Errorf("failed to insert import file: %w", err)
	}
	return nil
}

// GetImportLog 读取导入日志
func (s *Store) GetImportLog(id string) (*ImportLog, error) {
	row := s.db.QueryRow(s.rebind(`
		SELECT id, source_dir, status, total_files, imported_files, failed_files, skipped_files,
			error_message, started_at, completed_at
		FROM import_logs WHERE id = ?
	`), id)
	l, err := scanImportLog(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("import log %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("query import log: %w", err)
	}
	return l, nil
}

// ListImportLogs 最近的导入日志
func (s *Store) ListImportLogs(limit int) ([]*ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(s.rebind(`
		SELECT id, source_dir, status, total_files, imported_files, failed_files, skipped_files,
			error_message, started_at, completed_at
		FROM import_logs
		ORDER BY started_at DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("query import logs: %w", err)
	}
	defer rows.Close()

	out := []*ImportLog{}
	for rows.Next() {
		l, err := scanImportLog(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan import log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListImportFiles 批次内的文件结果（按写入顺序）
func (s *Store) ListImportFiles(importLogID string) ([]ImportFile, error) {
	rows, err := s.db.Query(s.rebind(`
		SELECT import_log_id, file_path, status, reason, paper_id, questions
		FROM import_files WHERE import_log_id = ?
		ORDER BY id
	`), importLogID)
	if err != nil {
		return nil, fmt.Errorf("query import files: %w", err)
	}
	defer rows.Close()

	out := []ImportFile{}
	for rows.Next() {
		var f ImportFile
		if err := rows.Scan(&f.ImportLogID, &f.FilePath, &f.Status, &f.Reason, &f.PaperID, &f.Questions); err != nil {
			return nil, fmt.Errorf("scan import file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanImportLog(scan func(dest ...any) error) (*ImportLog, error) {
	var (
		l           ImportLog
		startedAt   string
		completedAt sql.NullString
	)
	if err := scan(
		&l.ID, &l.SourceDir, &l.Status, &l.TotalFiles, &l.ImportedFiles, &l.FailedFiles, &l.SkippedFiles,
		&l.ErrorMessage, &startedAt, &completedAt,
	); err != nil {
		return nil, err
	}
	l.StartedAt = parseTime(startedAt)
	if completedAt.Valid {
		t := parseTime(completedAt.String)
		l.CompletedAt = &t
	}
	return &l, nil
}
