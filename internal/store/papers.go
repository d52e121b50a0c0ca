package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"cetpaper/internal/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("not found")

// PaperFilter 试卷列表筛选条件（零值表示不限）
type PaperFilter struct {
	ExamType   model.ExamType
	Year       int
	Month      int
	ActiveOnly bool
}

// SavePaper 在一个事务中写入试卷与题目
// 同一类型/年/月/套数的旧试卷会被替换，并沿用旧试卷 ID
func (s *Store) SavePaper(paper *model.ExamPaper) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existingID string
	err = tx.QueryRow(s.rebind(`
		SELECT id FROM papers
		WHERE exam_type = ? AND year = ? AND month = ? AND paper_number = ?
	`), paper.ExamType, paper.Year, paper.Month, paper.PaperNumber).Scan(&existingID)
	switch {
	case err == nil:
		if err := s.exec(tx, `DELETE FROM questions WHERE paper_id = ?`, existingID); err != nil {
			return fmt.Errorf("delete old questions: %w", err)
		}
		if err := s.exec(tx, `DELETE FROM papers WHERE id = ?`, existingID); err != nil {
			return fmt.Errorf("delete old paper: %w", err)
		}
		paper.ID = existingID
	case errors.Is(err, sql.ErrNoRows):
		if paper.ID == "" {
			paper.ID = uuid.NewString()
		}
	default:
		return fmt.Errorf("lookup paper: %w", err)
	}

	audioJSON, err := json.Marshal(paper.AudioFiles)
	if err != nil {
		return fmt.Errorf("encode audio files: %w", err)
	}
	paper.Active = true
	createdAt := now()
	paper.CreatedAt = parseTime(createdAt)

	if err := s.exec(tx, `
		INSERT INTO papers (
			id, exam_type, year, month, paper_number,
			title, total_questions, audio_files, active, source_file, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		paper.ID, paper.ExamType, paper.Year, paper.Month, paper.PaperNumber,
		paper.Title, paper.TotalQuestions, string(audioJSON), 1, paper.SourceFile, createdAt,
	); err != nil {
		return fmt.Errorf("insert paper: %w", err)
	}

	insertQuestion := s.rebind(`
		INSERT INTO questions (
			id, paper_id, section_type, question_type, question_number,
			content, options, correct_answer, score, sort_order,
			audio_role, audio_file, audio_start, audio_end, flagged
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, q := range paper.Questions {
		q.ID = uuid.NewString()

		var role, file string
		var start, end sql.NullInt64
		if q.AudioRef != nil {
			role = string(q.AudioRef.FileRole)
			file = q.AudioRef.File
			start = sql.NullInt64{Int64: int64(q.AudioRef.StartSec), Valid: true}
			end = sql.NullInt64{Int64: int64(q.AudioRef.EndSec), Valid: true}
		}

		if _, err := tx.Exec(insertQuestion,
			q.ID, paper.ID, q.SectionType, q.QuestionType, q.QuestionNumber.String(),
			q.Content, model.EncodeOptions(q.Options), q.CorrectAnswer, q.Score, q.SortOrder,
			role, file, start, end, boolInt(q.Flagged),
		); err != nil {
			return fmt.Errorf("insert question %s: %w", q.QuestionNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit paper: %w", err)
	}
	return nil
}

const paperColumns = `id, exam_type, year, month, paper_number, title, total_questions, audio_files, active, source_file, created_at`

func scanPaper(scan func(dest ...any) error) (*model.ExamPaper, error) {
	var (
		p         model.ExamPaper
		audioJSON string
		active    int
		createdAt string
	)
	if err := scan(
		&p.ID, &p.ExamType, &p.Year, &p.Month, &p.PaperNumber,
		&p.Title, &p.TotalQuestions, &audioJSON, &active, &p.SourceFile, &createdAt,
	); err != nil {
		return nil, err
	}
	p.Active = active != 0
	p.CreatedAt = parseTime(createdAt)
	p.AudioFiles = map[model.AudioRole]string{}
	if err := json.Unmarshal([]byte(audioJSON), &p.AudioFiles); err != nil {
		slog.Warn("解析 audio_files 失败", "paper", p.ID, "error", err)
		p.AudioFiles = map[model.AudioRole]string{}
	}
	return &p, nil
}

// GetPaper 读取试卷及其全部题目
func (s *Store) GetPaper(id string) (*model.ExamPaper, error) {
	row := s.db.QueryRow(s.rebind(`SELECT `+paperColumns+` FROM papers WHERE id = ?`), id)
	paper, err := scanPaper(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("paper %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("query paper: %w", err)
	}

	questions, err := s.queryQuestions(`WHERE paper_id = ?`, id)
	if err != nil {
		return nil, err
	}
	paper.Questions = questions
	return paper, nil
}

// ListPapers 列出试卷（不含题目），按年月倒序
func (s *Store) ListPapers(filter PaperFilter) ([]*model.ExamPaper, error) {
	var where []string
	var args []any
	if filter.ExamType != "" {
		where = append(where, "exam_type = ?")
		args = append(args, filter.ExamType)
	}
	if filter.Year > 0 {
		where = append(where, "year = ?")
		args = append(args, filter.Year)
	}
	if filter.Month > 0 {
		where = append(where, "month = ?")
		args = append(args, filter.Month)
	}
	if filter.ActiveOnly {
		where = append(where, "active = 1")
	}

	query := `SELECT ` + paperColumns + ` FROM papers`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY year DESC, month DESC, exam_type, paper_number"

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query papers: %w", err)
	}
	defer rows.Close()

	out := []*model.ExamPaper{}
	for rows.Next() {
		p, err := scanPaper(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeactivatePaper 下线试卷（保留数据）
func (s *Store) DeactivatePaper(id string) error {
	res, err := s.db.Exec(s.rebind(`UPDATE papers SET active = 0 WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deactivate paper: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate paper: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("paper %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListeningItems 听力练习用的题目（按题号顺序，带音频片段）
func (s *Store) ListeningItems(paperID string) ([]*model.Question, error) {
	return s.queryQuestions(`WHERE paper_id = ? AND section_type = ?`, paperID, model.SectionListening)
}

func (s *Store) queryQuestions(where string, args ...any) ([]*model.Question, error) {
	rows, err := s.db.Query(s.rebind(`
		SELECT id, section_type, question_type, question_number,
			content, options, correct_answer, score, sort_order,
			audio_role, audio_file, audio_start, audio_end, flagged
		FROM questions `+where+`
		ORDER BY sort_order
	`), args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	out := []*model.Question{}
	for rows.Next() {
		var (
			q          model.Question
			number     string
			options    string
			role, file string
			start, end sql.NullInt64
			flagged    int
		)
		if err := rows.Scan(
			&q.ID, &q.SectionType, &q.QuestionType, &number,
			&q.Content, &options, &q.CorrectAnswer, &q.Score, &q.SortOrder,
			&role, &file, &start, &end, &flagged,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.QuestionNumber = model.ParseQuestionNumber(number)
		q.Options = model.DecodeOptions(options)
		q.Flagged = flagged != 0
		if role != "" && start.Valid && end.Valid {
			q.AudioRef = &model.AudioRef{
				FileRole: model.AudioRole(role),
				File:     file,
				StartSec: int(start.Int64),
				EndSec:   int(end.Int64),
			}
		}
		out = append(out, &q)
	}
	return out, rows.Err()
}

// SessionStat 某次考试（类型+年月）下的试卷数量
type SessionStat struct {
	ExamType model.ExamType `json:"examType"`
	Year     int            `json:"year"`
	Month    int            `json:"month"`
	Papers   int            `json:"papers"`
	Active   int            `json:"active"`
}

// ListSessions 列出库中已有的考试场次（按年/月倒序）
func (s *Store) ListSessions() ([]SessionStat, error) {
	rows, err := s.db.Query(`
		SELECT exam_type, year, month, COUNT(1), SUM(active)
		FROM papers
		GROUP BY exam_type, year, month
		ORDER BY year DESC, month DESC, exam_type
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions failed: %w", err)
	}
	defer rows.Close()

	out := []SessionStat{}
	for rows.Next() {
		var it SessionStat
		if err := rows.Scan(&it.ExamType, &it.Year, &it.Month, &it.Papers, &it.Active); err != nil {
			return nil, fmt.Errorf("scan sessions failed: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions failed: %w", err)
	}
	return out, nil
}
