package store

import (
	"errors"
	"path/filepath"
	"testing"

	"cetpaper/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "cetpaper.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func samplePaper(examType model.ExamType, year, month int) *model.ExamPaper {
	key := model.PaperKey{ExamType: examType, Year: year, Month: month, PaperNumber: 1}
	return &model.ExamPaper{
		PaperKey: key,
		Title:    model.PaperTitle(examType, year, month),
		AudioFiles: map[model.AudioRole]string{
			model.AudioRoleShort: "cet4_202312_1_short.mp3",
		},
		Questions: []*model.Question{
			{
				SectionType:    model.SectionWriting,
				QuestionType:   model.QuestionTypeWriting,
				QuestionNumber: model.Labeled(model.LabelWriting),
				Content:        "Directions: write an essay.",
				Options:        []model.Option{},
				Score:          106,
				SortOrder:      1,
			},
			{
				SectionType:    model.SectionListening,
				QuestionType:   model.QuestionTypeSingleChoice,
				QuestionNumber: model.Num(1),
				Content:        "What does the man mean?",
				Options:        []model.Option{{Letter: "A", Text: "Yes"}, {Letter: "B", Text: "No"}},
				CorrectAnswer:  "B",
				Score:          7.1,
				SortOrder:      2,
				AudioRef:       &model.AudioRef{FileRole: model.AudioRoleShort, File: "cet4_202312_1_short.mp3", StartSec: 0, EndSec: 15},
				Flagged:        true,
			},
			{
				SectionType:    model.SectionReading,
				QuestionType:   model.QuestionTypeSingleChoice,
				QuestionNumber: model.Num(46),
				Content:        "Why?",
				Options:        []model.Option{{Letter: "A", Text: "a"}, {Letter: "B", Text: "b"}, {Letter: "C", Text: "c"}, {Letter: "D", Text: "d"}},
				CorrectAnswer:  "D",
				Score:          14.2,
				SortOrder:      3,
			},
		},
		TotalQuestions: 3,
		SourceFile:     "CET4/2023_12.xlsx",
	}
}

func TestSavePaper_GetPaperRoundTrip(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	paper := samplePaper(model.ExamTypeCET4, 2023, 12)
	if err := st.SavePaper(paper); err != nil {
		t.Fatalf("save: %v", err)
	}
	if paper.ID == "" {
		t.Fatalf("paper id not assigned")
	}

	got, err := st.GetPaper(paper.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "2023年12月英语四级真题" || !got.Active || got.TotalQuestions != 3 {
		t.Fatalf("paper=%+v", got)
	}
	if got.AudioFiles[model.AudioRoleShort] != "cet4_202312_1_short.mp3" {
		t.Fatalf("audio=%v", got.AudioFiles)
	}
	if len(got.Questions) != 3 {
		t.Fatalf("questions=%d", len(got.Questions))
	}

	writing := got.Questions[0]
	if writing.QuestionNumber.Label != model.LabelWriting || len(writing.Options) != 0 || writing.AudioRef != nil {
		t.Fatalf("writing=%+v", writing)
	}

	listening := got.Questions[1]
	if listening.QuestionNumber.N != 1 || listening.CorrectAnswer != "B" || !listening.Flagged {
		t.Fatalf("listening=%+v", listening)
	}
	if listening.AudioRef == nil || listening.AudioRef.EndSec != 15 || listening.AudioRef.FileRole != model.AudioRoleShort {
		t.Fatalf("audio ref=%+v", listening.AudioRef)
	}
	if len(listening.Options) != 2 || listening.Options[1].Text != "No" {
		t.Fatalf("options=%+v", listening.Options)
	}
}

func TestSavePaper_ReplacesSameKey(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	first := samplePaper(model.ExamTypeCET4, 2023, 12)
	if err := st.SavePaper(first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := samplePaper(model.ExamTypeCET4, 2023, 12)
	second.Questions = second.Questions[:1]
	second.TotalQuestions = 1
	if err := st.SavePaper(second); err != nil {
		t.Fatalf("save again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("replacement must keep id: %s vs %s", second.ID, first.ID)
	}

	papers, err := st.ListPapers(PaperFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(papers) != 1 || papers[0].TotalQuestions != 1 {
		t.Fatalf("papers=%+v", papers)
	}
	got, err := st.GetPaper(first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Questions) != 1 {
		t.Fatalf("old questions left behind: %d", len(got.Questions))
	}
}

func TestListPapers_FilterAndDeactivate(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	cet4 := samplePaper(model.ExamTypeCET4, 2023, 12)
	cet6 := samplePaper(model.ExamTypeCET6, 2024, 6)
	for _, p := range []*model.ExamPaper{cet4, cet6} {
		if err := st.SavePaper(p); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	all, err := st.ListPapers(PaperFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ExamType != model.ExamTypeCET6 {
		t.Fatalf("order: %+v", all)
	}

	only4, err := st.ListPapers(PaperFilter{ExamType: model.ExamTypeCET4})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(only4) != 1 || only4[0].ID != cet4.ID {
		t.Fatalf("cet4 filter: %+v", only4)
	}

	if err := st.DeactivatePaper(cet4.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	active, err := st.ListPapers(PaperFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 || active[0].ID != cet6.ID {
		t.Fatalf("active: %+v", active)
	}

	if err := st.DeactivatePaper("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deactivate missing err=%v", err)
	}
	if _, err := st.GetPaper("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing err=%v", err)
	}

	sessions, err := st.ListSessions()
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 2 || sessions[1].Active != 0 || sessions[1].Papers != 1 {
		t.Fatalf("sessions=%+v", sessions)
	}
}

func TestListeningItems(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	paper := samplePaper(model.ExamTypeCET4, 2023, 12)
	if err := st.SavePaper(paper); err != nil {
		t.Fatalf("save: %v", err)
	}
	items, err := st.ListeningItems(paper.ID)
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	if len(items) != 1 || items[0].SectionType != model.SectionListening || items[0].AudioRef == nil {
		t.Fatalf("items=%+v", items)
	}
}

func TestQuestionOptions_CorruptFallsBackToPlaceholders(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	paper := samplePaper(model.ExamTypeCET4, 2023, 12)
	if err := st.SavePaper(paper); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := st.DB().Exec(`UPDATE questions SET options = 'not json' WHERE question_number = '46'`); err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	got, err := st.GetPaper(paper.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	opts := got.Questions[2].Options
	if len(opts) != 4 || opts[0].Text != "选项A" || opts[3].Letter != "D" {
		t.Fatalf("options=%+v", opts)
	}
}

func TestGetPaper_CorruptAudioFilesYieldsEmptyMap(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	paper := samplePaper(model.ExamTypeCET4, 2023, 12)
	if err := st.SavePaper(paper); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := st.DB().Exec(`UPDATE papers SET audio_files = '{broken'`); err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	got, err := st.GetPaper(paper.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AudioFiles == nil || len(got.AudioFiles) != 0 {
		t.Fatalf("audio files=%v", got.AudioFiles)
	}
	if len(got.Questions) != 3 {
		t.Fatalf("questions=%d", len(got.Questions))
	}
}

func TestImportLogAndSheetMeta(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	if err := st.CreateImportLog("batch-1", "/srv/papers"); err != nil {
		t.Fatalf("create log: %v", err)
	}
	if err := st.InsertImportFile(ImportFile{ImportLogID: "batch-1", FilePath: "CET4/notes.xlsx", Status: FileStatusSkipped, Reason: "ambiguous filename"}); err != nil {
		t.Fatalf("insert file: %v", err)
	}
	if err := st.InsertImportFile(ImportFile{ImportLogID: "batch-1", FilePath: "CET4/2023_12.xlsx", Status: FileStatusImported, PaperID: "p1", Questions: 30}); err != nil {
		t.Fatalf("insert file: %v", err)
	}
	if err := st.UpdateImportLog("batch-1", 2, 1, 0, 1, ImportStatusCompleted, ""); err != nil {
		t.Fatalf("update log: %v", err)
	}

	l, err := st.GetImportLog("batch-1")
	if err != nil {
		t.Fatalf("get log: %v", err)
	}
	if l.Status != ImportStatusCompleted || l.ImportedFiles != 1 || l.SkippedFiles != 1 || l.CompletedAt == nil {
		t.Fatalf("log=%+v", l)
	}
	files, err := st.ListImportFiles("batch-1")
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 2 || files[0].Status != FileStatusSkipped || files[1].Questions != 30 {
		t.Fatalf("files=%+v", files)
	}

	for _, batch := range []string{"batch-0", "batch-1"} {
		meta := NewSheetMeta(batch, "p1", "CET4/2023_12.xlsx", model.SheetReport{
			SheetName: "听力", Section: model.SectionListening, ByName: true, Rows: 76, Questions: 25,
		})
		if err := st.InsertSheetMeta(meta); err != nil {
			t.Fatalf("insert meta: %v", err)
		}
	}
	metas, err := st.ListSheetMeta("p1")
	if err != nil {
		t.Fatalf("list meta: %v", err)
	}
	if len(metas) != 1 || metas[0].ImportLogID != "batch-1" || !metas[0].ByName || metas[0].Questions != 25 {
		t.Fatalf("metas=%+v", metas)
	}
}

func TestConfigAndRebind(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	if _, err := st.GetConfig(ConfigLastImportBatch); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key err=%v", err)
	}
	if err := st.SetConfig(ConfigLastImportBatch, "a"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.SetConfig(ConfigLastImportBatch, "b"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, err := st.GetConfig(ConfigLastImportBatch); err != nil || v != "b" {
		t.Fatalf("value=%q err=%v", v, err)
	}

	pg := &Store{driver: DriverPostgres}
	if got := pg.rebind("SELECT 1 WHERE a = ? AND b = ?"); got != "SELECT 1 WHERE a = $1 AND b = $2" {
		t.Fatalf("rebind=%s", got)
	}
	if got := st.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite rebind=%s", got)
	}
}

func TestParseDriver(t *testing.T) {
	t.Parallel()

	cases := map[string]Driver{
		"":         DriverSQLite,
		"sqlite":   DriverSQLite,
		"SQLite3":  DriverSQLite,
		"pgx":      DriverPostgres,
		"postgres": DriverPostgres,
	}
	for in, want := range cases {
		got, err := ParseDriver(in)
		if err != nil || got != want {
			t.Fatalf("ParseDriver(%q)=%s err=%v", in, got, err)
		}
	}
	if _, err := ParseDriver("mysql"); err == nil {
		t.Fatalf("mysql should be rejected")
	}
}
