package parser

import (
	"testing"

	"cetpaper/internal/model"
)

func listeningQuestions(numbers ...int) []*model.Question {
	qs := make([]*model.Question, 0, len(numbers))
	for _, n := range numbers {
		qs = append(qs, &model.Question{
			SectionType:    model.SectionListening,
			QuestionType:   model.QuestionTypeSingleChoice,
			QuestionNumber: model.Num(n),
			Content:        "q",
		})
	}
	return qs
}

func TestAssignAudio_StandardBoundaries(t *testing.T) {
	t.Parallel()

	numbers := make([]int, 0, 25)
	for i := 1; i <= 25; i++ {
		numbers = append(numbers, i)
	}
	qs := listeningQuestions(numbers...)
	key := model.PaperKey{ExamType: model.ExamTypeCET4, Year: 2023, Month: 12, PaperNumber: 1}
	files := AudioFiles(key, "")

	AssignAudio(qs, files, DefaultAudioLayout())

	for _, q := range qs {
		n := q.QuestionNumber.N
		ref := q.AudioRef
		if ref == nil {
			t.Fatalf("question %d has no audio", n)
		}
		var wantRole model.AudioRole
		var offset int
		switch {
		case n <= 8:
			wantRole, offset = model.AudioRoleShort, n-1
		case n <= 15:
			wantRole, offset = model.AudioRoleLong1, n-9
		default:
			wantRole, offset = model.AudioRoleLong2, n-16
		}
		if ref.FileRole != wantRole {
			t.Fatalf("question %d role=%s want %s", n, ref.FileRole, wantRole)
		}
		if ref.StartSec != offset*15 || ref.EndSec-ref.StartSec != 15 {
			t.Fatalf("question %d window=[%d,%d)", n, ref.StartSec, ref.EndSec)
		}
		if ref.File != files[wantRole] {
			t.Fatalf("question %d file=%s", n, ref.File)
		}
	}
}

func TestAssignAudio_UsesNumberOrder(t *testing.T) {
	t.Parallel()

	qs := listeningQuestions(3, 1, 2)
	AssignAudio(qs, map[model.AudioRole]string{}, DefaultAudioLayout())

	if qs[1].AudioRef.StartSec != 0 || qs[2].AudioRef.StartSec != 15 || qs[0].AudioRef.StartSec != 30 {
		t.Fatalf("windows: q3=%d q1=%d q2=%d", qs[0].AudioRef.StartSec, qs[1].AudioRef.StartSec, qs[2].AudioRef.StartSec)
	}
}

func TestAssignAudio_MissingBoundaryQuestionStillSwitches(t *testing.T) {
	t.Parallel()

	qs := listeningQuestions(8, 10, 17)
	AssignAudio(qs, map[model.AudioRole]string{}, DefaultAudioLayout())

	if qs[1].AudioRef.FileRole != model.AudioRoleLong1 || qs[1].AudioRef.StartSec != 0 {
		t.Fatalf("q10=%+v", qs[1].AudioRef)
	}
	if qs[2].AudioRef.FileRole != model.AudioRoleLong2 || qs[2].AudioRef.StartSec != 0 {
		t.Fatalf("q17=%+v", qs[2].AudioRef)
	}
}

func TestAudioFiles_Deterministic(t *testing.T) {
	t.Parallel()

	key := model.PaperKey{ExamType: model.ExamTypeCET6, Year: 2024, Month: 6, PaperNumber: 2}
	files := AudioFiles(key, "https://cdn.example.com/audio/")
	if got := files[model.AudioRoleLecture]; got != "https://cdn.example.com/audio/cet6_202406_2_lecture.mp3" {
		t.Fatalf("lecture=%s", got)
	}
	if len(files) != 4 {
		t.Fatalf("roles=%d", len(files))
	}
}
