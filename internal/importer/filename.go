package importer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"cetpaper/internal/model"
	"cetpaper/internal/parser"
)

var (
	// 2023_12 / 2023-12 / 202312
	yearMonthRe = regexp.MustCompile(`(\d{4})[_-]?(\d{2})`)
	// 2023年12月 / 2023年6月
	yearMonthCNRe = regexp.MustCompile(`(\d{4})年0?(\d{1,2})月`)

	paperSetRe     = regexp.MustCompile(`第\s*(\d{1,2})\s*套`)
	paperParenRe   = regexp.MustCompile(`[(（]\s*(\d{1,2})\s*[)）]`)
	paperSuffixRe  = regexp.MustCompile(`^[_-](\d{1,2})(\D|$)`)
	answerKeyRe    = regexp.MustCompile(`(?i)answer|(^|[^a-z])ans|ans([^a-z]|$)`)
	answerKeyWords = []string{"答案"}
)

// FileMeta 从文件名恢复的试卷元信息
type FileMeta struct {
	Year        int
	Month       int
	PaperNumber int
}

// Key 结合考试类型生成试卷唯一键
func (m FileMeta) Key(examType model.ExamType) model.PaperKey {
	return model.PaperKey{
		ExamType:    examType,
		Year:        m.Year,
		Month:       m.Month,
		PaperNumber: m.PaperNumber,
	}
}

// ParseFilename 从文件名识别年月与套数
// 支持 2023_12、2023-12、202312、2023年12月；年月之后的 _N、-N、(N) 或 第N套 为套数，默认第 1 套
func ParseFilename(name string) (FileMeta, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	loc := yearMonthRe.FindStringSubmatchIndex(base)
	if loc == nil {
		loc = yearMonthCNRe.FindStringSubmatchIndex(base)
	}
	if loc == nil {
		return FileMeta{}, fmt.Errorf("%w: %s", parser.ErrAmbiguousFilename, filepath.Base(name))
	}

	year, _ := strconv.Atoi(base[loc[2]:loc[3]])
	month, _ := strconv.Atoi(base[loc[4]:loc[5]])
	if month < 1 || month > 12 {
		return FileMeta{}, fmt.Errorf("%w: %s (month %d)", parser.ErrAmbiguousFilename, filepath.Base(name), month)
	}

	return FileMeta{
		Year:        year,
		Month:       month,
		PaperNumber: paperNumber(base[loc[1]:]),
	}, nil
}

func paperNumber(rest string) int {
	for _, re := range []*regexp.Regexp{paperSetRe, paperParenRe, paperSuffixRe} {
		if m := re.FindStringSubmatch(rest); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return 1
}

// IsAnswerKey 文件名带 answer/答案 的是答案文件，不作为题目来源
// 单独的 ans 需要位于词首或词尾（keyans、ans_2023），translation 这类词中间的 ans 不算
func IsAnswerKey(name string) bool {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if answerKeyRe.MatchString(base) {
		return true
	}
	return parser.ContainsAny(base, answerKeyWords)
}

// IsLockFile Excel 打开文件时生成的 ~$ 临时文件
func IsLockFile(name string) bool {
	return strings.HasPrefix(filepath.Base(name), "~$")
}

var examTypeRe = regexp.MustCompile(`(?i)cet[\s_-]?([46])`)

// ExamTypeFromPath 从文件名或所在目录名推断考试类型（cet4 / CET-6 / 四级 / 六级）
func ExamTypeFromPath(path string) (model.ExamType, bool) {
	for _, part := range []string{filepath.Base(path), filepath.Base(filepath.Dir(path))} {
		if m := examTypeRe.FindStringSubmatch(part); m != nil {
			if m[1] == "4" {
				return model.ExamTypeCET4, true
			}
			return model.ExamTypeCET6, true
		}
		switch {
		case strings.Contains(part, "四级"):
			return model.ExamTypeCET4, true
		case strings.Contains(part, "六级"):
			return model.ExamTypeCET6, true
		}
	}
	return "", false
}
