package parser

import (
	"log/slog"

	"cetpaper/internal/model"
)

// Row 一行单元格文本（可能包含空串）
type Row = []string

// ExpectedOptions 标准选择题的选项个数
const ExpectedOptions = 4

// SheetRecognitionResult Sheet 识别结果
type SheetRecognitionResult struct {
	SheetName  string            `json:"sheetName"`
	Section    model.SectionType `json:"section"`
	ByName     bool              `json:"byName"`
	Confidence float64           `json:"confidence"` // 置信度 0-1
}

// ScoreTable 各板块单题分值
type ScoreTable struct {
	Writing     float64 `toml:"writing" json:"writing"`
	Translation float64 `toml:"translation" json:"translation"`
	Listening   float64 `toml:"listening" json:"listening"`
	Reading     float64 `toml:"reading" json:"reading"`
}

// DefaultScores 四六级标准分值
func DefaultScores() ScoreTable {
	return ScoreTable{
		Writing:     106,
		Translation: 106,
		Listening:   7.1,
		Reading:     14.2,
	}
}

// For 返回板块对应的单题分值，未识别板块记 0 分
func (s ScoreTable) For(section model.SectionType) float64 {
	switch section {
	case model.SectionWriting:
		return s.Writing
	case model.SectionTranslation:
		return s.Translation
	case model.SectionListening:
		return s.Listening
	case model.SectionReading:
		return s.Reading
	default:
		return 0
	}
}

// AudioLayout 听力音频切分规则
//
// 四六级听力固定结构：1-8 题为短篇（short），从 Long1Start 起切换到第一段长音频，
// 从 Long2Start 起切换到第二段长音频。阈值不从数据推断，题目结构偏离时时间窗会错位。
type AudioLayout struct {
	QuestionSeconds int `toml:"question_seconds" json:"questionSeconds"`
	Long1Start      int `toml:"long1_start" json:"long1Start"`
	Long2Start      int `toml:"long2_start" json:"long2Start"`
}

// DefaultAudioLayout 标准听力结构：每题 15 秒，第 9 题、第 16 题切换音频
func DefaultAudioLayout() AudioLayout {
	return AudioLayout{
		QuestionSeconds: 15,
		Long1Start:      9,
		Long2Start:      16,
	}
}

// Options 解析选项
type Options struct {
	Scores       ScoreTable
	Audio        AudioLayout
	AudioBaseURL string
	Logger       *slog.Logger
}

func (o *Options) defaults() {
	if o.Scores == (ScoreTable{}) {
		o.Scores = DefaultScores()
	}
	if o.Audio.QuestionSeconds <= 0 {
		o.Audio.QuestionSeconds = DefaultAudioLayout().QuestionSeconds
	}
	if o.Audio.Long1Start <= 0 {
		o.Audio.Long1Start = DefaultAudioLayout().Long1Start
	}
	if o.Audio.Long2Start <= 0 {
		o.Audio.Long2Start = DefaultAudioLayout().Long2Start
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// PaperReport 单个文件的解析报告
type PaperReport struct {
	Sheets   []model.SheetReport        `json:"sheets" yaml:"sheets"`
	Warnings []PartialExtractionWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
