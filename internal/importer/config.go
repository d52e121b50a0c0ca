package importer

import (
	"log/slog"

	"cetpaper/internal/config"
	"cetpaper/internal/parser"
)

// ConfigFrom 由应用配置构造导入配置
func ConfigFrom(cfg *config.AppConfig, logger *slog.Logger) Config {
	return Config{
		CET4Dir:    cfg.Import.CET4Dir,
		CET6Dir:    cfg.Import.CET6Dir,
		Workers:    cfg.Import.Workers,
		Extensions: cfg.Import.Extensions,
		Parse: parser.Options{
			Scores:       cfg.Scoring,
			Audio:        cfg.Audio.Layout(),
			AudioBaseURL: cfg.Audio.BaseURL,
			Logger:       logger,
		},
		Logger: logger,
	}
}
