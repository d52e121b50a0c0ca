package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"cetpaper/internal/parser"
)

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig      `toml:"server"`
	Data    DataConfig        `toml:"data"`
	Store   StoreConfig       `toml:"store"`
	Import  ImportConfig      `toml:"import"`
	Audio   AudioConfig       `toml:"audio"`
	Scoring parser.ScoreTable `toml:"scoring"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// StoreConfig 存储配置
type StoreConfig struct {
	Driver string `toml:"driver"` // sqlite3 / postgres
	DSN    string `toml:"dsn"`    // sqlite3 为空时使用 data_dir/cetpaper.db
}

// ImportConfig 批量导入配置
type ImportConfig struct {
	SourceDir  string   `toml:"source_dir"`
	CET4Dir    string   `toml:"cet4_dir"`
	CET6Dir    string   `toml:"cet6_dir"`
	Workers    int      `toml:"workers"`
	Extensions []string `toml:"extensions"`
}

// AudioConfig 听力音频配置
type AudioConfig struct {
	BaseURL         string `toml:"base_url"`
	QuestionSeconds int    `toml:"question_seconds"`
	Long1Start      int    `toml:"long1_start"`
	Long2Start      int    `toml:"long2_start"`
}

// Layout 转换为解析器使用的切分规则
func (a AudioConfig) Layout() parser.AudioLayout {
	return parser.AudioLayout{
		QuestionSeconds: a.QuestionSeconds,
		Long1Start:      a.Long1Start,
		Long2Start:      a.Long2Start,
	}
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FromFile      bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	layout := parser.DefaultAudioLayout()
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Store: StoreConfig{
			Driver: "sqlite3",
		},
		Import: ImportConfig{
			SourceDir:  "papers",
			CET4Dir:    "CET4",
			CET6Dir:    "CET6",
			Workers:    4,
			Extensions: []string{".xlsx", ".xlsm"},
		},
		Audio: AudioConfig{
			QuestionSeconds: layout.QuestionSeconds,
			Long1Start:      layout.Long1Start,
			Long2Start:      layout.Long2Start,
		},
		Scoring: parser.DefaultScores(),
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 可执行文件同目录下的 config.toml
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo 从指定路径加载配置并返回元信息；path 为空时使用默认路径
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// 配置文件不存在，使用默认配置
			applyEnv(config)
			return config, info, nil
		}
		return nil, info, err
	}

	info.FromFile = true
	info.PortSpecified = isPortSpecifiedInToml(data)

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, err
	}

	applyEnv(config)
	return config, info, nil
}

// applyEnv 环境变量覆盖（用于部署 / 本地运行）
func applyEnv(config *AppConfig) {
	if v := os.Getenv("CETPAPER_SOURCE_DIR"); v != "" {
		config.Import.SourceDir = v
	}
	if v := os.Getenv("CETPAPER_STORE_DRIVER"); v != "" {
		config.Store.Driver = v
	}
	if v := os.Getenv("CETPAPER_STORE_DSN"); v != "" {
		config.Store.DSN = v
	}
	if v := os.Getenv("CETPAPER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Import.Workers = n
		}
	}
}

// SaveConfig 保存配置到指定路径
func SaveConfig(config *AppConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDataDir 确保数据目录存在；相对路径以可执行文件目录为基准
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 创建子目录
	subdirs := []string{"exports", "backups"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}
