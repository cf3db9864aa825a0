package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfig 验证YAML配置能否被正确加载并应用默认值
func TestLoadConfig(t *testing.T) {
	yamlContent := `
server:
  port: 9090
tika:
  server_url: "http://localhost:9998"
extraction:
  min_chars: 80
llm:
  model: "anthropic/claude-3-haiku"
  timeout_seconds: 30
mysql:
  host: "localhost"
  user: "resume"
  database: "resume_analyzer"
`
	tmpDir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err, "无法创建临时目录")
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	err = os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err, "无法写入临时配置文件")

	config, err := LoadConfig(configPath)
	require.NoError(t, err, "加载合法配置不应返回错误")
	require.NotNil(t, config)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "http://localhost:9998", config.Tika.ServerURL)
	assert.Equal(t, 80, config.Extraction.MinChars, "显式配置的充分性阈值应生效")
	assert.Equal(t, 30, config.LLM.TimeoutSeconds)

	// 未填写的项应落回默认值
	assert.Equal(t, 50, config.Extraction.OCRMinChars)
	assert.Equal(t, 300, config.OCR.DPI)
	assert.Equal(t, 3306, config.MySQL.Port)
	assert.Equal(t, "resume-originals", config.MinIO.OriginalsBucket)
	assert.Equal(t, "info", config.Logger.Level)
}

// TestLoadConfigDefaults 空配置文件时所有默认值都应生效
func TestLoadConfigDefaults(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	err = os.WriteFile(configPath, []byte("{}\n"), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, 100, config.Extraction.MinChars, "默认充分性阈值为100字符")
	assert.Equal(t, "pdftoppm", config.OCR.PdftoppmPath)
	assert.Equal(t, "tesseract", config.OCR.TesseractPath)
	assert.Equal(t, "eng", config.OCR.Language)
	assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", config.LLM.APIURL)
	assert.Equal(t, 60, config.JobFeed.MaxItems)
}

// TestLoadConfigEnvOverride 环境变量应覆盖配置文件中的敏感项
func TestLoadConfigEnvOverride(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	err = os.WriteFile(configPath, []byte("llm:\n  api_key: \"from-file\"\n"), 0644)
	require.NoError(t, err)

	t.Setenv("OPENROUTER_API_KEY", "from-env")

	config, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "from-env", config.LLM.APIKey)
}

// TestLoadConfigMissingFile 不存在的配置文件应返回错误
func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	assert.Error(t, err)

	_, err = LoadConfig("")
	assert.Error(t, err)
}

// TestMySQLDSN 验证DSN拼接
func TestMySQLDSN(t *testing.T) {
	cfg := MySQLConfig{
		Host:     "127.0.0.1",
		Port:     3306,
		User:     "resume",
		Password: "secret",
		Database: "resume_analyzer",
	}
	assert.Equal(t,
		"resume:secret@tcp(127.0.0.1:3306)/resume_analyzer?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DSN())
}
