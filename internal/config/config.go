package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Port         int    `yaml:"port"`
	AdminAPIKey  string `yaml:"admin_api_key"`  // 管理端点的访问令牌，可用环境变量 ADMIN_API_KEY 覆盖
	ExitWaitTime int    `yaml:"exit_wait_time"` // 优雅退出等待时间(秒)
}

// TikaConfig Tika服务器配置，用于布局感知提取；server_url为空时跳过该策略
type TikaConfig struct {
	ServerURL      string `yaml:"server_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ExtractionConfig 文本提取链配置
type ExtractionConfig struct {
	// MinChars 充分性阈值：数字提取方法产出的字符数低于该值时视为失败，尝试下一个方法
	MinChars int `yaml:"min_chars"`
	// OCRMinChars OCR结果的接受阈值，低于该值视为整体提取失败
	OCRMinChars int `yaml:"ocr_min_chars"`
	// TimeoutSeconds 单个提取方法的超时时间(秒)
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// OCRConfig OCR提取配置，依赖外部的 pdftoppm 和 tesseract 二进制
type OCRConfig struct {
	Enabled       bool   `yaml:"enabled"`
	PdftoppmPath  string `yaml:"pdftoppm_path"`
	TesseractPath string `yaml:"tesseract_path"`
	DPI           int    `yaml:"dpi"`
	Language      string `yaml:"language"`
	MaxPages      int    `yaml:"max_pages"` // OCR处理的最大页数，0表示不限制
}

// LLMConfig 外部语言模型配置（OpenRouter兼容的chat-completions端点）。
// APIKey为空时求职匹配分析完全走本地启发式路径，系统对网络没有硬依赖。
type LLMConfig struct {
	APIKey         string  `yaml:"api_key"` // 可用环境变量 OPENROUTER_API_KEY 覆盖
	APIURL         string  `yaml:"api_url"`
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	// RequestsPerMinute 对模型API的调用速率上限(QPM)，防止触发服务端限流
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// MySQLConfig MySQL配置
type MySQLConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel        string `yaml:"log_level"`
}

// DSN 拼接MySQL连接字符串
func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Address             string `yaml:"address"`
	Password            string `yaml:"password"`
	DB                  int    `yaml:"db"`
	PoolSize            int    `yaml:"pool_size"`
	MinIdleConns        int    `yaml:"min_idle_conns"`
	DialTimeoutSeconds  int    `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

// MinIOConfig MinIO对象存储配置
type MinIOConfig struct {
	Endpoint         string `yaml:"endpoint"`
	AccessKeyID      string `yaml:"access_key_id"`
	SecretAccessKey  string `yaml:"secret_access_key"`
	UseSSL           bool   `yaml:"use_ssl"`
	OriginalsBucket  string `yaml:"originals_bucket"`
	ParsedTextBucket string `yaml:"parsed_text_bucket"`
	Location         string `yaml:"location"`
}

// RabbitMQConfig RabbitMQ配置；URL为空时事件发布被禁用
type RabbitMQConfig struct {
	URL           string `yaml:"url"`
	PrefetchCount int    `yaml:"prefetch_count"`
	RetryInterval string `yaml:"retry_interval"`
}

// JobFeedConfig RSS职位源配置
type JobFeedConfig struct {
	FeedURL        string `yaml:"feed_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxItems       int    `yaml:"max_items"`
}

// TracingConfig OpenTelemetry链路追踪配置
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	ServiceName  string  `yaml:"service_name"`
	SampleRatio  float64 `yaml:"sample_ratio"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	TimeFormat   string `yaml:"time_format"`
	ReportCaller bool   `yaml:"report_caller"`
}

// Config 应用程序配置
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Tika       TikaConfig       `yaml:"tika"`
	Extraction ExtractionConfig `yaml:"extraction"`
	OCR        OCRConfig        `yaml:"ocr"`
	LLM        LLMConfig        `yaml:"llm"`
	MySQL      MySQLConfig      `yaml:"mysql"`
	Redis      RedisConfig      `yaml:"redis"`
	MinIO      MinIOConfig      `yaml:"minio"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	JobFeed    JobFeedConfig    `yaml:"job_feed"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Logger     LoggerConfig     `yaml:"logger"`
}

// LoadConfig 从YAML文件加载配置，应用默认值并允许环境变量覆盖敏感项
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("必须提供配置文件路径")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyDefaults(&config)
	applyEnvOverrides(&config)

	return &config, nil
}

// applyDefaults 对未填写的配置项应用默认值
func applyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ExitWaitTime == 0 {
		c.Server.ExitWaitTime = 5
	}
	if c.Tika.TimeoutSeconds == 0 {
		c.Tika.TimeoutSeconds = 60
	}
	if c.Extraction.MinChars == 0 {
		c.Extraction.MinChars = 100
	}
	if c.Extraction.OCRMinChars == 0 {
		c.Extraction.OCRMinChars = 50
	}
	if c.Extraction.TimeoutSeconds == 0 {
		c.Extraction.TimeoutSeconds = 30
	}
	if c.OCR.PdftoppmPath == "" {
		c.OCR.PdftoppmPath = "pdftoppm"
	}
	if c.OCR.TesseractPath == "" {
		c.OCR.TesseractPath = "tesseract"
	}
	if c.OCR.DPI == 0 {
		c.OCR.DPI = 300
	}
	if c.OCR.Language == "" {
		c.OCR.Language = "eng"
	}
	if c.OCR.MaxPages == 0 {
		c.OCR.MaxPages = 5
	}
	if c.LLM.APIURL == "" {
		c.LLM.APIURL = "https://openrouter.ai/api/v1/chat/completions"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "anthropic/claude-3-haiku"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 500
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.4
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 40
	}
	if c.LLM.RequestsPerMinute == 0 {
		c.LLM.RequestsPerMinute = 30
	}
	if c.MySQL.Port == 0 {
		c.MySQL.Port = 3306
	}
	if c.MySQL.MaxIdleConns == 0 {
		c.MySQL.MaxIdleConns = 10
	}
	if c.MySQL.MaxOpenConns == 0 {
		c.MySQL.MaxOpenConns = 100
	}
	if c.MySQL.ConnMaxLifetime == 0 {
		c.MySQL.ConnMaxLifetime = 60
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.DialTimeoutSeconds == 0 {
		c.Redis.DialTimeoutSeconds = 5
	}
	if c.Redis.ReadTimeoutSeconds == 0 {
		c.Redis.ReadTimeoutSeconds = 3
	}
	if c.Redis.WriteTimeoutSeconds == 0 {
		c.Redis.WriteTimeoutSeconds = 3
	}
	if c.MinIO.OriginalsBucket == "" {
		c.MinIO.OriginalsBucket = "resume-originals"
	}
	if c.MinIO.ParsedTextBucket == "" {
		c.MinIO.ParsedTextBucket = "resume-parsed-text"
	}
	if c.RabbitMQ.RetryInterval == "" {
		c.RabbitMQ.RetryInterval = "5s"
	}
	if c.RabbitMQ.PrefetchCount == 0 {
		c.RabbitMQ.PrefetchCount = 10
	}
	if c.JobFeed.FeedURL == "" {
		c.JobFeed.FeedURL = "https://weworkremotely.com/categories/remote-programming-jobs.rss"
	}
	if c.JobFeed.TimeoutSeconds == 0 {
		c.JobFeed.TimeoutSeconds = 10
	}
	if c.JobFeed.MaxItems == 0 {
		c.JobFeed.MaxItems = 60
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "smart-resume-go"
	}
	if c.Tracing.SampleRatio == 0 {
		c.Tracing.SampleRatio = 1.0
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "json"
	}
}

// applyEnvOverrides 敏感配置优先使用环境变量
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("ADMIN_API_KEY"); v != "" {
		c.Server.AdminAPIKey = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		c.MySQL.Password = v
	}
}

// ExtractionTimeout 单个提取方法的超时时间
func (c *Config) ExtractionTimeout() time.Duration {
	return time.Duration(c.Extraction.TimeoutSeconds) * time.Second
}

// LLMTimeout 外部LLM调用的超时时间
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}
