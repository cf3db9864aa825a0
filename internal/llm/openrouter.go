package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"smart-resume-go/internal/logger"
)

const (
	defaultOpenRouterAPIURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultModelName        = "anthropic/claude-3-haiku"
)

// OpenRouterChatModel 通过 OpenRouter 的 OpenAI 兼容接口调用大模型，
// 实现 eino 的 model.ToolCallingChatModel 接口。
type OpenRouterChatModel struct {
	apiKey      string
	modelName   string
	apiURL      string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// chatCompletionRequest OpenAI 兼容请求体
type chatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []*schema.Message `json:"messages"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatCompletionResponse struct {
	Id      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// ModelOption OpenRouterChatModel 的可选配置
type ModelOption func(*OpenRouterChatModel)

// WithMaxTokens 设置单次补全的最大 token 数
func WithMaxTokens(n int) ModelOption {
	return func(m *OpenRouterChatModel) {
		if n > 0 {
			m.maxTokens = n
		}
	}
}

// WithTemperature 设置采样温度
func WithTemperature(t float64) ModelOption {
	return func(m *OpenRouterChatModel) {
		if t >= 0 {
			m.temperature = t
		}
	}
}

// WithHTTPTimeout 设置底层 HTTP 客户端超时
func WithHTTPTimeout(d time.Duration) ModelOption {
	return func(m *OpenRouterChatModel) {
		if d > 0 {
			m.httpClient.Timeout = d
		}
	}
}

// NewOpenRouterChatModel 创建 OpenRouter 客户端。apiKey 为空时返回错误，
// 调用方据此决定是否退回启发式路径。
func NewOpenRouterChatModel(apiKey, modelName, apiURL string, opts ...ModelOption) (*OpenRouterChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultModelName
	}
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultOpenRouterAPIURL
	}

	m := &OpenRouterChatModel{
		apiKey:      apiKey,
		modelName:   modelName,
		apiURL:      apiURL,
		maxTokens:   500,
		temperature: 0.4,
		httpClient:  &http.Client{Timeout: 40 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}

	logger.Info().Str("api_url", m.apiURL).Str("model", m.modelName).Msg("OpenRouter LLM 客户端已初始化")
	return m, nil
}

// Generate 实现 model.ChatModel 接口
func (m *OpenRouterChatModel) Generate(ctx context.Context, messages []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	payload := chatCompletionRequest{
		Model:       m.modelName,
		Messages:    messages,
		MaxTokens:   m.maxTokens,
		Temperature: m.temperature,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API 请求失败，状态 %s: %s", httpResp.Status, string(bodyBytes))
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(bodyBytes, &resp); err != nil {
		return nil, fmt.Errorf("反序列化 API 响应失败: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("从 API 收到空选项: %s", string(bodyBytes))
	}

	apiMsg := resp.Choices[0].Message
	content := ""
	if apiMsg.Content != nil {
		content = *apiMsg.Content
	}

	result := &schema.Message{
		Role:    schema.RoleType(apiMsg.Role),
		Content: content,
	}
	if result.Role == "" {
		result.Role = schema.Assistant
	}
	return result, nil
}

// Stream 实现 model.ChatModel 接口。岗位匹配路径只需一次性补全，
// 流式调用未实现。
func (m *OpenRouterChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("OpenRouterChatModel 的 Stream 方法未实现")
}

// WithTools 实现 model.ToolCallingChatModel 接口。本模型不做工具调用，
// 原样返回自身以满足接口。
func (m *OpenRouterChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	if len(tools) > 0 {
		logger.Warn().Int("count", len(tools)).Msg("OpenRouterChatModel 不支持工具调用，忽略传入的工具")
	}
	return m, nil
}

var _ model.ToolCallingChatModel = (*OpenRouterChatModel)(nil)
