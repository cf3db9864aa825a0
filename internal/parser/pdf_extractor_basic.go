package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"smart-resume-go/internal/types"
)

// BasicPDFExtractor 基于 ledongthuc/pdf 的纯Go提取器，承担提取链中的基础冗余策略。
// 它和Eino底层实现不同，对部分畸形PDF有不同的失败模式，因此作为第二道数字提取防线。
type BasicPDFExtractor struct {
	logger *log.Logger
}

// BasicPDFOption 配置选项
type BasicPDFOption func(*BasicPDFExtractor)

// WithBasicLogger 配置自定义日志记录器
func WithBasicLogger(logger *log.Logger) BasicPDFOption {
	return func(e *BasicPDFExtractor) {
		e.logger = logger
	}
}

var _ PDFExtractor = (*BasicPDFExtractor)(nil)

// NewBasicPDFExtractor 创建基础PDF提取器
func NewBasicPDFExtractor(options ...BasicPDFOption) *BasicPDFExtractor {
	extractor := &BasicPDFExtractor{
		logger: log.New(os.Stderr, "[BasicPDF] ", log.LstdFlags),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// Method 实现PDFExtractor接口
func (e *BasicPDFExtractor) Method() types.ExtractionMethod {
	return types.MethodBasic
}

// ExtractFromFile 从PDF文件提取文本
func (e *BasicPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("读取PDF文件失败 %s: %w", filePath, err)
	}
	return e.ExtractTextFromBytes(ctx, data, filePath, nil)
}

// ExtractTextFromReader 从io.Reader提取文本
func (e *BasicPDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取PDF内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri, options)
}

// ExtractTextFromBytes 从字节数组逐页提取文本，页与页之间用换行符分隔
func (e *BasicPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	startTime := time.Now()

	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("解析PDF失败 (URI %s): %w", uri, err)
	}

	numPages := reader.NumPage()
	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// 单页失败不中断整个提取
			e.logger.Printf("第 %d 页提取失败: %v", i, err)
			continue
		}
		sb.WriteString(pageText)
		if i < numPages {
			sb.WriteString("\n")
		}
	}

	text := sb.String()
	metadata := map[string]interface{}{
		"source_file_path":       uri,
		"page_count":             numPages,
		"text_length":            len(text),
		"processing_duration_ms": time.Since(startTime).Milliseconds(),
	}

	e.logger.Printf("基础提取完成: %d 页, %d 个字符 (用时 %.2f秒)", numPages, len(text), time.Since(startTime).Seconds())
	return text, metadata, nil
}

// CountPages 统计PDF的可渲染页数。
// 统计失败时返回1而不是0：一份简历永远不会被报告为0页。
func CountPages(data []byte) int {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 1
	}
	n := reader.NumPage()
	if n < 1 {
		return 1
	}
	return n
}
