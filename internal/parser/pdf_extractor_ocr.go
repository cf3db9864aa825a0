package parser

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"smart-resume-go/internal/config"
	"smart-resume-go/internal/types"
)

// OCRPDFExtractor 光学字符识别提取器，提取链的最后手段。
// 仅当所有数字提取方法失败时调用——这通常意味着PDF是扫描件。
// 实现方式与原理：先用 pdftoppm 将每页渲染成高分辨率位图（默认300 DPI），
// 再逐页调用 tesseract 识别。两者都是外部二进制，单页失败不中断整体。
type OCRPDFExtractor struct {
	pdftoppmPath  string
	tesseractPath string
	dpi           int
	language      string
	maxPages      int
	logger        *log.Logger
}

// OCROption 配置选项
type OCROption func(*OCRPDFExtractor)

// WithOCRLogger 配置自定义日志记录器
func WithOCRLogger(logger *log.Logger) OCROption {
	return func(e *OCRPDFExtractor) {
		e.logger = logger
	}
}

var _ PDFExtractor = (*OCRPDFExtractor)(nil)

// NewOCRPDFExtractor 创建OCR提取器
func NewOCRPDFExtractor(cfg *config.OCRConfig, options ...OCROption) *OCRPDFExtractor {
	extractor := &OCRPDFExtractor{
		pdftoppmPath:  cfg.PdftoppmPath,
		tesseractPath: cfg.TesseractPath,
		dpi:           cfg.DPI,
		language:      cfg.Language,
		maxPages:      cfg.MaxPages,
		logger:        log.New(os.Stderr, "[OCR] ", log.LstdFlags),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// Method 实现PDFExtractor接口
func (e *OCRPDFExtractor) Method() types.ExtractionMethod {
	return types.MethodOCR
}

// ExtractFromFile 从PDF文件提取文本
func (e *OCRPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("读取PDF文件失败 %s: %w", filePath, err)
	}
	return e.ExtractTextFromBytes(ctx, data, filePath, nil)
}

// ExtractTextFromReader 从io.Reader提取文本
func (e *OCRPDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取PDF内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri, options)
}

// ExtractTextFromBytes 渲染并识别每一页，页与页之间用换行符分隔
func (e *OCRPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	startTime := time.Now()
	e.logger.Printf("开始OCR提取 (URI: %s, DPI: %d)", uri, e.dpi)

	tmpDir, err := os.MkdirTemp("", "resume-ocr-*")
	if err != nil {
		return "", nil, fmt.Errorf("创建OCR临时目录失败: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	images, err := e.renderPages(ctx, data, tmpDir)
	if err != nil {
		return "", nil, err
	}
	if len(images) == 0 {
		return "", nil, fmt.Errorf("pdftoppm 未渲染出任何页面 (URI %s)", uri)
	}

	if e.maxPages > 0 && len(images) > e.maxPages {
		e.logger.Printf("页数 %d 超出OCR上限，仅处理前 %d 页", len(images), e.maxPages)
		images = images[:e.maxPages]
	}

	var sb strings.Builder
	recognized := 0
	for i, imgPath := range images {
		pageText, err := e.recognizePage(ctx, imgPath)
		if err != nil {
			// 单页失败记录后继续
			e.logger.Printf("OCR第 %d 页失败: %v", i+1, err)
			continue
		}
		sb.WriteString(pageText)
		if i < len(images)-1 {
			sb.WriteString("\n")
		}
		recognized++
		e.logger.Printf("OCR第 %d 页: %d 个字符", i+1, len(pageText))
	}

	text := sb.String()
	metadata := map[string]interface{}{
		"source_file_path":       uri,
		"page_count":             len(images),
		"recognized_pages":       recognized,
		"dpi":                    e.dpi,
		"text_length":            len(text),
		"processing_duration_ms": time.Since(startTime).Milliseconds(),
	}

	e.logger.Printf("OCR提取完成: %d/%d 页, %d 个字符 (用时 %.2f秒)",
		recognized, len(images), len(text), time.Since(startTime).Seconds())
	return text, metadata, nil
}

// renderPages 调用 pdftoppm 将PDF按页渲染成PNG，返回按页码排序的文件列表
func (e *OCRPDFExtractor) renderPages(ctx context.Context, data []byte, tmpDir string) ([]string, error) {
	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", fmt.Sprintf("%d", e.dpi), "-png"}
	if e.maxPages > 0 {
		args = append(args, "-f", "1", "-l", fmt.Sprintf("%d", e.maxPages))
	}
	args = append(args, "-", prefix)

	cmd := exec.CommandContext(ctx, e.pdftoppmPath, args...)
	cmd.Stdin = strings.NewReader(string(data))
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm 渲染失败: %w (%s)", err, strings.TrimSpace(string(out)))
	}

	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("枚举渲染结果失败: %w", err)
	}
	// pdftoppm 的页码是零填充的，字典序即页序
	sort.Strings(images)
	return images, nil
}

// recognizePage 调用 tesseract 识别单页图片
func (e *OCRPDFExtractor) recognizePage(ctx context.Context, imgPath string) (string, error) {
	// "stdout" 让tesseract把结果写到标准输出而不是文件
	cmd := exec.CommandContext(ctx, e.tesseractPath, imgPath, "stdout", "-l", e.language)
	var out strings.Builder
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract 识别失败: %w", err)
	}
	return out.String(), nil
}
