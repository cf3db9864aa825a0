package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smart-resume-go/internal/config"
	"smart-resume-go/internal/logger"
	"smart-resume-go/internal/types"
)

// ExtractionChain 按优先级驱动多个提取策略的回退链。
//
// 简历由五花八门的工具生成（Word导出、LaTeX、扫描件、设计工具），没有任何单一
// 提取库能覆盖所有情况。链的策略是：依次尝试各数字提取方法，每个方法的产出都要
// 通过统一的充分性检查（最小字符数）；全部未达标时才调用OCR——这是扫描件的信号。
//
// 策略内部的错误和panic由链统一捕获并记录，绝不中断后续方法的尝试，
// 这让每个策略保持简单且可独立测试。
type ExtractionChain struct {
	digital []PDFExtractor // 数字提取策略，按优先级排序
	ocr     PDFExtractor   // OCR策略，可为nil（未启用时）

	minChars    int // 数字提取的充分性阈值
	ocrMinChars int // OCR及兜底结果的接受阈值

	perMethodTimeout time.Duration
}

// NewExtractionChain 创建提取链。digital的先后顺序即尝试顺序。
func NewExtractionChain(cfg *config.ExtractionConfig, digital []PDFExtractor, ocr PDFExtractor) *ExtractionChain {
	minChars := cfg.MinChars
	if minChars <= 0 {
		minChars = 100
	}
	ocrMinChars := cfg.OCRMinChars
	if ocrMinChars <= 0 {
		ocrMinChars = 50
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &ExtractionChain{
		digital:          digital,
		ocr:              ocr,
		minChars:         minChars,
		ocrMinChars:      ocrMinChars,
		perMethodTimeout: timeout,
	}
}

// Sufficient 判断提取结果是否达到充分性阈值
func (c *ExtractionChain) Sufficient(text string) bool {
	return len(strings.TrimSpace(text)) >= c.minChars
}

// Extract 对PDF字节执行完整的回退链，返回第一个达标的提取结果。
// 全部方法（含OCR）失败时返回 ErrExtractionFailed。
func (c *ExtractionChain) Extract(ctx context.Context, data []byte, uri string) (*types.ExtractedText, error) {
	pages := CountPages(data)

	// 记录数字提取的最好结果，OCR也失败时作为最后的兜底
	var bestText string
	var bestMethod types.ExtractionMethod

	for _, strategy := range c.digital {
		text, err := c.runStrategy(ctx, strategy, data, uri)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("method", string(strategy.Method())).
				Str("uri", uri).
				Msg("提取方法失败，尝试下一个")
			continue
		}

		if c.Sufficient(text) {
			logger.Info().
				Str("method", string(strategy.Method())).
				Int("chars", len(text)).
				Msg("文本提取成功")
			return newExtractedText(text, strategy.Method(), pages), nil
		}

		logger.Debug().
			Str("method", string(strategy.Method())).
			Int("chars", len(strings.TrimSpace(text))).
			Int("min_chars", c.minChars).
			Msg("提取产出低于充分性阈值")

		if len(strings.TrimSpace(text)) > len(strings.TrimSpace(bestText)) {
			bestText = text
			bestMethod = strategy.Method()
		}
	}

	// 所有数字方法都未达标，说明很可能是扫描件，尝试OCR
	if c.ocr != nil {
		logger.Warn().Str("uri", uri).Msg("数字提取全部未达标，尝试OCR")
		text, err := c.runStrategy(ctx, c.ocr, data, uri)
		if err != nil {
			logger.Error().Err(err).Str("uri", uri).Msg("OCR提取失败")
		} else if len(strings.TrimSpace(text)) >= c.ocrMinChars {
			return newExtractedText(text, types.MethodOCR, pages), nil
		}
	}

	// OCR不可用或失败时，接受数字提取的最好结果（若尚可一用）
	if len(strings.TrimSpace(bestText)) >= c.ocrMinChars {
		logger.Warn().
			Str("method", string(bestMethod)).
			Int("chars", len(strings.TrimSpace(bestText))).
			Msg("所有方法均未达标，回退到数字提取的最好结果")
		return newExtractedText(bestText, bestMethod, pages), nil
	}

	return nil, fmt.Errorf("%w (URI %s)", ErrExtractionFailed, uri)
}

// runStrategy 执行单个策略，统一负责超时控制和panic隔离
func (c *ExtractionChain) runStrategy(ctx context.Context, strategy PDFExtractor, data []byte, uri string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("提取策略 %s 发生panic: %v", strategy.Method(), r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.perMethodTimeout)
	defer cancel()

	text, _, err = strategy.ExtractTextFromBytes(ctx, data, uri, nil)
	return text, err
}

func newExtractedText(text string, method types.ExtractionMethod, pages int) *types.ExtractedText {
	return &types.ExtractedText{
		Text:   text,
		Method: method,
		Pages:  pages,
		Chars:  len(text),
		Words:  len(strings.Fields(text)),
	}
}
