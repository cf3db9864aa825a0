package parser

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-resume-go/internal/config"
	"smart-resume-go/internal/types"
)

// fakeExtractor 测试用的可编程提取策略
type fakeExtractor struct {
	method types.ExtractionMethod
	text   string
	err    error
	panics bool
	calls  int
}

func (f *fakeExtractor) Method() types.ExtractionMethod { return f.method }

func (f *fakeExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return f.ExtractTextFromBytes(ctx, nil, filePath, nil)
}

func (f *fakeExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	return f.ExtractTextFromBytes(ctx, nil, uri, options)
}

func (f *fakeExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	f.calls++
	if f.panics {
		panic("模拟策略崩溃")
	}
	return f.text, nil, f.err
}

func testChainConfig() *config.ExtractionConfig {
	return &config.ExtractionConfig{MinChars: 100, OCRMinChars: 50, TimeoutSeconds: 5}
}

// TestChainFirstSufficientWins 第一个达标的方法胜出，后续方法不再尝试
func TestChainFirstSufficientWins(t *testing.T) {
	goodText := strings.Repeat("resume content ", 20)
	first := &fakeExtractor{method: types.MethodLayout, text: goodText}
	second := &fakeExtractor{method: types.MethodStructural, text: goodText}
	ocr := &fakeExtractor{method: types.MethodOCR, text: goodText}

	chain := NewExtractionChain(testChainConfig(), []PDFExtractor{first, second}, ocr)
	result, err := chain.Extract(context.Background(), []byte("%PDF-"), "test.pdf")

	require.NoError(t, err)
	assert.Equal(t, types.MethodLayout, result.Method)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "第一个方法已达标，不应尝试第二个")
	assert.Equal(t, 0, ocr.calls, "数字提取已达标，不应触发OCR")
}

// TestChainFallsThroughOnFailure 前序方法失败或不达标时继续尝试后续方法
func TestChainFallsThroughOnFailure(t *testing.T) {
	goodText := strings.Repeat("digital text ", 20)
	failing := &fakeExtractor{method: types.MethodLayout, err: errors.New("tika不可达")}
	short := &fakeExtractor{method: types.MethodStructural, text: "too short"}
	good := &fakeExtractor{method: types.MethodBasic, text: goodText}

	chain := NewExtractionChain(testChainConfig(), []PDFExtractor{failing, short, good}, nil)
	result, err := chain.Extract(context.Background(), []byte("%PDF-"), "test.pdf")

	require.NoError(t, err)
	assert.Equal(t, types.MethodBasic, result.Method)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, short.calls)
}

// TestChainPanicIsolation 策略panic不应中断链，由驱动器捕获后继续
func TestChainPanicIsolation(t *testing.T) {
	goodText := strings.Repeat("stable text ", 20)
	crashing := &fakeExtractor{method: types.MethodLayout, panics: true}
	good := &fakeExtractor{method: types.MethodStructural, text: goodText}

	chain := NewExtractionChain(testChainConfig(), []PDFExtractor{crashing, good}, nil)
	result, err := chain.Extract(context.Background(), []byte("%PDF-"), "test.pdf")

	require.NoError(t, err)
	assert.Equal(t, types.MethodStructural, result.Method)
}

// TestChainOCROnlyWhenDigitalFails 数字文本≥阈值时绝不触发OCR；全部失败时才触发
func TestChainOCROnlyWhenDigitalFails(t *testing.T) {
	ocrText := strings.Repeat("scanned words ", 10)
	failing := &fakeExtractor{method: types.MethodStructural, err: errors.New("解析失败")}
	ocr := &fakeExtractor{method: types.MethodOCR, text: ocrText}

	chain := NewExtractionChain(testChainConfig(), []PDFExtractor{failing}, ocr)
	result, err := chain.Extract(context.Background(), []byte("%PDF-"), "scan.pdf")

	require.NoError(t, err)
	assert.Equal(t, types.MethodOCR, result.Method)
	assert.Equal(t, 1, ocr.calls)
}

// TestChainAllFail 所有方法（含OCR）都失败时返回 ErrExtractionFailed
func TestChainAllFail(t *testing.T) {
	failing := &fakeExtractor{method: types.MethodStructural, err: errors.New("解析失败")}
	ocrFailing := &fakeExtractor{method: types.MethodOCR, text: "x"}

	chain := NewExtractionChain(testChainConfig(), []PDFExtractor{failing}, ocrFailing)
	result, err := chain.Extract(context.Background(), []byte("not a pdf"), "bad.pdf")

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtractionFailed), "应返回可识别的提取失败错误")
}

// TestChainBestDigitalFallback OCR不可用时回退到数字提取的最好结果（若超过OCR接受阈值）
func TestChainBestDigitalFallback(t *testing.T) {
	// 60个字符：低于数字阈值100，但高于OCR接受阈值50
	partial := &fakeExtractor{method: types.MethodBasic, text: strings.Repeat("abcdef", 10)}

	chain := NewExtractionChain(testChainConfig(), []PDFExtractor{partial}, nil)
	result, err := chain.Extract(context.Background(), []byte("%PDF-"), "partial.pdf")

	require.NoError(t, err)
	assert.Equal(t, types.MethodBasic, result.Method)
	assert.Equal(t, 60, result.Chars)
}

// TestSufficiencyPredicate 充分性检查忽略首尾空白
func TestSufficiencyPredicate(t *testing.T) {
	chain := NewExtractionChain(testChainConfig(), nil, nil)

	assert.False(t, chain.Sufficient(""))
	assert.False(t, chain.Sufficient(strings.Repeat(" ", 200)))
	assert.False(t, chain.Sufficient(strings.Repeat("a", 99)))
	assert.True(t, chain.Sufficient(strings.Repeat("a", 100)))
}

// TestExtractedTextCounts 提取结果应带有字符数与词数元信息
func TestExtractedTextCounts(t *testing.T) {
	et := newExtractedText("hello world foo", types.MethodBasic, 2)
	assert.Equal(t, 15, et.Chars)
	assert.Equal(t, 3, et.Words)
	assert.Equal(t, 2, et.Pages)
}
