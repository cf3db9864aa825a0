package parser

import (
	"context"
	"errors"
	"io"

	"smart-resume-go/internal/types"
)

// ErrExtractionFailed 所有提取方法（包括OCR）都未能产出可用文本。
// 这是流水线中唯一会中止请求的错误，调用方应向用户返回"无法读取PDF"而不是笼统的500。
var ErrExtractionFailed = errors.New("无法从PDF中提取文本")

// PDFExtractor 单个PDF文本提取策略的统一接口。
// 策略自身不做质量判断，充分性检查由提取链统一负责。
type PDFExtractor interface {
	// Method 返回该策略的提取方法标识，用于结果溯源
	Method() types.ExtractionMethod

	// ExtractFromFile 从PDF文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从io.Reader提取文本和元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error)
}
