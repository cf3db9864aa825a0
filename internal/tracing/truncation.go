package tracing

import "strings"

const (
	// MaxSQLLength SQL语句在追踪属性中的最大长度
	MaxSQLLength = 500
	// MaxResumeLength 简历文本片段在追踪属性中的最大长度
	MaxResumeLength = 150
)

// 这些字段的值一律掩码后再写入追踪属性
var maskPIILookup = map[string]bool{
	"email":    true,
	"phone":    true,
	"name":     true,
	"password": true,
	"token":    true,
	"secret":   true,
}

// SafeAttributeValue 处理追踪属性值：敏感字段掩码，超长值截断。
// 简历内容含大量个人信息，任何候选人数据进入span前都应经过这里。
func SafeAttributeValue(name, value string, maxLength int) string {
	lowerName := strings.ToLower(name)
	for keyword := range maskPIILookup {
		if strings.Contains(lowerName, keyword) {
			return MaskPII(value)
		}
	}
	return TruncateString(value, maxLength)
}

// MaskPII 掩码个人敏感信息，保留首尾便于人工比对
func MaskPII(value string) string {
	if value == "" {
		return ""
	}

	runes := []rune(value)
	length := len(runes)
	switch {
	case length <= 1:
		return "*"
	case length == 2:
		return string(runes[0:1]) + "*"
	case length <= 4:
		return string(runes[0:1]) + strings.Repeat("*", length-2) + string(runes[length-1:])
	default:
		return string(runes[0:2]) + strings.Repeat("*", length-4) + string(runes[length-2:])
	}
}

// TruncateString 截断字符串，保留首尾并以省略号连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	half := (maxLength - 3) / 2
	if half < 1 {
		half = 1
	}
	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}

// SafeSQL 截断过长的SQL语句
func SafeSQL(sql string) string {
	return TruncateString(sql, MaxSQLLength)
}

// SafeResumeContent 截断简历文本片段
func SafeResumeContent(content string) string {
	return TruncateString(content, MaxResumeLength)
}
