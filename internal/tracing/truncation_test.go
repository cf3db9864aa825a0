package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPII(t *testing.T) {
	assert.Equal(t, "*", MaskPII("a"))
	assert.Equal(t, "张*", MaskPII("张三"))
	assert.Equal(t, "王*明", MaskPII("王小明"))
	assert.Equal(t, "jo*************om", MaskPII("john@example.com"))
	assert.Equal(t, "", MaskPII(""))
}

func TestSafeAttributeValueMasksSensitiveFields(t *testing.T) {
	masked := SafeAttributeValue("candidate_email", "john@example.com", 200)
	assert.NotContains(t, masked, "john@example")

	plain := SafeAttributeValue("db.operation", "SELECT", 200)
	assert.Equal(t, "SELECT", plain)
}

func TestTruncateStringKeepsHeadAndTail(t *testing.T) {
	long := strings.Repeat("a", 100) + strings.Repeat("z", 100)
	got := TruncateString(long, 21)
	assert.Contains(t, got, "...")
	assert.True(t, strings.HasPrefix(got, "aaa"))
	assert.True(t, strings.HasSuffix(got, "zzz"))

	assert.Equal(t, "short", TruncateString("short", 21))
}

func TestSafeResumeContentTruncatesToPreviewLength(t *testing.T) {
	long := strings.Repeat("resume text ", 50)
	got := SafeResumeContent(long)
	assert.LessOrEqual(t, len([]rune(got)), MaxResumeLength)
	assert.Contains(t, got, "...")
}

func TestSafeSQLTruncatesLongStatements(t *testing.T) {
	sql := "SELECT * FROM resume_analyses WHERE " + strings.Repeat("field = 'x' AND ", 100) + "1=1"
	got := SafeSQL(sql)
	assert.LessOrEqual(t, len([]rune(got)), MaxSQLLength)
}
