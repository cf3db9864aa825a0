package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"smart-resume-go/internal/types"
)

// 联系方式相关正则，包级编译一次
var (
	emailPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		regexp.MustCompile(`[A-Za-z0-9._%+-]+\s*(?:\[at\]|\(at\))\s*[A-Za-z0-9.-]+\s*(?:\[dot\]|\(dot\))\s*[A-Za-z]{2,}`),
	}

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+\d{1,3}[-.\s]?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}`),
		regexp.MustCompile(`\(\d{3}\)[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\d{3,4}[-.\s]?\d{3,4}[-.\s]?\d{3,4}`),
		regexp.MustCompile(`\b\d{10,12}\b`),
	}

	nonDigitRe = regexp.MustCompile(`\D`)

	// 姓名候选行中不允许出现的标点
	nameBadPunctRe = regexp.MustCompile(`[#$%^&*+=<>{}\[\]\\|:;,.!?@/0-9]`)
)

// 姓名行扫描时直接跳过的低信息词
var nameSkipWords = map[string]struct{}{
	"resume": {}, "curriculum": {}, "vitae": {}, "cv": {}, "profile": {},
	"summary": {}, "objective": {}, "contact": {}, "about": {}, "portfolio": {},
	"email": {}, "phone": {}, "address": {}, "experience": {}, "education": {},
	"skills": {}, "projects": {}, "name": {},
}

const (
	nameScanMaxLines = 25
	nameMaxLineLen   = 80
)

// ExtractEmail 提取邮箱地址，找不到返回 "N/A"
func (e *FieldExtractor) ExtractEmail(text string) string {
	for _, re := range emailPatterns {
		if m := re.FindString(text); m != "" {
			return strings.ToLower(strings.TrimSpace(m))
		}
	}
	return types.ContactNotFound
}

// ExtractPhone 提取电话号码。候选串剔除非数字后位数需落在 [10,15]，
// 避免把邮编、年份区间误判成号码。返回原文形式（仅去首尾空白）。
func (e *FieldExtractor) ExtractPhone(text string) string {
	for _, re := range phonePatterns {
		for _, m := range re.FindAllString(text, -1) {
			digits := nonDigitRe.ReplaceAllString(m, "")
			if len(digits) >= 10 && len(digits) <= 15 {
				return strings.TrimSpace(m)
			}
		}
	}
	return types.ContactNotFound
}

// ExtractName 从文本头部扫描候选姓名行。逐行应用启发式过滤，
// 第一条全部通过的行即为姓名；扫描完仍无结果返回 "Unknown"。
func (e *FieldExtractor) ExtractName(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > nameScanMaxLines {
		lines = lines[:nameScanMaxLines]
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if !isNameCandidate(line) {
			continue
		}
		return titleCaseName(line)
	}
	return types.NameUnknown
}

func isNameCandidate(line string) bool {
	if len(line) < 2 || len(line) > nameMaxLineLen {
		return false
	}
	lower := strings.ToLower(line)
	if strings.Contains(lower, "@") || strings.Contains(lower, "http") ||
		strings.Contains(lower, "www.") || strings.Contains(lower, ".com") ||
		strings.Contains(lower, "linkedin") || strings.Contains(lower, "github") {
		return false
	}
	if nameBadPunctRe.MatchString(line) {
		return false
	}

	words := strings.Fields(line)
	if len(words) < 1 || len(words) > 5 {
		return false
	}

	capitalized := 0
	for _, w := range words {
		if _, skip := nameSkipWords[strings.ToLower(w)]; skip {
			return false
		}
		if !isNameWord(w) {
			return false
		}
		r := []rune(w)[0]
		if unicode.IsUpper(r) {
			capitalized++
		}
	}

	// 全大写行（如 "JANE SMITH"）或至少半数词首字母大写
	if line == strings.ToUpper(line) {
		return true
	}
	return capitalized*2 >= len(words)
}

// isNameWord 姓名词只允许字母及连接符（O'Brien、Jean-Luc）
func isNameWord(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) && r != '\'' && r != '-' {
			return false
		}
	}
	return len(w) > 0
}

// titleCaseName 规范化为首字母大写形式，保持连字符段独立处理
func titleCaseName(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		parts := strings.Split(w, "-")
		for j, p := range parts {
			if p == "" {
				continue
			}
			r := []rune(p)
			r[0] = unicode.ToUpper(r[0])
			parts[j] = string(r)
		}
		words[i] = strings.Join(parts, "-")
	}
	return strings.Join(words, " ")
}
