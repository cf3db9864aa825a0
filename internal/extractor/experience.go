package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"smart-resume-go/internal/types"
)

var yearsOfExpRe = regexp.MustCompile(`(\d{1,2})\s*\+?\s*(?:years?|yrs?)\b`)

// 经验等级关键词，按 Experienced > Intermediate > Fresher 优先级检查
var (
	seniorKeywords = []string{
		"senior", "lead", "principal", "architect", "staff engineer",
		"director", "head of", "vp of", "manager",
	}
	midKeywords = []string{
		"mid-level", "mid level", "intermediate", "team lead",
	}
	juniorKeywords = []string{
		"fresher", "entry level", "entry-level", "junior", "trainee",
		"intern", "internship", "graduate", "recent graduate",
	}
)

// ExtractExperienceLevel 推断经验水平。显式年限（"N years"）优先于
// 头衔关键词；两者都没有时一律视为 Fresher。
func (e *FieldExtractor) ExtractExperienceLevel(text string) string {
	lower := strings.ToLower(text)

	// 取出现过的最大年限数
	maxYears := -1
	for _, m := range yearsOfExpRe.FindAllStringSubmatch(lower, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > maxYears {
			maxYears = n
		}
	}
	if maxYears >= 0 {
		switch {
		case maxYears >= 8:
			return types.LevelExperienced
		case maxYears >= 3:
			return types.LevelIntermediate
		default:
			return types.LevelFresher
		}
	}

	for _, kw := range seniorKeywords {
		if ContainsWholeWord(lower, kw) {
			return types.LevelExperienced
		}
	}
	for _, kw := range midKeywords {
		if ContainsWholeWord(lower, kw) {
			return types.LevelIntermediate
		}
	}
	for _, kw := range juniorKeywords {
		if ContainsWholeWord(lower, kw) {
			return types.LevelFresher
		}
	}
	return types.LevelFresher
}
