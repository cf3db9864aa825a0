package extractor

import "strings"

// ExtractSkills 按词典顺序扫描文本，返回命中的规范技能名列表。
// 每项技能至多出现一次，输出顺序由词典条目顺序决定，与文本无关，
// 因此对同一文本重复调用结果恒等。
func (e *FieldExtractor) ExtractSkills(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0, 16)
	for _, entry := range e.taxonomy {
		for _, p := range entry.Patterns {
			if ContainsWholeWord(lower, p) {
				found = append(found, entry.Canonical)
				break
			}
		}
	}
	return found
}
