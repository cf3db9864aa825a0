package extractor

import (
	"strings"

	"smart-resume-go/internal/types"
)

// degreeTier 学历层级条目：展示名 + 识别模式。顺序即优先级，
// 结果列表按此顺序排列，最高学历在首位。
type degreeTier struct {
	Display  string
	Patterns []string
}

var degreeTiers = []degreeTier{
	{"PhD", []string{"phd", "ph.d", "doctorate", "doctoral"}},
	{"Master's Degree", []string{"master", "masters", "m.tech", "mtech", "m.sc", "msc", "mca", "mba", "m.a", "m.s", "postgraduate"}},
	{"Bachelor's Degree", []string{"bachelor", "bachelors", "b.tech", "btech", "b.sc", "bsc", "bca", "b.e", "b.a", "b.s", "undergraduate degree"}},
	{"Diploma", []string{"diploma", "polytechnic"}},
	{"Certificate", []string{"certificate", "certification", "certified"}},
	{"Associate Degree", []string{"associate degree", "associates degree", "a.a.s"}},
}

// ExtractEducation 收集文本中出现的全部学历层级（一份简历可以列出多个学位），
// 按层级从高到低排列，每级至多出现一次；无命中返回 ["Not specified"]
func (e *FieldExtractor) ExtractEducation(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, tier := range degreeTiers {
		for _, p := range tier.Patterns {
			if ContainsWholeWord(lower, p) {
				found = append(found, tier.Display)
				break
			}
		}
	}
	if len(found) == 0 {
		return []string{types.EducationNotSpecified}
	}
	return found
}
