package analyzer

import "smart-resume-go/internal/types"

// 学历层级加分，层级越高分越高
var educationPoints = map[string]int{
	"PhD":               15,
	"Master's Degree":   13,
	"Bachelor's Degree": 12,
	"Diploma":           10,
	"Certificate":       9,
	"Associate Degree":  8,
}

// computeScore 启发式适配度打分，非概率值。各信号独立加分后钳制到 [0,100]：
// 每个信号单独满足单调性（加技能永不减分，页数超过2不再加分）。
// 满分构成：邮箱10 + 电话10 + 技能35 + 页数10 + 学历15 + 等级12 + 姓名5 + 广度3 = 100。
func computeScore(p *types.ResumeProfile, diversity int) int {
	score := 0

	if p.Contact.Email != types.ContactNotFound && p.Contact.Email != "" {
		score += 10
	}
	if p.Contact.Phone != types.ContactNotFound && p.Contact.Phone != "" {
		score += 10
	}

	// 技能数量分档，递增但边际递减
	switch n := len(p.Skills); {
	case n >= 10:
		score += 35
	case n >= 6:
		score += 25
	case n >= 3:
		score += 15
	case n > 0:
		score += 8
	}

	// 1-2页为佳，更长的简历只拿半额
	if p.Pages >= 1 && p.Pages <= 2 {
		score += 10
	} else if p.Pages > 2 {
		score += 5
	}

	// 只按最高学历（列表首位）加分，多个学位不叠加
	if len(p.Education) > 0 {
		score += educationPoints[p.Education[0]]
	}

	switch determineLevel(len(p.Skills), diversity) {
	case types.LevelExpert:
		score += 12
	case types.LevelExperienced:
		score += 10
	case types.LevelIntermediate:
		score += 7
	}

	if p.Name != types.NameUnknown && p.Name != "" {
		score += 5
	}
	if diversity >= 3 {
		score += 3
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
