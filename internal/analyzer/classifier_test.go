package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-resume-go/internal/types"
)

func baseProfile() *types.ResumeProfile {
	return &types.ResumeProfile{
		Name:            types.NameUnknown,
		Contact:         types.ContactInfo{Email: types.ContactNotFound, Phone: types.ContactNotFound},
		Skills:          nil,
		Education:       []string{types.EducationNotSpecified},
		ExperienceLevel: types.LevelFresher,
		Pages:           1,
	}
}

func TestClassifyWebDevelopment(t *testing.T) {
	c := NewClassifier()
	p := baseProfile()
	p.Skills = []string{"React", "Node.js", "MongoDB", "JavaScript"}

	// 重复运行结果必须一致
	for i := 0; i < 3; i++ {
		r := c.Classify(p)
		assert.Equal(t, "Web Development", r.Field)
	}
}

func TestClassifyNoSkillsDefaults(t *testing.T) {
	c := NewClassifier()
	r := c.Classify(baseProfile())

	assert.Equal(t, types.FieldGeneralIT, r.Field)
	assert.Equal(t, types.LevelFresher, r.Level)
	assert.Equal(t, genericRecommendations, r.RecommendedSkills)
}

func TestClassifyTieBreakFirstDefinedFieldWins(t *testing.T) {
	c := NewClassifier()
	p := baseProfile()
	// "sql" 同时属于 Web 以外的多个领域关键词表，单独出现时平局
	p.Skills = []string{"SQL"}

	first := c.Classify(p).Field
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, c.Classify(p).Field)
	}
}

func TestDetermineLevelThresholds(t *testing.T) {
	assert.Equal(t, types.LevelFresher, determineLevel(0, 0))
	assert.Equal(t, types.LevelFresher, determineLevel(4, 1))
	assert.Equal(t, types.LevelIntermediate, determineLevel(5, 1))
	assert.Equal(t, types.LevelIntermediate, determineLevel(9, 2))
	assert.Equal(t, types.LevelExperienced, determineLevel(10, 2))
	assert.Equal(t, types.LevelExperienced, determineLevel(15, 2))
	assert.Equal(t, types.LevelExpert, determineLevel(15, 3))
}

func TestScoreDeterministicFloor(t *testing.T) {
	c := NewClassifier()
	// 无联系方式、零技能、无学历、未知姓名、1页：只有页数分档给分
	r := c.Classify(baseProfile())
	assert.Equal(t, 10, r.Score)
}

func TestScoreClampedToHundred(t *testing.T) {
	c := NewClassifier()
	p := baseProfile()
	p.Name = "Jane Smith"
	p.Contact = types.ContactInfo{Email: "jane@example.com", Phone: "+1-415-555-0100"}
	p.Education = []string{"PhD"}
	p.Pages = 2
	p.Skills = []string{
		"React", "Node.js", "JavaScript", "TypeScript", "Python",
		"Machine Learning", "Docker", "Kubernetes", "AWS", "SQL",
		"MongoDB", "Figma", "Agile", "Testing", "Linux", "Git",
	}

	r := c.Classify(p)
	assert.Equal(t, types.LevelExpert, r.Level)
	assert.LessOrEqual(t, r.Score, 100)
	assert.Equal(t, 100, r.Score)
}

func TestScoreMonotonicInSkills(t *testing.T) {
	c := NewClassifier()
	p := baseProfile()

	prev := c.Classify(p).Score
	additions := []string{
		"React", "Node.js", "JavaScript", "Python", "Docker",
		"AWS", "SQL", "MongoDB", "Kubernetes", "TypeScript",
		"Machine Learning", "Pandas", "Figma", "Agile", "Testing", "Git",
	}
	for _, s := range additions {
		p.Skills = append(p.Skills, s)
		cur := c.Classify(p).Score
		require.GreaterOrEqual(t, cur, prev, "adding %q lowered the score", s)
		prev = cur
	}
}

func TestScorePagePenalty(t *testing.T) {
	c := NewClassifier()
	short := baseProfile()
	short.Pages = 2
	long := baseProfile()
	long.Pages = 6

	// 超过2页后不再因页数得到更高分
	assert.Greater(t, c.Classify(short).Score, c.Classify(long).Score)
}

func TestScoreEducationUsesTopTierOnly(t *testing.T) {
	c := NewClassifier()
	single := baseProfile()
	single.Education = []string{"Master's Degree"}
	multi := baseProfile()
	multi.Education = []string{"Master's Degree", "Bachelor's Degree", "Certificate"}

	// 多个学位不叠加，只按最高层级加分
	assert.Equal(t, c.Classify(single).Score, c.Classify(multi).Score)
}

func TestScoreEducationTierOrdering(t *testing.T) {
	c := NewClassifier()
	tiers := []string{"Associate Degree", "Certificate", "Diploma", "Bachelor's Degree", "Master's Degree", "PhD"}

	prev := -1
	for _, tier := range tiers {
		p := baseProfile()
		p.Education = []string{tier}
		cur := c.Classify(p).Score
		require.Greater(t, cur, prev, "tier %q should outscore the previous tier", tier)
		prev = cur
	}
}
