package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-resume-go/internal/types"
)

const sampleResume = `John Michael Smith
Senior Software Engineer

Email: John.Doe@Example.com
Phone: +1-415-555-0100

Summary
8 years of experience building web applications with React, Node.js and TypeScript.
Strong background in PostgreSQL, Docker and AWS.

Education
Bachelor of Technology in Computer Science
`

func TestExtractEmail(t *testing.T) {
	e := NewFieldExtractor()

	assert.Equal(t, "john.doe@example.com", e.ExtractEmail(sampleResume))
	assert.Equal(t, types.ContactNotFound, e.ExtractEmail("no contact details here"))
}

func TestExtractEmailObfuscated(t *testing.T) {
	e := NewFieldExtractor()

	got := e.ExtractEmail("reach me at jane [at] example [dot] com")
	assert.NotEqual(t, types.ContactNotFound, got)
	assert.Contains(t, got, "jane")
}

func TestExtractPhone(t *testing.T) {
	e := NewFieldExtractor()

	// 原文形式返回，11位数字落在 [10,15] 区间
	assert.Equal(t, "+1-415-555-0100", e.ExtractPhone(sampleResume))
	assert.Equal(t, "(415) 555-0100", e.ExtractPhone("call (415) 555-0100 now"))
}

func TestExtractPhoneRejectsShortDigitRuns(t *testing.T) {
	e := NewFieldExtractor()

	// 年份区间、邮编等数字串不应被当作电话
	assert.Equal(t, types.ContactNotFound, e.ExtractPhone("worked there 2019 - 2021, zip 94105"))
}

func TestExtractName(t *testing.T) {
	e := NewFieldExtractor()

	assert.Equal(t, "John Michael Smith", e.ExtractName(sampleResume))
}

func TestExtractNameAllCaps(t *testing.T) {
	e := NewFieldExtractor()

	assert.Equal(t, "Jane Smith", e.ExtractName("JANE SMITH\nProduct Designer"))
}

func TestExtractNameUnknown(t *testing.T) {
	e := NewFieldExtractor()

	// 全小写行不满足首字母大写启发式
	assert.Equal(t, types.NameUnknown, e.ExtractName("john smith\nsome text"))
	assert.Equal(t, types.NameUnknown, e.ExtractName(""))
	// 技能行含标点和数字，不应被误判为姓名
	assert.Equal(t, types.NameUnknown, e.ExtractName("Python, SQL, 5 years"))
}

func TestExtractNameSkipsHeaderWords(t *testing.T) {
	e := NewFieldExtractor()

	assert.Equal(t, "Alice Wong", e.ExtractName("Resume\nAlice Wong\nEngineer"))
}

func TestExtractSkillsWholeWordSemantics(t *testing.T) {
	e := NewFieldExtractor()

	// "javascript" 不应连带命中 "java"
	skills := e.ExtractSkills("Experienced in JavaScript development")
	assert.Contains(t, skills, "JavaScript")
	assert.NotContains(t, skills, "Java")

	skills = e.ExtractSkills("Core Java and J2EE background")
	assert.Contains(t, skills, "Java")
}

func TestExtractSkillsNonWordCharPatterns(t *testing.T) {
	e := NewFieldExtractor()

	skills := e.ExtractSkills("proficient in c++, c# and node.js")
	assert.Contains(t, skills, "C++")
	assert.Contains(t, skills, "C#")
	assert.Contains(t, skills, "Node.js")
}

func TestExtractSkillsIdempotentAndOrdered(t *testing.T) {
	e := NewFieldExtractor()

	first := e.ExtractSkills(sampleResume)
	second := e.ExtractSkills(sampleResume)
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)

	// 输出顺序由词典决定：TypeScript 条目先于 React
	assert.Contains(t, first, "TypeScript")
	assert.Contains(t, first, "React")
	tsIdx, reactIdx := -1, -1
	for i, s := range first {
		switch s {
		case "TypeScript":
			tsIdx = i
		case "React":
			reactIdx = i
		}
	}
	assert.Less(t, tsIdx, reactIdx)
}

func TestExtractSkillsAtMostOnce(t *testing.T) {
	e := NewFieldExtractor()

	skills := e.ExtractSkills("python python3 py and more python")
	count := 0
	for _, s := range skills {
		if s == "Python" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExtractEducationTiers(t *testing.T) {
	e := NewFieldExtractor()

	cases := []struct {
		text string
		want []string
	}{
		{"completed Ph.D in Computer Science", []string{"PhD"}},
		{"Master of Science, MIT", []string{"Master's Degree"}},
		{"B.Tech in Electronics", []string{"Bachelor's Degree"}},
		{"Polytechnic diploma holder", []string{"Diploma"}},
		{"AWS certified architect", []string{"Certificate"}},
		{"no schooling mentioned", []string{types.EducationNotSpecified}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, e.ExtractEducation(c.text), "text=%q", c.text)
	}
}

func TestExtractEducationCollectsAllDegrees(t *testing.T) {
	e := NewFieldExtractor()

	// 列出多个学位时全部收集，按层级从高到低排列
	got := e.ExtractEducation("Bachelor of Technology, then Master of Science, plus an AWS certificate")
	assert.Equal(t, []string{"Master's Degree", "Bachelor's Degree", "Certificate"}, got)
}

func TestExtractEducationDedupesWithinTier(t *testing.T) {
	e := NewFieldExtractor()

	// 同一层级多次命中只记一次
	got := e.ExtractEducation("B.Tech in ECE and a bachelors in mathematics")
	assert.Equal(t, []string{"Bachelor's Degree"}, got)
}

func TestExtractExperienceLevelYears(t *testing.T) {
	e := NewFieldExtractor()

	assert.Equal(t, types.LevelExperienced, e.ExtractExperienceLevel("over 10 years of experience"))
	assert.Equal(t, types.LevelIntermediate, e.ExtractExperienceLevel("4+ yrs in backend work"))
	assert.Equal(t, types.LevelFresher, e.ExtractExperienceLevel("1 year of experience"))
}

func TestExtractExperienceLevelKeywords(t *testing.T) {
	e := NewFieldExtractor()

	assert.Equal(t, types.LevelExperienced, e.ExtractExperienceLevel("Principal engineer at Acme"))
	assert.Equal(t, types.LevelIntermediate, e.ExtractExperienceLevel("mid-level developer"))
	assert.Equal(t, types.LevelFresher, e.ExtractExperienceLevel("recent graduate seeking roles"))
	assert.Equal(t, types.LevelFresher, e.ExtractExperienceLevel("plain text with no signals"))
}

func TestExtractExperienceYearsBeatKeywords(t *testing.T) {
	e := NewFieldExtractor()

	// 显式年限优先于头衔关键词
	got := e.ExtractExperienceLevel("junior developer with 9 years of experience")
	assert.Equal(t, types.LevelExperienced, got)
}

func TestExtractProfile(t *testing.T) {
	e := NewFieldExtractor()

	p := e.ExtractProfile(sampleResume, 2)
	require.NotNil(t, p)
	assert.Equal(t, "John Michael Smith", p.Name)
	assert.Equal(t, "john.doe@example.com", p.Contact.Email)
	assert.Equal(t, "+1-415-555-0100", p.Contact.Phone)
	assert.Equal(t, types.LevelExperienced, p.ExperienceLevel)
	assert.Equal(t, []string{"Bachelor's Degree"}, p.Education)
	assert.Equal(t, 2, p.Pages)
	assert.NotEmpty(t, p.Skills)
	assert.Positive(t, p.WordCount)
}

func TestExtractProfileEmptyText(t *testing.T) {
	e := NewFieldExtractor()

	p := e.ExtractProfile("", 0)
	assert.Equal(t, types.NameUnknown, p.Name)
	assert.Equal(t, types.ContactNotFound, p.Contact.Email)
	assert.Equal(t, types.ContactNotFound, p.Contact.Phone)
	assert.Empty(t, p.Skills)
	assert.Equal(t, []string{types.EducationNotSpecified}, p.Education)
	assert.Equal(t, types.LevelFresher, p.ExperienceLevel)
	assert.Equal(t, 1, p.Pages)
}
