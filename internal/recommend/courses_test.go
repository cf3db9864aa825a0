package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoursesByField(t *testing.T) {
	r := NewCourseRecommender()

	assert.Equal(t, webCourses, r.CoursesByField("Web Development"))
	assert.Equal(t, dataScienceCourses, r.CoursesByField("Data Science"))
	// 未知领域回退到通用目录
	assert.Equal(t, generalCourses, r.CoursesByField("Underwater Basket Weaving"))
}

func TestPersonalizedCoursesPrioritizesMissingSkills(t *testing.T) {
	r := NewCourseRecommender()

	courses := r.PersonalizedCourses(
		[]string{"React", "JavaScript"},
		"Web Development",
		[]string{"TypeScript", "GraphQL"},
	)
	require.NotEmpty(t, courses)
	assert.LessOrEqual(t, len(courses), defaultMaxCourses)
	// 缺失的 TypeScript 的课程应排在最前
	assert.Equal(t, "TypeScript Complete Course", courses[0].Name)
}

func TestPersonalizedCoursesSkipsOwnedSkills(t *testing.T) {
	r := NewCourseRecommender()

	courses := r.PersonalizedCourses(
		[]string{"TypeScript"},
		"Web Development",
		[]string{"TypeScript"},
	)
	require.NotEmpty(t, courses)
	// 已掌握的技能不应产出对应课程，直接进入领域目录续位
	assert.Equal(t, webCourses[0].Name, courses[0].Name)
}

func TestPersonalizedCoursesNoDuplicates(t *testing.T) {
	r := NewCourseRecommender()

	courses := r.PersonalizedCourses(nil, "Data Science", []string{"Machine Learning", "Python"})
	seen := make(map[string]struct{})
	for _, c := range courses {
		_, dup := seen[c.Link]
		require.False(t, dup, "duplicate course %q", c.Name)
		seen[c.Link] = struct{}{}
	}
}

func TestPersonalizedCoursesDeterministic(t *testing.T) {
	r := NewCourseRecommender()

	first := r.PersonalizedCourses([]string{"Python"}, "Data Science", []string{"MLOps", "Deep Learning"})
	second := r.PersonalizedCourses([]string{"Python"}, "Data Science", []string{"MLOps", "Deep Learning"})
	assert.Equal(t, first, second)
}

func TestPersonalizedCoursesCapped(t *testing.T) {
	r := NewCourseRecommender()

	courses := r.PersonalizedCourses(nil, "Web Development", []string{
		"React", "Node.js", "JavaScript", "TypeScript", "MongoDB", "SQL",
	})
	assert.Len(t, courses, defaultMaxCourses)
}
