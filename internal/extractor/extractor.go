package extractor

import (
	"strings"

	"smart-resume-go/internal/types"
)

// FieldExtractor 简历字段提取器。持有编译好的正则与词典，
// 全部方法都是纯函数式的（只读共享状态），可并发使用。
type FieldExtractor struct {
	taxonomy Taxonomy
}

// Option FieldExtractor 的可选配置
type Option func(*FieldExtractor)

// WithTaxonomy 替换默认技能词典
func WithTaxonomy(t Taxonomy) Option {
	return func(e *FieldExtractor) {
		if len(t) > 0 {
			e.taxonomy = t
		}
	}
}

// NewFieldExtractor 创建字段提取器
func NewFieldExtractor(opts ...Option) *FieldExtractor {
	e := &FieldExtractor{
		taxonomy: DefaultSkillTaxonomy(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractProfile 对整份文本运行全部字段提取器，汇总为结构化画像。
// 任何字段缺失都以哨兵值表示，本方法不返回错误。
func (e *FieldExtractor) ExtractProfile(text string, pages int) *types.ResumeProfile {
	if pages < 1 {
		pages = 1
	}
	return &types.ResumeProfile{
		Name: e.ExtractName(text),
		Contact: types.ContactInfo{
			Email: e.ExtractEmail(text),
			Phone: e.ExtractPhone(text),
		},
		Skills:          e.ExtractSkills(text),
		Education:       e.ExtractEducation(text),
		ExperienceLevel: e.ExtractExperienceLevel(text),
		Pages:           pages,
		WordCount:       len(strings.Fields(text)),
	}
}
