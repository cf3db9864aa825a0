package extractor

import (
	"strings"
	"unicode/utf8"
)

// SkillEntry 技能词典条目：规范名称 + 识别它的表面形式集合。
// 规范名称是词典定义的常量，绝不从原始文本派生。
type SkillEntry struct {
	Canonical string
	Patterns  []string // 小写的字面子串，按整词/整短语语义匹配
}

// Taxonomy 技能词典，进程级只读配置，启动时构造一次后不再修改。
// 条目顺序即 ExtractSkills 的输出顺序。
type Taxonomy []SkillEntry

// DefaultSkillTaxonomy 默认技能词典
func DefaultSkillTaxonomy() Taxonomy {
	return Taxonomy{
		{"Python", []string{"python", "py", "python3"}},
		{"JavaScript", []string{"javascript", "js", "es6"}},
		{"TypeScript", []string{"typescript", "ts"}},
		{"Java", []string{"java", "j2ee", "jdk"}},
		{"C++", []string{"c++", "cpp", "c plus plus"}},
		{"C#", []string{"c#", "csharp", "c sharp"}},
		{"PHP", []string{"php"}},
		{"Ruby", []string{"ruby"}},
		{"Go", []string{"golang", "go"}},
		{"Rust", []string{"rust"}},
		{"Swift", []string{"swift"}},
		{"Kotlin", []string{"kotlin"}},
		{"HTML", []string{"html", "html5"}},
		{"CSS", []string{"css", "css3"}},
		{"SCSS", []string{"scss", "sass"}},
		{"React", []string{"react", "reactjs", "react.js", "jsx"}},
		{"Angular", []string{"angular", "angularjs"}},
		{"Vue", []string{"vue", "vuejs", "vue.js"}},
		{"Next.js", []string{"next.js", "nextjs"}},
		{"Node.js", []string{"node.js", "nodejs", "npm"}},
		{"Express", []string{"express", "expressjs"}},
		{"Django", []string{"django", "django rest"}},
		{"Flask", []string{"flask"}},
		{"FastAPI", []string{"fastapi"}},
		{"Spring", []string{"spring", "spring boot"}},
		{"ASP.NET", []string{"asp.net", ".net"}},
		{"Laravel", []string{"laravel"}},
		{"REST API", []string{"rest api", "restful", "rest"}},
		{"GraphQL", []string{"graphql"}},
		{"SQL", []string{"sql"}},
		{"MySQL", []string{"mysql"}},
		{"PostgreSQL", []string{"postgresql", "postgres", "psql"}},
		{"MongoDB", []string{"mongodb", "mongo"}},
		{"Firebase", []string{"firebase"}},
		{"Redis", []string{"redis"}},
		{"Elasticsearch", []string{"elasticsearch"}},
		{"Docker", []string{"docker"}},
		{"Kubernetes", []string{"kubernetes", "k8s"}},
		{"AWS", []string{"aws", "amazon web services"}},
		{"Azure", []string{"azure", "microsoft azure"}},
		{"GCP", []string{"gcp", "google cloud"}},
		{"Git", []string{"git", "github", "gitlab", "bitbucket"}},
		{"Jenkins", []string{"jenkins"}},
		{"Linux", []string{"linux", "ubuntu", "centos"}},
		{"Windows", []string{"windows"}},
		{"Machine Learning", []string{"machine learning", "ml"}},
		{"Deep Learning", []string{"deep learning"}},
		{"TensorFlow", []string{"tensorflow"}},
		{"PyTorch", []string{"pytorch"}},
		{"Keras", []string{"keras"}},
		{"Pandas", []string{"pandas"}},
		{"NumPy", []string{"numpy"}},
		{"Scikit-learn", []string{"scikit-learn", "sklearn"}},
		{"Data Analysis", []string{"data analysis", "data analytics"}},
		{"Data Science", []string{"data science"}},
		{"Tableau", []string{"tableau"}},
		{"Power BI", []string{"power bi", "powerbi"}},
		{"Figma", []string{"figma"}},
		{"Adobe XD", []string{"adobe xd"}},
		{"Sketch", []string{"sketch"}},
		{"Agile", []string{"agile"}},
		{"Scrum", []string{"scrum"}},
		{"Kanban", []string{"kanban"}},
		{"Jira", []string{"jira"}},
		{"Testing", []string{"testing", "test automation", "unit testing"}},
		{"Jest", []string{"jest"}},
		{"Pytest", []string{"pytest"}},
		{"Selenium", []string{"selenium"}},
		{"iOS", []string{"ios"}},
		{"Android", []string{"android"}},
		{"Flutter", []string{"flutter"}},
		{"React Native", []string{"react native", "react-native"}},
		{"Microservices", []string{"microservices"}},
		{"Design Patterns", []string{"design patterns"}},
		{"OOP", []string{"oop", "object-oriented"}},
		{"System Design", []string{"system design"}},
		{"Database Design", []string{"database design"}},
		{"DevOps", []string{"devops"}},
		{"CI/CD", []string{"ci/cd", "cicd", "continuous integration"}},
		{"Webpack", []string{"webpack"}},
		{"Redux", []string{"redux"}},
		{"JSON", []string{"json"}},
		{"XML", []string{"xml"}},
		{"YAML", []string{"yaml"}},
		{"Communication", []string{"communication", "presentation", "leadership"}},
		{"Problem Solving", []string{"problem solving", "problem-solving"}},
		{"Project Management", []string{"project management"}},
	}
}

// ContainsWholeWord 判断 phrase 是否作为整词/整短语出现在 text 中，
// 供本包及分类、岗位匹配等下游词表匹配复用。
// 边界定义：phrase 两侧都不能紧邻字母、数字或下划线。
// 这保证了 "java" 不会命中 "javascript"，而 "c++"、"node.js" 这类
// 含非单词字符的模式也能正确匹配（正则 \b 对它们是失效的）。
func ContainsWholeWord(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for from := 0; from+len(phrase) <= len(text); {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(phrase)

		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		from = start + 1
	}
	return false
}

// isWordByte 单字节的单词字符判定；多字节UTF-8一律视为单词字符（保守处理）
func isWordByte(b byte) bool {
	if b >= utf8.RuneSelf {
		return true
	}
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
