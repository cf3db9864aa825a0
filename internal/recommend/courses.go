package recommend

import (
	"strings"

	"smart-resume-go/internal/types"
)

// 各职业领域的课程目录，进程级只读数据
var (
	dataScienceCourses = []types.Course{
		{Name: "Machine Learning Crash Course by Google", Link: "https://developers.google.com/machine-learning/crash-course"},
		{Name: "Machine Learning A-Z by Udemy", Link: "https://www.udemy.com/course/machinelearning/"},
		{Name: "Machine Learning by Andrew NG", Link: "https://www.coursera.org/learn/machine-learning"},
		{Name: "Data Scientist Master Program (IBM)", Link: "https://www.simplilearn.com/big-data-and-analytics/senior-data-scientist-masters-program-training"},
		{Name: "Data Science Foundations by LinkedIn", Link: "https://www.linkedin.com/learning/data-science-foundations-fundamentals-5"},
		{Name: "Data Scientist with Python", Link: "https://www.datacamp.com/tracks/data-scientist-with-python"},
		{Name: "Programming for Data Science with Python", Link: "https://www.udacity.com/course/programming-for-data-science-nanodegree--nd104"},
		{Name: "Introduction to Data Science", Link: "https://www.udacity.com/course/introduction-to-data-science--cd0017"},
	}

	webCourses = []types.Course{
		{Name: "Django Crash Course", Link: "https://youtu.be/e1IyzVyrLSU"},
		{Name: "Python and Django Full Stack Bootcamp", Link: "https://www.udemy.com/course/python-and-django-full-stack-web-developer-bootcamp"},
		{Name: "React Crash Course", Link: "https://youtu.be/Dorf8i6lCuk"},
		{Name: "ReactJS Project Development Training", Link: "https://www.dotnettricks.com/training/masters-program/reactjs-certification-training"},
		{Name: "Full Stack Web Developer - MEAN Stack", Link: "https://www.simplilearn.com/full-stack-web-developer-mean-stack-certification-training"},
		{Name: "Node.js and Express.js", Link: "https://youtu.be/Oe421EPjeBE"},
		{Name: "Flask: Develop Web Applications", Link: "https://www.educative.io/courses/flask-develop-web-applications-in-python"},
		{Name: "Full Stack Web Developer by Udacity", Link: "https://www.udacity.com/course/full-stack-web-developer-nanodegree--nd0044"},
	}

	mobileCourses = []types.Course{
		{Name: "Android Development for Beginners", Link: "https://youtu.be/fis26HvvDII"},
		{Name: "Android App Development Specialization", Link: "https://www.coursera.org/specializations/android-app-development"},
		{Name: "Become an Android Kotlin Developer", Link: "https://www.udacity.com/course/android-kotlin-developer-nanodegree--nd940"},
		{Name: "iOS & Swift Complete Bootcamp", Link: "https://www.udemy.com/course/ios-13-app-development-bootcamp/"},
		{Name: "Become an iOS Developer", Link: "https://www.udacity.com/course/ios-developer-nanodegree--nd003"},
		{Name: "The Complete Android Developer Course", Link: "https://www.udemy.com/course/complete-android-n-developer-course/"},
		{Name: "Flutter & Dart Complete Course", Link: "https://www.udemy.com/course/flutter-dart-the-complete-flutter-app-development-course/"},
		{Name: "Flutter App Development Course", Link: "https://youtu.be/rZLR5olMR64"},
	}

	uiuxCourses = []types.Course{
		{Name: "Google UX Design Professional Certificate", Link: "https://www.coursera.org/professional-certificates/google-ux-design"},
		{Name: "UI/UX Design Specialization", Link: "https://www.coursera.org/specializations/ui-ux-design"},
		{Name: "Complete App Design Course", Link: "https://www.udemy.com/course/the-complete-app-design-course-ux-and-ui-design/"},
		{Name: "UX & Web Design Master Course", Link: "https://www.udemy.com/course/ux-web-design-master-course-strategy-design-development/"},
		{Name: "DESIGN RULES: Principles for UI Design", Link: "https://www.udemy.com/course/design-rules/"},
		{Name: "Become a UX Designer by Udacity", Link: "https://www.udacity.com/course/ux-designer-nanodegree--nd578"},
	}

	devopsCourses = []types.Course{
		{Name: "Docker Mastery: Complete Toolset", Link: "https://www.udemy.com/course/docker-mastery/"},
		{Name: "Docker and Kubernetes Complete Guide", Link: "https://www.udemy.com/course/docker-and-kubernetes-the-complete-guide/"},
		{Name: "Kubernetes for Absolute Beginners", Link: "https://www.udemy.com/course/learn-kubernetes/"},
		{Name: "AWS Certified Solutions Architect", Link: "https://www.udemy.com/course/aws-certified-solutions-architect-associate-saa-c03/"},
		{Name: "AWS Cloud Practitioner Essentials", Link: "https://aws.amazon.com/training/digital/aws-cloud-practitioner-essentials/"},
		{Name: "Git Complete: Definitive Guide", Link: "https://www.udemy.com/course/git-complete/"},
	}

	databaseCourses = []types.Course{
		{Name: "The Complete SQL Bootcamp", Link: "https://www.udemy.com/course/the-complete-sql-bootcamp/"},
		{Name: "SQL for Data Science", Link: "https://www.coursera.org/learn/sql-for-data-science"},
		{Name: "MongoDB - The Complete Developer Guide", Link: "https://www.udemy.com/course/mongodb-the-complete-developers-guide/"},
		{Name: "MongoDB University Free Courses", Link: "https://university.mongodb.com/"},
	}

	generalCourses = []types.Course{
		{Name: "CS50: Introduction to Computer Science", Link: "https://www.edx.org/course/cs50s-introduction-to-computer-science"},
		{Name: "Introduction to Programming", Link: "https://www.udacity.com/course/intro-to-programming-nanodegree--nd000"},
		{Name: "Git and GitHub for Beginners", Link: "https://www.youtube.com/watch?v=RGOj5yH7evk"},
		{Name: "Software Engineering Fundamentals", Link: "https://www.coursera.org/learn/software-processes"},
	}
)

// skillCourses 技能到课程的映射，个性化推荐用
var skillCourses = map[string][]types.Course{
	"Python": {
		{Name: "Python for Everybody by Coursera", Link: "https://www.coursera.org/specializations/python"},
		{Name: "Complete Python Bootcamp", Link: "https://www.udemy.com/course/complete-python-bootcamp/"},
	},
	"JavaScript": {
		{Name: "JavaScript: The Complete Guide", Link: "https://www.udemy.com/course/javascript-the-complete-guide-2020-beginner-advanced/"},
		{Name: "Modern JavaScript From The Beginning", Link: "https://www.udemy.com/course/modern-javascript-from-the-beginning/"},
	},
	"Java": {
		{Name: "Java Programming Masterclass", Link: "https://www.udemy.com/course/java-the-complete-java-developer-course/"},
		{Name: "Java Programming and Software Engineering Fundamentals", Link: "https://www.coursera.org/specializations/java-programming"},
	},
	"React": {
		{Name: "React - The Complete Guide", Link: "https://www.udemy.com/course/react-the-complete-guide-incl-redux/"},
		{Name: "React Crash Course", Link: "https://youtu.be/Dorf8i6lCuk"},
	},
	"Node.js": {
		{Name: "Node.js - The Complete Guide", Link: "https://www.udemy.com/course/nodejs-the-complete-guide/"},
		{Name: "Node.js and Express.js Tutorial", Link: "https://youtu.be/Oe421EPjeBE"},
	},
	"Machine Learning": {
		{Name: "Machine Learning by Andrew NG", Link: "https://www.coursera.org/learn/machine-learning"},
		{Name: "Machine Learning Crash Course by Google", Link: "https://developers.google.com/machine-learning/crash-course"},
	},
	"TensorFlow": {
		{Name: "TensorFlow Developer Certificate", Link: "https://www.coursera.org/professional-certificates/tensorflow-in-practice"},
		{Name: "Deep Learning with TensorFlow", Link: "https://www.udemy.com/course/complete-tensorflow-2-and-keras-deep-learning-bootcamp/"},
	},
	"PyTorch": {
		{Name: "PyTorch for Deep Learning", Link: "https://www.udemy.com/course/pytorch-for-deep-learning-with-python-bootcamp/"},
		{Name: "Deep Learning with PyTorch", Link: "https://www.coursera.org/specializations/deep-learning"},
	},
	"SQL": {
		{Name: "The Complete SQL Bootcamp", Link: "https://www.udemy.com/course/the-complete-sql-bootcamp/"},
		{Name: "SQL for Data Science", Link: "https://www.coursera.org/learn/sql-for-data-science"},
	},
	"MongoDB": {
		{Name: "MongoDB - The Complete Developer Guide", Link: "https://www.udemy.com/course/mongodb-the-complete-developers-guide/"},
		{Name: "MongoDB University Free Courses", Link: "https://university.mongodb.com/"},
	},
	"AWS": {
		{Name: "AWS Certified Solutions Architect", Link: "https://www.udemy.com/course/aws-certified-solutions-architect-associate-saa-c03/"},
		{Name: "AWS Cloud Practitioner Essentials", Link: "https://aws.amazon.com/training/digital/aws-cloud-practitioner-essentials/"},
	},
	"Docker": {
		{Name: "Docker Mastery: Complete Toolset", Link: "https://www.udemy.com/course/docker-mastery/"},
		{Name: "Docker and Kubernetes Complete Guide", Link: "https://www.udemy.com/course/docker-and-kubernetes-the-complete-guide/"},
	},
	"Kubernetes": {
		{Name: "Kubernetes for Absolute Beginners", Link: "https://www.udemy.com/course/learn-kubernetes/"},
		{Name: "Kubernetes Certified Application Developer", Link: "https://www.udemy.com/course/certified-kubernetes-application-developer/"},
	},
	"Android": {
		{Name: "Android Development for Beginners", Link: "https://youtu.be/fis26HvvDII"},
		{Name: "The Complete Android Developer Course", Link: "https://www.udemy.com/course/complete-android-n-developer-course/"},
	},
	"Flutter": {
		{Name: "Flutter & Dart Complete Course", Link: "https://www.udemy.com/course/flutter-dart-the-complete-flutter-app-development-course/"},
		{Name: "Flutter App Development Course", Link: "https://youtu.be/rZLR5olMR64"},
	},
	"Swift": {
		{Name: "iOS & Swift Complete Bootcamp", Link: "https://www.udemy.com/course/ios-13-app-development-bootcamp/"},
		{Name: "Swift Tutorial - Full Course", Link: "https://youtu.be/comQ1-x2a1Q"},
	},
	"UI/UX": {
		{Name: "Google UX Design Professional Certificate", Link: "https://www.coursera.org/professional-certificates/google-ux-design"},
		{Name: "Complete App Design Course", Link: "https://www.udemy.com/course/the-complete-app-design-course-ux-and-ui-design/"},
	},
	"Figma": {
		{Name: "Figma UI UX Design Essentials", Link: "https://www.udemy.com/course/figma-ux-ui-design-user-experience-tutorial-course/"},
		{Name: "Figma Masterclass", Link: "https://www.youtube.com/watch?v=II-6dDzc-80"},
	},
	"Git": {
		{Name: "Git Complete: Definitive Guide", Link: "https://www.udemy.com/course/git-complete/"},
		{Name: "Git and GitHub for Beginners", Link: "https://www.youtube.com/watch?v=RGOj5yH7evk"},
	},
	"Data Analysis": {
		{Name: "Data Analysis with Python", Link: "https://www.freecodecamp.org/learn/data-analysis-with-python/"},
		{Name: "Data Analyst Nanodegree", Link: "https://www.udacity.com/course/data-analyst-nanodegree--nd002"},
	},
	"Pandas": {
		{Name: "Pandas for Data Analysis", Link: "https://www.udemy.com/course/data-analysis-with-pandas/"},
		{Name: "Python Pandas Tutorial", Link: "https://www.youtube.com/watch?v=vmEHCJofslg"},
	},
	"REST API": {
		{Name: "REST API Design, Development", Link: "https://www.udemy.com/course/rest-api-design-development-testing/"},
		{Name: "Building RESTful APIs", Link: "https://www.youtube.com/watch?v=-MTSQjw5DrM"},
	},
	"TypeScript": {
		{Name: "TypeScript Complete Course", Link: "https://www.udemy.com/course/understanding-typescript/"},
		{Name: "TypeScript for JavaScript Developers", Link: "https://www.typescriptlang.org/docs/handbook/typescript-from-scratch.html"},
	},
}

// skillCourseOrder skillCourses 的固定遍历顺序，保证推荐结果确定
var skillCourseOrder = []string{
	"Python", "JavaScript", "Java", "React", "Node.js", "Machine Learning",
	"TensorFlow", "PyTorch", "SQL", "MongoDB", "AWS", "Docker", "Kubernetes",
	"Android", "Flutter", "Swift", "UI/UX", "Figma", "Git", "Data Analysis",
	"Pandas", "REST API", "TypeScript",
}

// fieldCourses 领域到课程目录的映射
var fieldCourses = map[string][]types.Course{
	"Data Science":         dataScienceCourses,
	"Web Development":      webCourses,
	"Mobile Development":   mobileCourses,
	"UI/UX Design":         uiuxCourses,
	"DevOps & Cloud":       devopsCourses,
	"Database Engineering": databaseCourses,
	"General IT":           generalCourses,
}

// 第三优先级补位时各领域的热门技能，按推荐顺序排列
var fieldPrioritySkills = map[string][]string{
	"Data Science":         {"Machine Learning", "Python", "TensorFlow", "PyTorch", "Pandas", "SQL"},
	"Web Development":      {"React", "Node.js", "JavaScript", "TypeScript", "MongoDB", "REST API"},
	"Mobile Development":   {"Flutter", "Android", "Swift", "Java"},
	"UI/UX Design":         {"Figma", "UI/UX"},
	"DevOps & Cloud":       {"Docker", "Kubernetes", "AWS", "Git"},
	"Database Engineering": {"SQL", "MongoDB", "Python"},
}

var defaultPrioritySkills = []string{"Python", "JavaScript", "Git"}

const defaultMaxCourses = 8

// CourseRecommender 课程推荐器，基于只读目录做查找，可并发使用
type CourseRecommender struct {
	maxCourses int
}

// NewCourseRecommender 创建课程推荐器
func NewCourseRecommender() *CourseRecommender {
	return &CourseRecommender{maxCourses: defaultMaxCourses}
}

// CoursesByField 返回指定领域的课程目录，未知领域回退到通用目录
func (r *CourseRecommender) CoursesByField(field string) []types.Course {
	if courses, ok := fieldCourses[field]; ok {
		return courses
	}
	return generalCourses
}

// PersonalizedCourses 三级优先策略的个性化推荐：
// 先补推荐技能中用户缺失的，再用领域目录续位，最后以领域热门技能兜底。
func (r *CourseRecommender) PersonalizedCourses(userSkills []string, field string, recommendedSkills []string) []types.Course {
	lowerSkills := make([]string, len(userSkills))
	for i, s := range userSkills {
		lowerSkills[i] = strings.ToLower(s)
	}

	picked := make([]types.Course, 0, r.maxCourses)
	seen := make(map[string]struct{})
	add := func(c types.Course) bool {
		if _, dup := seen[c.Link]; dup {
			return len(picked) < r.maxCourses
		}
		seen[c.Link] = struct{}{}
		picked = append(picked, c)
		return len(picked) < r.maxCourses
	}

	// 优先级1：推荐技能中用户尚未掌握的
	for _, skill := range recommendedSkills {
		if hasSkill(lowerSkills, skill) {
			continue
		}
		for _, key := range skillCourseOrder {
			if !skillKeyMatches(key, skill) {
				continue
			}
			for _, c := range skillCourses[key] {
				if !add(c) {
					return picked
				}
			}
		}
	}

	// 优先级2：领域目录续位
	for _, c := range r.CoursesByField(field) {
		if !add(c) {
			return picked
		}
	}

	// 优先级3：领域热门技能兜底
	priority, ok := fieldPrioritySkills[field]
	if !ok {
		priority = defaultPrioritySkills
	}
	for _, skill := range priority {
		if hasSkill(lowerSkills, skill) {
			continue
		}
		for _, c := range skillCourses[skill] {
			if !add(c) {
				return picked
			}
		}
	}

	if len(picked) == 0 {
		fallback := r.CoursesByField(field)
		if len(fallback) > r.maxCourses {
			fallback = fallback[:r.maxCourses]
		}
		return fallback
	}
	return picked
}

// hasSkill 双向包含匹配，容忍 "Machine Learning" 与 "ML"、"Node" 与 "Node.js" 这类变体
func hasSkill(lowerSkills []string, skill string) bool {
	target := strings.ToLower(skill)
	for _, s := range lowerSkills {
		if strings.Contains(s, target) || strings.Contains(target, s) {
			return true
		}
	}
	return false
}

func skillKeyMatches(key, skill string) bool {
	k, s := strings.ToLower(key), strings.ToLower(skill)
	return strings.Contains(k, s) || strings.Contains(s, k)
}
