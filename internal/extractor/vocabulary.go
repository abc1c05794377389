package extractor

// DefaultSkillsVocabulary 内置技能词表（100+项），配置文件未提供词表时使用
// 词条允许多词短语，加载时统一小写并去空
func DefaultSkillsVocabulary() []string {
	return []string{
		// 编程语言
		"python", "java", "javascript", "typescript", "c++", "c#", "ruby", "go", "rust",
		"php", "swift", "kotlin", "scala", "r", "matlab", "perl", "bash", "shell",

		// Web技术
		"html", "css", "react", "angular", "vue", "svelte", "jquery", "bootstrap",
		"tailwind", "sass", "less", "webpack", "vite", "nextjs", "nuxt",

		// 后端框架
		"django", "flask", "fastapi", "spring", "spring boot", "express", "nestjs",
		"rails", "laravel", "asp.net", "node.js", "nodejs",

		// 数据库
		"sql", "mysql", "postgresql", "postgres", "mongodb", "redis", "cassandra",
		"dynamodb", "elasticsearch", "oracle", "sql server", "sqlite", "mariadb",

		// 云与DevOps
		"aws", "azure", "gcp", "google cloud", "docker", "kubernetes", "jenkins",
		"gitlab", "github actions", "terraform", "ansible", "chef", "puppet",
		"ci/cd", "devops", "microservices",

		// 数据科学与机器学习
		"machine learning", "deep learning", "tensorflow", "pytorch", "keras",
		"scikit-learn", "pandas", "numpy", "data analysis", "data science",
		"nlp", "computer vision", "neural networks", "ai", "artificial intelligence",

		// 大数据
		"spark", "hadoop", "kafka", "airflow", "databricks", "snowflake",
		"big data", "data engineering", "etl",

		// 移动开发
		"android", "ios", "react native", "flutter", "xamarin", "mobile development",

		// 版本控制与工具
		"git", "github", "gitlab", "bitbucket", "svn", "mercurial",

		// 测试
		"pytest", "junit", "selenium", "cypress", "jest", "unit testing",
		"integration testing", "test automation", "tdd",

		// 其他
		"rest api", "graphql", "websockets", "oauth", "jwt", "linux", "unix",
		"agile", "scrum", "jira", "confluence", "system design", "architecture",
		"data structures", "algorithms", "oop", "functional programming",
	}
}
