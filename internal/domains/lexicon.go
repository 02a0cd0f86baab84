package domains

// Tag identifies a professional domain
type Tag string

const (
	Software   Tag = "software"
	Frontend   Tag = "frontend"
	Backend    Tag = "backend"
	DevOps     Tag = "devops"
	Data       Tag = "data"
	Design     Tag = "design"
	Marketing  Tag = "marketing"
	Sales      Tag = "sales"
	Finance    Tag = "finance"
	Operations Tag = "operations"
	Healthcare Tag = "healthcare"
	Legal      Tag = "legal"
	HR         Tag = "hr"
	Education  Tag = "education"
)

// indicators maps each domain to phrases specific enough to signal it.
// Single generic words are avoided on purpose.
var indicators = map[Tag][]string{
	Software: {
		"software engineer", "software developer", "software development", "source code", "code review",
		"unit tests", "version control", "object-oriented", "programming language", "full stack",
		"full-stack", "api design", "rest api", "microservices", "distributed systems", "system design",
		"computer science", "agile development", "pull requests",
	},
	Frontend: {
		"front-end", "frontend", "user interface development", "single page application", "react components",
		"responsive design", "web accessibility", "browser compatibility", "css frameworks", "component library",
	},
	Backend: {
		"back-end", "backend", "server-side", "database design", "api development", "message queues",
		"data stores", "high availability", "low latency", "scalable services",
	},
	DevOps: {
		"infrastructure as code", "ci/cd", "site reliability", "kubernetes clusters", "container orchestration",
		"incident response", "cloud infrastructure", "observability", "deployment pipelines", "on-call rotation",
	},
	Data: {
		"data science", "data scientist", "machine learning", "data pipelines", "data engineering",
		"data warehouse", "statistical analysis", "predictive models", "etl pipelines", "data visualization",
		"business intelligence", "a/b testing",
	},
	Design: {
		"user experience", "user research", "visual design", "interaction design", "design systems",
		"wireframes", "prototypes", "usability testing", "design thinking", "information architecture",
		"product design", "brand identity",
	},
	Marketing: {
		"demand generation", "content marketing", "marketing campaigns", "brand awareness", "marketing automation",
		"email marketing", "social media marketing", "search engine optimization", "paid acquisition",
		"go-to-market", "product marketing", "lead nurturing", "marketing qualified leads", "growth marketing",
	},
	Sales: {
		"sales quota", "quota attainment", "closing deals", "sales pipeline", "pipeline management",
		"enterprise sales", "account executive", "business development", "cold calling", "sales cycle",
		"revenue targets", "territory management", "solution selling", "customer acquisition", "b2b sales",
	},
	Finance: {
		"financial modeling", "financial analysis", "financial statements", "budget forecasting", "general ledger",
		"accounts payable", "accounts receivable", "cash flow", "variance analysis", "financial reporting",
		"investment banking",
	},
	Operations: {
		"supply chain", "process improvement", "vendor management", "logistics operations", "inventory management",
		"operational efficiency", "lean six sigma", "procurement", "operations management",
	},
	Healthcare: {
		"patient care", "clinical trials", "electronic health records", "medical devices", "healthcare providers",
		"hipaa compliance", "nursing", "clinical operations",
	},
	Legal: {
		"legal research", "contract negotiation", "regulatory compliance", "litigation", "intellectual property",
		"legal counsel", "corporate law",
	},
	HR: {
		"talent acquisition", "employee relations", "human resources", "performance management",
		"compensation and benefits", "onboarding programs", "hr business partner", "full-cycle recruiting",
	},
	Education: {
		"curriculum development", "lesson plans", "classroom management", "student outcomes",
		"instructional design", "teaching experience",
	},
}

// relatedPairs widens overlap between adjacent domains
var relatedPairs = [][2]Tag{
	{Marketing, Sales},
	{Frontend, Software},
	{Backend, Software},
	{DevOps, Software},
	{DevOps, Backend},
	{Data, Software},
	{Design, Frontend},
	{Finance, Operations},
}
