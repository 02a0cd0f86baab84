package skills

import (
	"sort"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

// SynonymGroup is a named cluster of interchangeable skill terms
type SynonymGroup struct {
	Canonical string
	Members   []string
	Technical bool
}

// synonymGroups lists every canonical group. Members are stored normalized.
var synonymGroups = []SynonymGroup{
	{Canonical: "javascript", Technical: true, Members: []string{"javascript", "js", "es6", "ecmascript", "node", "node.js", "nodejs"}},
	{Canonical: "typescript", Technical: true, Members: []string{"typescript", "ts"}},
	{Canonical: "react", Technical: true, Members: []string{"react", "react.js", "reactjs", "redux", "next.js", "nextjs"}},
	{Canonical: "vue", Technical: true, Members: []string{"vue", "vue.js", "vuejs", "nuxt"}},
	{Canonical: "golang", Technical: true, Members: []string{"go", "golang"}},
	{Canonical: "python", Technical: true, Members: []string{"python", "django", "flask", "fastapi"}},
	{Canonical: "java", Technical: true, Members: []string{"java", "spring", "spring boot", "jvm"}},
	{Canonical: "kubernetes", Technical: true, Members: []string{"kubernetes", "k8s", "eks", "gke", "aks", "helm"}},
	{Canonical: "docker", Technical: true, Members: []string{"docker", "containers", "containerization"}},
	{Canonical: "aws", Technical: true, Members: []string{"aws", "amazon web services", "ec2", "s3", "lambda", "cloudformation"}},
	{Canonical: "gcp", Technical: true, Members: []string{"gcp", "google cloud", "google cloud platform", "bigquery"}},
	{Canonical: "azure", Technical: true, Members: []string{"azure", "microsoft azure"}},
	{Canonical: "sql", Technical: true, Members: []string{"sql", "postgresql", "postgres", "mysql", "sqlite", "relational databases"}},
	{Canonical: "nosql", Technical: true, Members: []string{"nosql", "mongodb", "dynamodb", "cassandra", "redis"}},
	{Canonical: "ci/cd", Technical: true, Members: []string{"ci/cd", "continuous integration", "continuous delivery", "jenkins", "github actions", "gitlab ci"}},
	{Canonical: "infrastructure as code", Technical: true, Members: []string{"infrastructure as code", "terraform", "pulumi", "ansible"}},
	{Canonical: "machine learning", Technical: true, Members: []string{"machine learning", "ml", "deep learning", "tensorflow", "pytorch", "scikit-learn"}},
	{Canonical: "data analysis", Technical: true, Members: []string{"data analysis", "pandas", "numpy", "data analytics"}},
	{Canonical: "bi", Technical: true, Members: []string{"business intelligence", "tableau", "power bi", "looker"}},
	{Canonical: "css", Technical: true, Members: []string{"css", "css3", "sass", "scss", "tailwind"}},
	{Canonical: "api", Technical: true, Members: []string{"rest", "restful", "rest api", "graphql", "grpc"}},
	{Canonical: "design tools", Technical: true, Members: []string{"figma", "sketch", "adobe xd", "invision"}},
	{Canonical: "ux research", Technical: true, Members: []string{"user research", "usability testing", "user interviews"}},
	{Canonical: "seo", Technical: true, Members: []string{"seo", "search engine optimization", "sem", "search engine marketing"}},
	{Canonical: "marketing automation", Technical: true, Members: []string{"marketing automation", "hubspot", "marketo", "pardot"}},
	{Canonical: "crm", Technical: true, Members: []string{"crm", "salesforce", "salesforce crm"}},
	{Canonical: "communication", Members: []string{"communication", "communicator", "written communication", "verbal communication", "presentation skills"}},
	{Canonical: "leadership", Members: []string{"leadership", "mentoring", "mentorship", "people management"}},
	{Canonical: "teamwork", Members: []string{"teamwork", "collaboration", "cross-functional", "team player"}},
	{Canonical: "problem solving", Members: []string{"problem solving", "problem-solving", "analytical thinking", "critical thinking"}},
}

// technicalTerms is the curated lexicon of domain-specific terms used to mark a
// requirement as technical. Generic words are deliberately absent.
var technicalTerms = []string{
	// software
	"golang", "java", "python", "javascript", "typescript", "c++", "c#", "ruby", "rust", "scala", "kotlin", "swift",
	"php", "html", "css", "react", "angular", "vue", "node.js", "django", "flask", "spring", "sql", "nosql",
	"postgresql", "mysql", "mongodb", "redis", "kafka", "rabbitmq", "spark", "hadoop", "airflow", "dbt",
	"aws", "gcp", "azure", "kubernetes", "docker", "terraform", "ansible", "linux", "git", "ci/cd",
	"microservices", "distributed systems", "rest api", "graphql", "grpc", "api design", "system design",
	"machine learning", "deep learning", "tensorflow", "pytorch", "data pipelines", "etl", "data modeling",
	"tableau", "power bi", "looker", "statistics", "a/b testing",
	// design
	"figma", "sketch", "adobe xd", "photoshop", "illustrator", "user research", "usability testing",
	"wireframes", "wireframing", "prototyping", "design systems", "interaction design", "typography",
	"visual design", "information architecture", "ux", "ui",
	// marketing
	"seo", "sem", "ppc", "google analytics", "google ads", "demand generation", "content marketing",
	"email marketing", "marketing automation", "hubspot", "marketo", "paid social", "brand strategy",
	"growth marketing", "conversion rate optimization", "product marketing",
	// sales
	"salesforce", "crm", "pipeline management", "quota attainment", "b2b sales", "saas sales",
	"enterprise sales", "account management", "lead generation", "cold calling", "sales forecasting",
	"territory management", "solution selling", "outbound prospecting",
}

var softSkills = map[string]bool{
	"communication": true, "leadership": true, "teamwork": true, "collaboration": true,
	"problem solving": true, "problem-solving": true, "time management": true, "mentoring": true,
	"negotiation": true, "adaptability": true, "critical thinking": true, "presentation": true,
	"public speaking": true, "organization": true, "attention to detail": true, "creativity": true,
	"stakeholder management": true, "customer service": true, "interpersonal skills": true,
}

var toolNames = map[string]bool{
	"jira": true, "confluence": true, "git": true, "github": true, "gitlab": true, "figma": true,
	"excel": true, "slack": true, "tableau": true, "photoshop": true, "illustrator": true,
	"salesforce": true, "hubspot": true, "docker": true, "jenkins": true, "notion": true,
	"asana": true, "trello": true, "postman": true, "vs code": true, "intellij": true,
	"google analytics": true, "power bi": true, "looker": true, "sketch": true, "marketo": true,
}

var spokenLanguages = map[string]bool{
	"english": true, "spanish": true, "french": true, "german": true, "mandarin": true,
	"chinese": true, "japanese": true, "portuguese": true, "italian": true, "russian": true,
	"arabic": true, "hindi": true, "korean": true, "dutch": true,
}

// ActionVerbs are strong accomplishment verbs recognized as bullet keywords
var ActionVerbs = map[string]bool{
	"led": true, "built": true, "designed": true, "developed": true, "launched": true,
	"managed": true, "created": true, "implemented": true, "improved": true, "increased": true,
	"reduced": true, "delivered": true, "drove": true, "owned": true, "scaled": true,
	"shipped": true, "architected": true, "optimized": true, "automated": true, "grew": true,
	"negotiated": true, "closed": true, "mentored": true, "migrated": true, "established": true,
}

// stopwords are excluded from word-overlap scoring
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true, "that": true, "this": true,
	"have": true, "has": true, "will": true, "your": true, "you": true, "our": true, "are": true,
	"was": true, "were": true, "been": true, "being": true, "into": true, "over": true, "about": true,
	"their": true, "they": true, "them": true, "what": true, "when": true, "where": true, "which": true,
	"while": true, "able": true, "ability": true, "strong": true, "excellent": true, "good": true,
	"work": true, "working": true, "experience": true, "experienced": true, "years": true, "year": true,
	"knowledge": true, "understanding": true, "familiarity": true, "familiar": true, "skills": true,
	"skill": true, "including": true, "such": true, "other": true, "more": true, "must": true,
	"should": true, "would": true, "also": true, "across": true, "within": true, "using": true,
	"plus": true, "preferred": true, "required": true, "requirements": true, "team": true, "teams": true,
}

// ambiguousMembers are group members that double as everyday English words. They only
// count when they make up the whole text, e.g. a skill named "Go".
var ambiguousMembers = map[string]bool{
	"go": true, "node": true, "spring": true, "rest": true, "lambda": true, "containers": true,
}

var (
	normalizedGroups []SynonymGroup
	normalizedTerms  []string
)

func init() {
	normalizedGroups = make([]SynonymGroup, len(synonymGroups))
	for i, g := range synonymGroups {
		members := make([]string, len(g.Members))
		for j, m := range g.Members {
			members[j] = NormalizeText(m)
		}
		normalizedGroups[i] = SynonymGroup{Canonical: g.Canonical, Members: members, Technical: g.Technical}
	}

	normalizedTerms = make([]string, 0, len(technicalTerms))
	for _, t := range technicalTerms {
		normalizedTerms = append(normalizedTerms, NormalizeText(t))
	}
	// Longest first so that callers reporting hits prefer specific phrases
	sort.SliceStable(normalizedTerms, func(i, j int) bool {
		return len(normalizedTerms[i]) > len(normalizedTerms[j])
	})
}

// memberIn reports whether a normalized group member occurs in normalized text
func memberIn(norm, m string) bool {
	if ambiguousMembers[m] {
		return norm == m
	}
	return containsNormalized(norm, m)
}

// Groups returns the synonym groups whose members occur in text
func Groups(text string) []SynonymGroup {
	norm := NormalizeText(text)
	var hits []SynonymGroup
	for _, g := range normalizedGroups {
		for _, m := range g.Members {
			if memberIn(norm, m) {
				hits = append(hits, g)
				break
			}
		}
	}
	return hits
}

// SharedGroup returns the first synonym group present in both texts.
// When technicalOnly is set, soft-skill groups are ignored.
func SharedGroup(a, b string, technicalOnly bool) (SynonymGroup, bool) {
	bGroups := Groups(b)
	for _, ga := range Groups(a) {
		if technicalOnly && !ga.Technical {
			continue
		}
		for _, gb := range bGroups {
			if ga.Canonical == gb.Canonical {
				return ga, true
			}
		}
	}
	return SynonymGroup{}, false
}

// TechnicalTerms returns the technical lexicon terms found in text, longest first
func TechnicalTerms(text string) []string {
	norm := NormalizeText(text)
	var hits []string
	for _, t := range normalizedTerms {
		if containsNormalized(norm, t) {
			hits = append(hits, t)
		}
	}
	return hits
}

// IsTechnical reports whether text mentions any curated technical term
func IsTechnical(text string) bool {
	norm := NormalizeText(text)
	for _, t := range normalizedTerms {
		if containsNormalized(norm, t) {
			return true
		}
	}
	for _, g := range normalizedGroups {
		if !g.Technical {
			continue
		}
		for _, m := range g.Members {
			if memberIn(norm, m) {
				return true
			}
		}
	}
	return false
}

// Categorize assigns a skill category by keyword lookup
func Categorize(name string) types.SkillCategory {
	lower := strings.ToLower(strings.TrimSpace(name))
	switch {
	case spokenLanguages[lower]:
		return types.SkillLanguage
	case toolNames[lower]:
		return types.SkillTool
	case softSkills[lower]:
		return types.SkillSoft
	case IsTechnical(lower):
		return types.SkillTechnical
	default:
		return types.SkillOther
	}
}

// IsStopword reports whether w is excluded from overlap scoring
func IsStopword(w string) bool {
	return stopwords[w]
}

// SignificantWords returns the distinct non-stopword tokens of text longer than three characters
func SignificantWords(text string) []string {
	seen := make(map[string]bool)
	var words []string
	for _, tok := range Tokens(text) {
		if len(tok) <= 3 || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		words = append(words, tok)
	}
	return words
}
