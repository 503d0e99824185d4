package model

// Content sources reported alongside generated material
const (
	SourceLLM      = "llm"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// Concept is a node of the knowledge catalog
type Concept struct {
	Name            string   `json:"name" yaml:"name"`
	Description     string   `json:"description" yaml:"description"`
	Category        string   `json:"category" yaml:"category"`
	Difficulty      string   `json:"difficulty" yaml:"difficulty"`
	RelatedConcepts []string `json:"related_concepts" yaml:"related"`
}

// RelatedConcept is a neighbour of a concept with the edge weight
type RelatedConcept struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// Explanation is a three-angle explanation of a concept
type Explanation struct {
	CoreDefinition     string   `json:"core_definition"`
	FeynmanExplanation string   `json:"feynman_explanation"`
	Misconceptions     []string `json:"misconceptions"`
	Source             string   `json:"source"`
}

type TrueFalse struct {
	Question    string `json:"question"`
	Answer      bool   `json:"answer"`
	Explanation string `json:"explanation"`
}

type CaseStudy struct {
	Scenario  string   `json:"scenario"`
	Questions []string `json:"questions"`
	Answers   []string `json:"answers"`
}

type CodeExercise struct {
	Description string   `json:"description"`
	Template    string   `json:"template"`
	Solution    string   `json:"solution"`
	Hints       []string `json:"hints"`
}

// Exercises groups the generated practice questions for a concept
type Exercises struct {
	TrueFalse     []TrueFalse    `json:"true_false"`
	CaseStudies   []CaseStudy    `json:"case_studies"`
	CodeExercises []CodeExercise `json:"code_exercises"`
	Source        string         `json:"source"`
}

// PathDay is one day of a learning path
type PathDay struct {
	Day        int      `json:"day"`
	Goal       string   `json:"goal"`
	Activities []string `json:"activities"`
	Resources  []string `json:"resources"`
}

// LearningPath is an ordered plan for learning a concept
type LearningPath struct {
	Concept   string    `json:"concept"`
	UserLevel string    `json:"user_level"`
	Days      []PathDay `json:"days"`
	Source    string    `json:"source"`
}

type GraphNode struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Group       int    `json:"group"`
}

type GraphEdge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// KnowledgeGraph is the frontend-ready view of a concept neighbourhood
type KnowledgeGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// ImportResult holds the result of a catalog import
type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	Imported       int      `json:"imported"`
	Skipped        int      `json:"skipped"`
	Concepts       []string `json:"concepts"`
	Errors         []string `json:"errors"`
}
