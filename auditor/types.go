package auditor

// FeatureReport is the structured view of a page's raw HTML. It is built
// once per audit by Extract and read by the scoring rules; nothing mutates
// it afterwards.
type FeatureReport struct {
	Title           string      `json:"title"`
	MetaDescription string      `json:"meta_description"`
	MetaRobots      string      `json:"meta_robots"`
	Viewport        string      `json:"viewport"`
	Headings        []Heading   `json:"headings"`
	H1Texts         []string    `json:"h1_texts"`
	Paragraphs      []string    `json:"paragraphs"`
	Images          []Image     `json:"images"`
	MissingAlt      []Snippet   `json:"missing_alt"`
	Links           []string    `json:"links"`
	InternalLinks   []string    `json:"internal_links"`
	EmptyLinks      []Snippet   `json:"empty_links"`
	IdentitySignals []string    `json:"identity_signals"`
	SchemaBlocks    []string    `json:"schema_blocks"`
	TextLength      int         `json:"text_length"`
	HTMLLength      int         `json:"html_length"`
	SentenceCount   int         `json:"sentence_count"`
	ComplexCount    int         `json:"complex_sentence_count"`
	ComplexList     []string    `json:"complex_sentences_list"`
	AvgSentenceLen  float64     `json:"avg_sentence_len"`
	AvgParaLen      float64     `json:"avg_para_len"`
	TextToCodeRatio float64     `json:"text_to_code_ratio"`
	ListElements    int         `json:"list_element_count"`
	JSDetection     JSDetection `json:"js_detection"`
}

// Heading is one h1..h6 element in document order within its level.
type Heading struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// Image is one <img> element.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Snippet pairs an offending attribute value with a rendered tag string
// the UI can show verbatim.
type Snippet struct {
	Ref string `json:"ref"`
	Tag string `json:"tag"`
}

// JSDetection is the result of the client-side-rendering heuristics.
type JSDetection struct {
	IsJSReliant       bool   `json:"is_js_reliant"`
	ConfidenceScore   int    `json:"confidence_score"`
	DetectedFramework string `json:"detected_framework"`
	TechnicalReason   string `json:"technical_reason"`
}

// Severity of an evidence item.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// EvidenceItem is one actionable finding surfaced to the end user. ID is
// deterministic for a given category and message, so the UI can key
// collapse/expand state per item while repeated audits of the same page
// stay byte-identical.
type EvidenceItem struct {
	ID       string   `json:"id"`
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Summary  string   `json:"summary"`
	Fix      string   `json:"fix"`
	Details  []string `json:"details,omitempty"`
}

// RuleResult is the output of a single scoring rule: a canonical 0-5 score
// plus zero or more evidence items.
type RuleResult struct {
	Score    float64        `json:"score"`
	Evidence []EvidenceItem `json:"evidence"`
}

// AuditResult is the complete outcome of one audit.
type AuditResult struct {
	URL        string             `json:"url"`
	RawScores  map[string]float64 `json:"raw_scores"`
	TotalScore int                `json:"total_score"`
	Remarks    string             `json:"remarks"`
	Evidence   []EvidenceItem     `json:"evidence"`
	JSAnalysis JSDetection        `json:"js_analysis"`
	Report     *FeatureReport     `json:"report,omitempty"`
}
