package auditor

import (
	"fmt"
	"math"
)

// Scoring categories. Evidence in an AuditResult is ordered by the position
// of its category in the weight table.
const (
	CategoryTitle          = "title"
	CategoryMetadata       = "metadata"
	CategoryPageStructure  = "page_structure"
	CategoryContentClarity = "content_clarity"
	CategoryReadability    = "readability"
	CategoryImageAlt       = "image_alt"
	CategoryAIClarity      = "ai_clarity"
	CategorySchema         = "schema"
	CategoryTechSEO        = "tech_seo"
)

// CategoryWeight pairs a category with its share of the total score.
type CategoryWeight struct {
	Category string
	Weight   float64
	rule     func(*FeatureReport) RuleResult
}

// DefaultWeights is the built-in weight table. Weights sum to 1.0; the
// order here fixes both evidence order and the raw-score display order.
func DefaultWeights() []CategoryWeight {
	return []CategoryWeight{
		{Category: CategoryTitle, Weight: 0.10, rule: scoreTitle},
		{Category: CategoryMetadata, Weight: 0.05, rule: scoreMetadata},
		{Category: CategoryPageStructure, Weight: 0.15, rule: scorePageStructure},
		{Category: CategoryContentClarity, Weight: 0.20, rule: scoreContentClarity},
		{Category: CategoryReadability, Weight: 0.10, rule: scoreReadability},
		{Category: CategoryImageAlt, Weight: 0.10, rule: scoreImageAlt},
		{Category: CategoryAIClarity, Weight: 0.10, rule: scoreAIClarity},
		{Category: CategorySchema, Weight: 0.10, rule: scoreSchema},
		{Category: CategoryTechSEO, Weight: 0.10, rule: scoreTechnicalSEO},
	}
}

// WeightsWithOverrides returns the default table with weights replaced per
// category. Unknown categories are rejected, and the resulting weights must
// still sum to 1.0 (within floating-point tolerance).
func WeightsWithOverrides(overrides map[string]float64) ([]CategoryWeight, error) {
	weights := DefaultWeights()
	known := make(map[string]int, len(weights))
	for i, cw := range weights {
		known[cw.Category] = i
	}

	for category, weight := range overrides {
		i, ok := known[category]
		if !ok {
			return nil, fmt.Errorf("unknown scoring category %q", category)
		}
		if weight < 0 {
			return nil, fmt.Errorf("negative weight %v for category %q", weight, category)
		}
		weights[i].Weight = weight
	}

	sum := 0.0
	for _, cw := range weights {
		sum += cw.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("weights sum to %v, want 1.0", sum)
	}
	return weights, nil
}

// Scan runs every scoring rule against the report and folds the results
// into a single weighted total. Each raw score is 0-5; a category's
// contribution to the 0-100 total is score/5 * 100 * weight.
func Scan(report *FeatureReport, weights []CategoryWeight) AuditResult {
	rawScores := make(map[string]float64, len(weights))
	var evidence []EvidenceItem
	total := 0.0

	for _, cw := range weights {
		res := cw.rule(report)
		rawScores[cw.Category] = res.Score
		total += res.Score / 5 * 100 * cw.Weight
		evidence = append(evidence, res.Evidence...)
	}

	totalScore := int(math.Round(total))

	return AuditResult{
		RawScores:  rawScores,
		TotalScore: totalScore,
		Remarks:    Remarks(totalScore),
		Evidence:   evidence,
		JSAnalysis: report.JSDetection,
		Report:     report,
	}
}

// Remark bands for the total score.
const (
	remarkFutureProof = 86
	remarkStrong      = 70
	remarkPartial     = 40
)

// Remarks maps a total score to its qualitative band.
func Remarks(total int) string {
	switch {
	case total >= remarkFutureProof:
		return "AI-ready & future-proof"
	case total >= remarkStrong:
		return "Strong foundation"
	case total >= remarkPartial:
		return "Partially visible, clarity gaps"
	default:
		return "High risk: machines struggle to understand this page"
	}
}

// Analyze is the pure core entry point: raw HTML plus the fetched URL in,
// complete audit out. It performs no I/O and is safe to call concurrently.
func Analyze(rawHTML, targetURL string) AuditResult {
	return AnalyzeWithWeights(rawHTML, targetURL, DefaultWeights())
}

// AnalyzeWithWeights runs the pipeline with a caller-supplied weight table.
func AnalyzeWithWeights(rawHTML, targetURL string, weights []CategoryWeight) AuditResult {
	report := Extract(rawHTML, targetURL)
	result := Scan(report, weights)
	result.URL = targetURL
	return result
}
