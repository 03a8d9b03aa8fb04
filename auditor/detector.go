package auditor

import (
	"regexp"
	"strconv"
	"strings"
)

// Confidence contributions of the individual CSR heuristics. A page is
// considered JS-reliant once the sum reaches jsReliantThreshold.
const (
	frameworkConfidence      = 40
	extremeRatioConfidence   = 40
	lowRatioConfidence       = 20
	emptyContainerConfidence = 20
	noscriptConfidence       = 10
	jsReliantThreshold       = 50
)

// Ratio bands for the text-to-HTML check. The extreme band only fires on
// pages large enough for the ratio to be meaningful.
const (
	extremeTextRatio  = 0.05
	lowTextRatio      = 0.10
	extremeRatioBytes = 10000
)

// frameworkFingerprints maps client-side frameworks to markup signatures.
// Order matters: the first framework with a matching signature wins. Bare
// mount ids (#root, #app, #__next) are deliberately not listed here; they
// only count through the empty-container heuristic, so a single empty
// mount div is never double-counted as both a framework and a container.
var frameworkFingerprints = []struct {
	Name       string
	Signatures []string
}{
	{"Next.js", []string{"__NEXT_DATA__"}},
	{"React", []string{"data-reactroot", "react-id"}},
	{"Vue", []string{"v-cloak", "data-v-"}},
	{"Angular", []string{"ng-version", "ng-app", "ng-controller"}},
}

var (
	scriptBlocks    = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleBlocks     = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	markupTags      = regexp.MustCompile(`<[^>]*>`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	emptyContainers = regexp.MustCompile(`(?i)<div\s+id=["'](root|app|__next)["']\s*></div>`)
)

// DetectJS inspects raw HTML for signs the visible content is produced by
// client-side JavaScript rather than present in the markup. It is a pure
// function of its input.
func DetectJS(rawHTML string) JSDetection {
	if rawHTML == "" {
		return JSDetection{
			DetectedFramework: "Unknown",
			TechnicalReason:   "Empty content provided.",
		}
	}

	lower := strings.ToLower(rawHTML)
	confidence := 0
	var reasons []string

	framework := identifyFramework(lower)
	if framework != "Unknown" {
		confidence += frameworkConfidence
		reasons = append(reasons, "Detected "+framework+" signatures.")
	}

	ratio := textRatio(rawHTML)
	if ratio < extremeTextRatio && len(rawHTML) > extremeRatioBytes {
		confidence += extremeRatioConfidence
		pct := strconv.FormatFloat(round2(ratio*100), 'f', -1, 64)
		reasons = append(reasons, "Extremely low text-to-code ratio ("+pct+"%).")
	} else if ratio < lowTextRatio {
		confidence += lowRatioConfidence
		reasons = append(reasons, "Low text-to-code ratio.")
	}

	if emptyContainers.MatchString(rawHTML) {
		confidence += emptyContainerConfidence
		reasons = append(reasons, "Primary content containers (like #root or #app) appear empty in raw source.")
	}

	if strings.Contains(lower, "enable javascript") || strings.Contains(lower, "<noscript>") {
		confidence += noscriptConfidence
	}

	reason := "No significant JS dependency detected."
	if len(reasons) > 0 {
		reason = strings.Join(reasons, " ")
	}

	return JSDetection{
		IsJSReliant:       confidence >= jsReliantThreshold,
		ConfidenceScore:   min(confidence, 100),
		DetectedFramework: framework,
		TechnicalReason:   reason,
	}
}

// identifyFramework expects its input already lowercased.
func identifyFramework(lowerHTML string) string {
	for _, fp := range frameworkFingerprints {
		for _, sig := range fp.Signatures {
			if strings.Contains(lowerHTML, strings.ToLower(sig)) {
				return fp.Name
			}
		}
	}
	return "Unknown"
}

// textRatio estimates how much of the document is human-visible text:
// script and style blocks are dropped entirely, remaining tags stripped,
// and whitespace collapsed before comparing lengths.
func textRatio(rawHTML string) float64 {
	clean := scriptBlocks.ReplaceAllString(rawHTML, "")
	clean = styleBlocks.ReplaceAllString(clean, "")
	text := strings.TrimSpace(markupTags.ReplaceAllString(clean, ""))
	text = whitespaceRuns.ReplaceAllString(text, " ")

	if len(rawHTML) == 0 {
		return 0
	}
	return float64(len(text)) / float64(len(rawHTML))
}
