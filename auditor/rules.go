package auditor

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Thresholds used by the scoring rules.
const (
	titleMinLen  = 10
	titleMaxLen  = 60
	metaIdealMin = 120
	metaIdealMax = 160
	metaShortLen = 50

	minSubheadings   = 2
	thinContentWords = 100
	richContentWords = 300
	minTextDensity   = 5 // percent

	denseParagraphWords = 150
	denseParagraphMalus = 10 // percentage points
	minIdentitySignals  = 3
	percentToScale      = 20 // maps a 0-100 percentage onto the 0-5 scale
)

// newEvidence builds one finding. The ID is a UUIDv5 over category and
// message, so identical findings always carry the same identifier.
func newEvidence(category, severity, message, summary, fix string, details []string) EvidenceItem {
	return EvidenceItem{
		ID:       uuid.NewSHA1(uuid.NameSpaceURL, []byte(category+"/"+message)).String(),
		Severity: severity,
		Message:  message,
		Summary:  summary,
		Fix:      fix,
		Details:  details,
	}
}

func scoreTitle(r *FeatureReport) RuleResult {
	var result RuleResult
	title := strings.TrimSpace(r.Title)

	if title == "" || title == titleSentinel {
		result.Evidence = append(result.Evidence, newEvidence(CategoryTitle, SeverityError,
			"Missing Page Title",
			"No <title> tag found in the page header.",
			"Add a descriptive title tag to your website header.", nil))
		return result
	}

	length := len(title)
	switch {
	case length >= titleMinLen && length <= titleMaxLen:
		result.Score = 5
	case length < titleMinLen:
		result.Score = 1
		result.Evidence = append(result.Evidence, newEvidence(CategoryTitle, SeverityWarning,
			"Title Too Short",
			"Your title is only "+strconv.Itoa(length)+" characters.",
			"Expand your title to 50-60 characters to improve visibility.",
			[]string{title}))
	default:
		result.Score = 3
		result.Evidence = append(result.Evidence, newEvidence(CategoryTitle, SeverityWarning,
			"Title Too Long",
			"Your title is "+strconv.Itoa(length)+" characters.",
			"Shorten your title to under 60 characters to prevent cutting off in search results.",
			[]string{title}))
	}
	return result
}

func scoreMetadata(r *FeatureReport) RuleResult {
	var result RuleResult
	meta := strings.TrimSpace(r.MetaDescription)

	if meta == "" {
		result.Evidence = append(result.Evidence, newEvidence(CategoryMetadata, SeverityError,
			"Missing Meta Description",
			"No description found in the page metadata.",
			"Add a unique meta description to summarize your page for AI and users.", nil))
		return result
	}

	length := len(meta)
	switch {
	case length >= metaIdealMin && length <= metaIdealMax:
		result.Score = 5
	case length < metaShortLen:
		result.Score = 2
		result.Evidence = append(result.Evidence, newEvidence(CategoryMetadata, SeverityWarning,
			"Meta Description Too Short",
			"Description is only "+strconv.Itoa(length)+" characters.",
			"Expand your meta description to approx. 150 characters.",
			[]string{meta}))
	default:
		result.Score = 4
	}
	return result
}

func scorePageStructure(r *FeatureReport) RuleResult {
	var result RuleResult
	h1Count := len(r.H1Texts)
	subHeadings := len(r.Headings) - h1Count

	switch {
	case h1Count == 1:
		result.Score = 5
	case h1Count == 0:
		result.Evidence = append(result.Evidence, newEvidence(CategoryPageStructure, SeverityError,
			"Missing H1 Heading",
			"No H1 tag found. AI uses this to understand the main topic.",
			"Add exactly one <h1> tag to your page content.", nil))
	default:
		result.Score = 2
		result.Evidence = append(result.Evidence, newEvidence(CategoryPageStructure, SeverityWarning,
			"Multiple H1 Headings",
			"Found "+strconv.Itoa(h1Count)+" H1 tags. This can confuse crawlers.",
			"Consolidate your content to use only one main H1 tag.",
			append([]string(nil), r.H1Texts...)))
	}

	if subHeadings < minSubheadings {
		result.Score = math.Max(0, result.Score-2)
		result.Evidence = append(result.Evidence, newEvidence(CategoryPageStructure, SeverityWarning,
			"Weak Heading Hierarchy",
			"Very few subheadings (H2, H3) found.",
			"Use subheadings to organize your content into logical sections.", nil))
	}
	return result
}

func scoreContentClarity(r *FeatureReport) RuleResult {
	result := RuleResult{Score: 3}
	words := r.TextLength

	if words < thinContentWords {
		result.Score = 0
		result.Evidence = append(result.Evidence, newEvidence(CategoryContentClarity, SeverityError,
			"Extremely Thin Content",
			"Only "+strconv.Itoa(words)+" words detected.",
			"Add more descriptive text about your business and services.", nil))
	} else if words > richContentWords {
		result.Score = 5
	}

	if r.TextToCodeRatio < minTextDensity {
		result.Score = math.Max(0, result.Score-2)
		result.Evidence = append(result.Evidence, newEvidence(CategoryContentClarity, SeverityWarning,
			"Low Text Density",
			"The page is mostly code with very little visible text.",
			"Ensure your main content is not hidden inside complex scripts or styles.", nil))
	}
	return result
}

// scoreReadability grades the share of sentences a machine can parse
// comfortably. The percentage is computed on a 0-100 scale (it also appears
// verbatim in the evidence summary) and then mapped onto the canonical 0-5
// scale.
func scoreReadability(r *FeatureReport) RuleResult {
	var result RuleResult
	total := r.SentenceCount
	longOnes := r.ComplexCount

	if total == 0 {
		result.Score = 5
		return result
	}

	accessible := max(0, total-longOnes)
	percent := math.Round(float64(accessible) / float64(total) * 100)

	if longOnes > 0 {
		result.Evidence = append(result.Evidence, newEvidence(CategoryReadability, SeverityWarning,
			"Complex Sentences Detected",
			strconv.Itoa(longOnes)+" out of "+strconv.Itoa(total)+" sentences are long (>25 words).",
			"Break long sentences into two to make them easier for AI to parse.",
			append([]string(nil), r.ComplexList...)))
	}

	if r.AvgParaLen > denseParagraphWords {
		percent = math.Max(0, percent-denseParagraphMalus)
		result.Evidence = append(result.Evidence, newEvidence(CategoryReadability, SeverityWarning,
			"Dense Paragraphs",
			"Paragraphs are too long and hard to scan.",
			`Use more frequent line breaks to create "white space".`, nil))
	}

	result.Score = percent / percentToScale
	return result
}

// scoreImageAlt grades the share of images that carry alt text, on the same
// percentage-then-rescale convention as scoreReadability.
func scoreImageAlt(r *FeatureReport) RuleResult {
	var result RuleResult
	total := len(r.Images)

	if total == 0 {
		result.Score = 5
		result.Evidence = append(result.Evidence, newEvidence(CategoryImageAlt, SeverityWarning,
			"No Images Detected",
			"Your page has no meaningful images to support your content.",
			"Add relevant images to make your site more engaging.", nil))
		return result
	}

	missing := len(r.MissingAlt)
	good := total - missing
	percent := math.Round(float64(good) / float64(total) * 100)

	if missing > 0 {
		tags := make([]string, 0, missing)
		for _, snippet := range r.MissingAlt {
			tags = append(tags, snippet.Tag)
		}
		result.Evidence = append(result.Evidence, newEvidence(CategoryImageAlt, SeverityError,
			"Missing Image Alt Text",
			strconv.Itoa(missing)+" out of "+strconv.Itoa(total)+" meaningful images are missing descriptions.",
			`Add "alt" attributes to these images so AI can "see" them.`,
			tags))
	}

	result.Score = percent / percentToScale
	return result
}

func scoreAIClarity(r *FeatureReport) RuleResult {
	var result RuleResult
	signals := len(r.IdentitySignals)

	switch {
	case signals >= minIdentitySignals:
		result.Score = 5
	case signals > 0:
		result.Score = 3
	default:
		result.Evidence = append(result.Evidence, newEvidence(CategoryAIClarity, SeverityWarning,
			"Weak Identity Signals",
			"AI may struggle to identify your core business type.",
			`Use standard terms like "Services", "About Us", and "Contact" in your headers.`, nil))
	}
	return result
}

func scoreSchema(r *FeatureReport) RuleResult {
	var result RuleResult
	if len(r.SchemaBlocks) > 0 {
		result.Score = 5
		return result
	}
	result.Evidence = append(result.Evidence, newEvidence(CategorySchema, SeverityWarning,
		"Missing Schema Markup",
		"No structured data (JSON-LD) detected.",
		"Add Organization or LocalBusiness schema to help AI verify your details.", nil))
	return result
}

func scoreTechnicalSEO(r *FeatureReport) RuleResult {
	result := RuleResult{Score: 5}

	if r.Viewport == "" {
		result.Score -= 3
		result.Evidence = append(result.Evidence, newEvidence(CategoryTechSEO, SeverityError,
			"Mobile Optimization Issue",
			"Missing viewport meta tag.",
			"Add a viewport meta tag to ensure your site works on mobile devices.", nil))
	}

	// noindex overrides everything else in this category.
	if strings.Contains(strings.ToLower(r.MetaRobots), "noindex") {
		result.Score = 0
		result.Evidence = append(result.Evidence, newEvidence(CategoryTechSEO, SeverityError,
			"Search Engine Blocked",
			`A "noindex" tag is preventing AI from reading this page.`,
			`Remove the "noindex" instruction from your site settings.`, nil))
	}

	result.Score = math.Max(0, result.Score)
	return result
}
