package auditor

import (
	"html"
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// titleSentinel is reported when the page has no <title> element at all.
const titleSentinel = "N/A"

// complexSentenceWords is the word count above which a sentence is
// considered too long for machine parsing.
const complexSentenceWords = 25

// identityKeywords mark headings and link texts that tell a crawler what
// the site is (About, Contact, Services...). Matching is a case-insensitive
// substring check; a text is recorded once per keyword it contains.
var identityKeywords = []string{"about", "contact", "service", "product", "privacy", "term"}

var headingTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Extract parses raw HTML into a FeatureReport. Malformed markup never
// fails the extraction: the parser builds a best-effort tree and absent
// elements simply leave their fields empty.
func Extract(rawHTML, targetURL string) *FeatureReport {
	report := &FeatureReport{
		Title:       titleSentinel,
		HTMLLength:  len(rawHTML),
		JSDetection: DetectJS(rawHTML),
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return report
	}

	host := ""
	if parsed, err := url.Parse(targetURL); err == nil {
		host = parsed.Host
	}

	if title := doc.Find("title"); title.Length() > 0 {
		report.Title = strings.TrimSpace(title.First().Text())
	}

	// Single pass over all meta elements. Last match wins, as browsers
	// effectively behave for duplicated descriptions.
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name := strings.ToLower(s.AttrOr("name", ""))
		property := strings.ToLower(s.AttrOr("property", ""))
		content := strings.TrimSpace(s.AttrOr("content", ""))

		if name == "description" || property == "og:description" {
			report.MetaDescription = content
		}
		if name == "robots" {
			report.MetaRobots = content
		}
		if name == "viewport" {
			report.Viewport = content
		}
	})

	// Headings h1..h6 in fixed level order, document order within a level.
	for _, tag := range headingTags {
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			report.Headings = append(report.Headings, Heading{Tag: tag, Text: text})
			if tag == "h1" {
				report.H1Texts = append(report.H1Texts, text)
			}
			report.IdentitySignals = append(report.IdentitySignals, matchIdentity(text)...)
		})
	}

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		report.Paragraphs = append(report.Paragraphs, text)
		report.TextLength += len(strings.Fields(text))

		for _, fragment := range sentenceSplit.Split(text, -1) {
			fragment = strings.TrimSpace(fragment)
			if fragment == "" {
				continue
			}
			report.SentenceCount++
			if len(strings.Fields(fragment)) > complexSentenceWords {
				report.ComplexCount++
				report.ComplexList = append(report.ComplexList, fragment)
			}
		}
	})

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		alt := s.AttrOr("alt", "")
		report.Images = append(report.Images, Image{Src: src, Alt: alt})
		if alt == "" {
			report.MissingAlt = append(report.MissingAlt, Snippet{
				Ref: src,
				Tag: `<img src="` + html.EscapeString(src) + `">`,
			})
		}
	})

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		report.SchemaBlocks = append(report.SchemaBlocks, strings.TrimSpace(s.Text()))
	})

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		text := strings.TrimSpace(s.Text())
		aria := s.AttrOr("aria-label", "")

		report.Links = append(report.Links, href)

		if (host != "" && strings.Contains(href, host)) || strings.HasPrefix(href, "/") {
			report.InternalLinks = append(report.InternalLinks, href)
		}

		if text == "" && aria == "" {
			report.EmptyLinks = append(report.EmptyLinks, Snippet{
				Ref: href,
				Tag: `<a href="` + html.EscapeString(href) + `"></a>`,
			})
		}

		report.IdentitySignals = append(report.IdentitySignals, matchIdentity(text)...)
	})

	report.ListElements = doc.Find("ul").Length() + doc.Find("ol").Length()

	if report.HTMLLength > 0 {
		report.TextToCodeRatio = round2(float64(report.TextLength) / float64(report.HTMLLength) * 100)
	}
	if report.SentenceCount > 0 {
		report.AvgSentenceLen = float64(report.TextLength) / float64(report.SentenceCount)
	}
	if len(report.Paragraphs) > 0 {
		report.AvgParaLen = float64(report.TextLength) / float64(len(report.Paragraphs))
	}

	return report
}

// matchIdentity returns one copy of text for every identity keyword it
// contains. Duplicates are intentional: they mirror how strongly the page
// repeats its identity vocabulary.
func matchIdentity(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var matches []string
	for _, keyword := range identityKeywords {
		if strings.Contains(lower, keyword) {
			matches = append(matches, text)
		}
	}
	return matches
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
