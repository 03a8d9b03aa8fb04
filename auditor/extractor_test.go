package auditor

import (
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title> Plumbing Experts of Springfield </title>
<meta name="Description" content="first description">
<meta property="og:description" content="Trusted plumbing services for homes and businesses across Springfield.">
<meta name="robots" content="index, follow">
<meta name="viewport" content="width=device-width, initial-scale=1">
<script type="application/ld+json">{"@type":"LocalBusiness"}</script>
</head>
<body>
<h1>Our Plumbing Services</h1>
<h2>About Us</h2>
<h2>Why choose us</h2>
<h3>Contact details</h3>
<p>We fix pipes. We do it fast!</p>
<p>   </p>
<p>Call us today.</p>
<img src="/logo.png" alt="Company logo">
<img src="/pipes.png" alt="">
<a href="/about">About our team</a>
<a href="https://example.com/services">Services</a>
<a href="https://other.org/partners"></a>
<ul><li>one</li></ul>
<ol><li>two</li></ol>
</body>
</html>`

func TestExtract(t *testing.T) {
	report := Extract(samplePage, "https://example.com/home")

	t.Run("Title", func(t *testing.T) {
		if report.Title != "Plumbing Experts of Springfield" {
			t.Errorf("Expected trimmed title, got %q", report.Title)
		}
	})

	t.Run("Meta", func(t *testing.T) {
		// og:description comes later in the document, so it wins.
		want := "Trusted plumbing services for homes and businesses across Springfield."
		if report.MetaDescription != want {
			t.Errorf("Expected og:description to win, got %q", report.MetaDescription)
		}
		if report.MetaRobots != "index, follow" {
			t.Errorf("Unexpected robots value: %q", report.MetaRobots)
		}
		if report.Viewport == "" {
			t.Error("Expected viewport to be captured")
		}
	})

	t.Run("Headings", func(t *testing.T) {
		if len(report.Headings) != 4 {
			t.Fatalf("Expected 4 headings, got %d", len(report.Headings))
		}
		wantOrder := []string{"h1", "h2", "h2", "h3"}
		for i, h := range report.Headings {
			if h.Tag != wantOrder[i] {
				t.Errorf("Heading %d: expected tag %s, got %s", i, wantOrder[i], h.Tag)
			}
		}
		if len(report.H1Texts) != 1 || report.H1Texts[0] != "Our Plumbing Services" {
			t.Errorf("Unexpected H1 texts: %v", report.H1Texts)
		}
	})

	t.Run("IdentitySignals", func(t *testing.T) {
		// Headings: "Our Plumbing Services" (service), "About Us" (about),
		// "Contact details" (contact). Links: "About our team" (about),
		// "Services" (service).
		if len(report.IdentitySignals) != 5 {
			t.Errorf("Expected 5 identity signals, got %d: %v",
				len(report.IdentitySignals), report.IdentitySignals)
		}
	})

	t.Run("Paragraphs", func(t *testing.T) {
		if len(report.Paragraphs) != 2 {
			t.Fatalf("Expected 2 non-empty paragraphs, got %d", len(report.Paragraphs))
		}
		if report.TextLength != 10 {
			t.Errorf("Expected 10 words, got %d", report.TextLength)
		}
		if report.SentenceCount != 3 {
			t.Errorf("Expected 3 sentences, got %d", report.SentenceCount)
		}
		if report.ComplexCount != 0 {
			t.Errorf("Expected no complex sentences, got %d", report.ComplexCount)
		}
		if report.AvgParaLen != 5 {
			t.Errorf("Expected average paragraph length 5, got %v", report.AvgParaLen)
		}
	})

	t.Run("Images", func(t *testing.T) {
		if len(report.Images) != 2 {
			t.Fatalf("Expected 2 images, got %d", len(report.Images))
		}
		if len(report.MissingAlt) != 1 {
			t.Fatalf("Expected 1 missing-alt image, got %d", len(report.MissingAlt))
		}
		if report.MissingAlt[0].Tag != `<img src="/pipes.png">` {
			t.Errorf("Unexpected rendered tag: %q", report.MissingAlt[0].Tag)
		}
	})

	t.Run("Links", func(t *testing.T) {
		if len(report.Links) != 3 {
			t.Errorf("Expected 3 links, got %d", len(report.Links))
		}
		if len(report.InternalLinks) != 2 {
			t.Errorf("Expected 2 internal links, got %v", report.InternalLinks)
		}
		if len(report.EmptyLinks) != 1 {
			t.Fatalf("Expected 1 empty link, got %d", len(report.EmptyLinks))
		}
		if report.EmptyLinks[0].Tag != `<a href="https://other.org/partners"></a>` {
			t.Errorf("Unexpected empty link tag: %q", report.EmptyLinks[0].Tag)
		}
	})

	t.Run("SchemaAndLists", func(t *testing.T) {
		if len(report.SchemaBlocks) != 1 {
			t.Fatalf("Expected 1 schema block, got %d", len(report.SchemaBlocks))
		}
		if !strings.Contains(report.SchemaBlocks[0], "LocalBusiness") {
			t.Errorf("Unexpected schema block: %q", report.SchemaBlocks[0])
		}
		if report.ListElements != 2 {
			t.Errorf("Expected 2 list elements, got %d", report.ListElements)
		}
	})

	t.Run("DerivedMetrics", func(t *testing.T) {
		if report.HTMLLength != len(samplePage) {
			t.Errorf("Expected HTML length %d, got %d", len(samplePage), report.HTMLLength)
		}
		if report.TextToCodeRatio <= 0 {
			t.Errorf("Expected positive text-to-code ratio, got %v", report.TextToCodeRatio)
		}
		if report.AvgSentenceLen <= 0 {
			t.Errorf("Expected positive average sentence length, got %v", report.AvgSentenceLen)
		}
	})
}

func TestExtractMissingTitle(t *testing.T) {
	report := Extract("<html><body><p>hello</p></body></html>", "https://example.com")
	if report.Title != "N/A" {
		t.Errorf("Expected sentinel title for missing <title>, got %q", report.Title)
	}

	// An empty but present title is empty, not the sentinel.
	report = Extract("<html><head><title></title></head></html>", "https://example.com")
	if report.Title != "" {
		t.Errorf("Expected empty title for empty <title>, got %q", report.Title)
	}
}

func TestExtractComplexSentences(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 30))
	report := Extract("<html><body><p>"+long+". Short one.</p></body></html>", "https://example.com")

	if report.SentenceCount != 2 {
		t.Fatalf("Expected 2 sentences, got %d", report.SentenceCount)
	}
	if report.ComplexCount != 1 {
		t.Errorf("Expected 1 complex sentence, got %d", report.ComplexCount)
	}
	if len(report.ComplexList) != 1 || !strings.HasPrefix(report.ComplexList[0], "word") {
		t.Errorf("Unexpected complex sentence list: %v", report.ComplexList)
	}
}

func TestExtractMalformedHTML(t *testing.T) {
	// Unclosed tags must never fail extraction; the parser builds a
	// best-effort tree.
	report := Extract("<html><body><h1>Broken <p>unclosed paragraph <img src='x.png'", "https://example.com")

	if len(report.H1Texts) != 1 {
		t.Errorf("Expected the h1 to survive malformed markup, got %v", report.H1Texts)
	}
	if len(report.Images) != 1 {
		t.Errorf("Expected the img to survive malformed markup, got %d", len(report.Images))
	}
}

func TestExtractEmptyInput(t *testing.T) {
	report := Extract("", "https://example.com")

	if report.Title != "N/A" {
		t.Errorf("Expected sentinel title, got %q", report.Title)
	}
	if report.HTMLLength != 0 {
		t.Errorf("Expected zero HTML length, got %d", report.HTMLLength)
	}
	if report.TextToCodeRatio != 0 {
		t.Errorf("Expected zero ratio on empty input, got %v", report.TextToCodeRatio)
	}
	if report.AvgParaLen != 0 || report.AvgSentenceLen != 0 {
		t.Errorf("Expected zero averages on empty input, got %v / %v",
			report.AvgParaLen, report.AvgSentenceLen)
	}
}

func TestExtractInternalLinksWithoutHost(t *testing.T) {
	report := Extract(`<html><body><a href="/about">About</a><a href="https://x.org/p">X</a></body></html>`, "not a url")

	// Without a parseable host only root-relative links count as internal.
	if len(report.InternalLinks) != 1 || report.InternalLinks[0] != "/about" {
		t.Errorf("Unexpected internal links: %v", report.InternalLinks)
	}
}
