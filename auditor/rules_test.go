package auditor

import (
	"strings"
	"testing"
)

func assertScore(t *testing.T, res RuleResult, want float64, evidenceCount int) {
	t.Helper()
	if res.Score != want {
		t.Errorf("Expected score %v, got %v", want, res.Score)
	}
	if len(res.Evidence) != evidenceCount {
		t.Errorf("Expected %d evidence items, got %d: %+v", evidenceCount, len(res.Evidence), res.Evidence)
	}
}

func TestScoreTitle(t *testing.T) {
	t.Run("Missing", func(t *testing.T) {
		res := scoreTitle(&FeatureReport{Title: ""})
		assertScore(t, res, 0, 1)
		if res.Evidence[0].Severity != SeverityError {
			t.Errorf("Expected error severity, got %s", res.Evidence[0].Severity)
		}
	})

	t.Run("Sentinel", func(t *testing.T) {
		res := scoreTitle(&FeatureReport{Title: "N/A"})
		assertScore(t, res, 0, 1)
	})

	t.Run("TooShort", func(t *testing.T) {
		res := scoreTitle(&FeatureReport{Title: "a"})
		assertScore(t, res, 1, 1)
		if res.Evidence[0].Severity != SeverityWarning {
			t.Errorf("Expected warning severity, got %s", res.Evidence[0].Severity)
		}
		if len(res.Evidence[0].Details) != 1 || res.Evidence[0].Details[0] != "a" {
			t.Errorf("Expected literal title in details, got %v", res.Evidence[0].Details)
		}
	})

	t.Run("TooLong", func(t *testing.T) {
		res := scoreTitle(&FeatureReport{Title: strings.Repeat("x", 65)})
		assertScore(t, res, 3, 1)
	})

	t.Run("Ideal", func(t *testing.T) {
		res := scoreTitle(&FeatureReport{Title: strings.Repeat("x", 30)})
		assertScore(t, res, 5, 0)
	})
}

func TestScoreMetadata(t *testing.T) {
	t.Run("Missing", func(t *testing.T) {
		res := scoreMetadata(&FeatureReport{})
		assertScore(t, res, 0, 1)
	})

	t.Run("TooShort", func(t *testing.T) {
		res := scoreMetadata(&FeatureReport{MetaDescription: strings.Repeat("d", 40)})
		assertScore(t, res, 2, 1)
	})

	t.Run("Ideal", func(t *testing.T) {
		res := scoreMetadata(&FeatureReport{MetaDescription: strings.Repeat("d", 140)})
		assertScore(t, res, 5, 0)
	})

	t.Run("Acceptable", func(t *testing.T) {
		res := scoreMetadata(&FeatureReport{MetaDescription: strings.Repeat("d", 80)})
		assertScore(t, res, 4, 0)
	})
}

func TestScorePageStructure(t *testing.T) {
	t.Run("Ideal", func(t *testing.T) {
		res := scorePageStructure(&FeatureReport{
			H1Texts: []string{"Main"},
			Headings: []Heading{
				{Tag: "h1", Text: "Main"},
				{Tag: "h2", Text: "Sub A"},
				{Tag: "h2", Text: "Sub B"},
			},
		})
		assertScore(t, res, 5, 0)
	})

	t.Run("NoH1", func(t *testing.T) {
		res := scorePageStructure(&FeatureReport{})
		assertScore(t, res, 0, 2) // missing H1 plus weak hierarchy
	})

	t.Run("MultipleH1s", func(t *testing.T) {
		res := scorePageStructure(&FeatureReport{
			H1Texts: []string{"First", "Second"},
			Headings: []Heading{
				{Tag: "h1", Text: "First"},
				{Tag: "h1", Text: "Second"},
				{Tag: "h2", Text: "Sub A"},
				{Tag: "h2", Text: "Sub B"},
			},
		})
		assertScore(t, res, 2, 1)
		if len(res.Evidence[0].Details) != 2 {
			t.Errorf("Expected both H1 texts listed, got %v", res.Evidence[0].Details)
		}
	})

	t.Run("WeakHierarchy", func(t *testing.T) {
		res := scorePageStructure(&FeatureReport{
			H1Texts: []string{"Main"},
			Headings: []Heading{
				{Tag: "h1", Text: "Main"},
				{Tag: "h2", Text: "Only sub"},
			},
		})
		assertScore(t, res, 3, 1)
	})
}

func TestScoreContentClarity(t *testing.T) {
	t.Run("Thin", func(t *testing.T) {
		res := scoreContentClarity(&FeatureReport{TextLength: 50, TextToCodeRatio: 10})
		assertScore(t, res, 0, 1)
	})

	t.Run("ThinAndDiluted", func(t *testing.T) {
		res := scoreContentClarity(&FeatureReport{TextLength: 50, TextToCodeRatio: 1})
		assertScore(t, res, 0, 2)
	})

	t.Run("Moderate", func(t *testing.T) {
		res := scoreContentClarity(&FeatureReport{TextLength: 200, TextToCodeRatio: 10})
		assertScore(t, res, 3, 0)
	})

	t.Run("Rich", func(t *testing.T) {
		res := scoreContentClarity(&FeatureReport{TextLength: 400, TextToCodeRatio: 10})
		assertScore(t, res, 5, 0)
	})

	t.Run("RichButDiluted", func(t *testing.T) {
		res := scoreContentClarity(&FeatureReport{TextLength: 400, TextToCodeRatio: 2})
		assertScore(t, res, 3, 1)
	})
}

func TestScoreReadability(t *testing.T) {
	t.Run("NoSentences", func(t *testing.T) {
		res := scoreReadability(&FeatureReport{})
		assertScore(t, res, 5, 0)
	})

	t.Run("SomeComplex", func(t *testing.T) {
		res := scoreReadability(&FeatureReport{
			SentenceCount: 4,
			ComplexCount:  1,
			ComplexList:   []string{"a very long sentence"},
		})
		// 3 of 4 accessible: 75% -> 3.75
		assertScore(t, res, 3.75, 1)
		if len(res.Evidence[0].Details) != 1 {
			t.Errorf("Expected the complex sentence listed, got %v", res.Evidence[0].Details)
		}
	})

	t.Run("DenseParagraphs", func(t *testing.T) {
		res := scoreReadability(&FeatureReport{
			SentenceCount: 10,
			AvgParaLen:    200,
		})
		// 100% minus the dense-paragraph malus: 90 -> 4.5
		assertScore(t, res, 4.5, 1)
	})

	t.Run("ComplexAndDense", func(t *testing.T) {
		res := scoreReadability(&FeatureReport{
			SentenceCount: 4,
			ComplexCount:  1,
			AvgParaLen:    200,
		})
		// 75 - 10 = 65 -> 3.25
		assertScore(t, res, 3.25, 2)
	})
}

func TestScoreImageAlt(t *testing.T) {
	t.Run("NoImages", func(t *testing.T) {
		res := scoreImageAlt(&FeatureReport{})
		assertScore(t, res, 5, 1)
		if res.Evidence[0].Severity != SeverityWarning {
			t.Errorf("Expected advisory warning, got %s", res.Evidence[0].Severity)
		}
	})

	t.Run("OneOfThreeMissing", func(t *testing.T) {
		res := scoreImageAlt(&FeatureReport{
			Images: []Image{
				{Src: "a.png", Alt: "A"},
				{Src: "b.png", Alt: "B"},
				{Src: "c.png"},
			},
			MissingAlt: []Snippet{{Ref: "c.png", Tag: `<img src="c.png">`}},
		})
		// round(100*2/3) = 67 -> 3.35
		assertScore(t, res, 3.35, 1)
		if res.Evidence[0].Severity != SeverityError {
			t.Errorf("Expected error severity, got %s", res.Evidence[0].Severity)
		}
		if len(res.Evidence[0].Details) != 1 || res.Evidence[0].Details[0] != `<img src="c.png">` {
			t.Errorf("Expected exactly the offending tag, got %v", res.Evidence[0].Details)
		}
		if !strings.Contains(res.Evidence[0].Summary, "1 out of 3") {
			t.Errorf("Expected contextualized summary, got %q", res.Evidence[0].Summary)
		}
	})

	t.Run("AllTagged", func(t *testing.T) {
		res := scoreImageAlt(&FeatureReport{
			Images: []Image{{Src: "a.png", Alt: "A"}, {Src: "b.png", Alt: "B"}},
		})
		assertScore(t, res, 5, 0)
	})
}

func TestScoreAIClarity(t *testing.T) {
	t.Run("Strong", func(t *testing.T) {
		res := scoreAIClarity(&FeatureReport{IdentitySignals: []string{"About", "Contact", "Services"}})
		assertScore(t, res, 5, 0)
	})

	t.Run("Weak", func(t *testing.T) {
		res := scoreAIClarity(&FeatureReport{IdentitySignals: []string{"About"}})
		assertScore(t, res, 3, 0)
	})

	t.Run("None", func(t *testing.T) {
		res := scoreAIClarity(&FeatureReport{})
		assertScore(t, res, 0, 1)
	})
}

func TestScoreSchema(t *testing.T) {
	t.Run("Present", func(t *testing.T) {
		res := scoreSchema(&FeatureReport{SchemaBlocks: []string{`{"@type":"Organization"}`}})
		assertScore(t, res, 5, 0)
	})

	t.Run("Missing", func(t *testing.T) {
		res := scoreSchema(&FeatureReport{})
		assertScore(t, res, 0, 1)
	})
}

func TestScoreTechnicalSEO(t *testing.T) {
	t.Run("Clean", func(t *testing.T) {
		res := scoreTechnicalSEO(&FeatureReport{Viewport: "width=device-width"})
		assertScore(t, res, 5, 0)
	})

	t.Run("MissingViewport", func(t *testing.T) {
		res := scoreTechnicalSEO(&FeatureReport{})
		assertScore(t, res, 2, 1)
	})

	t.Run("NoindexOverridesEverything", func(t *testing.T) {
		res := scoreTechnicalSEO(&FeatureReport{
			Viewport:   "width=device-width",
			MetaRobots: "noindex, nofollow",
		})
		assertScore(t, res, 0, 1)
	})

	t.Run("NoindexAndMissingViewport", func(t *testing.T) {
		res := scoreTechnicalSEO(&FeatureReport{MetaRobots: "NOINDEX"})
		assertScore(t, res, 0, 2)
	})
}

func TestEvidenceIDsAreStable(t *testing.T) {
	a := scoreTitle(&FeatureReport{Title: ""})
	b := scoreTitle(&FeatureReport{Title: ""})

	if a.Evidence[0].ID == "" {
		t.Fatal("Expected a non-empty evidence ID")
	}
	if a.Evidence[0].ID != b.Evidence[0].ID {
		t.Error("Expected identical findings to carry identical IDs")
	}

	c := scoreMetadata(&FeatureReport{})
	if c.Evidence[0].ID == a.Evidence[0].ID {
		t.Error("Expected findings from different categories to carry different IDs")
	}
}
