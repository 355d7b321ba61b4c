package analysis_test

import (
	"strings"
	"testing"

	"github.com/adcraft-ai/adcraft/internal/analysis"
	"github.com/adcraft-ai/adcraft/internal/scraper"
)

func sampleContent() *scraper.ScrapedContent {
	return &scraper.ScrapedContent{
		URL:             "https://acme.example",
		Title:           "Acme Widgets",
		MetaDescription: "Modular widgets for workshops",
		Headings:        []string{"Pros", "Built to last"},
		Paragraphs:      []string{"Our widgets survive a decade of daily use."},
		Buttons:         []string{"Buy now"},
		Images:          []scraper.ImageInfo{{URL: "/hero.png", Alt: "A widget on a workbench"}},
	}
}

func TestBuildPromptEmbedsContent(t *testing.T) {
	t.Parallel()

	prompt := analysis.BuildPrompt(analysis.PromptInput{
		Content:  sampleContent(),
		Language: analysis.LangEN,
	})

	for _, want := range []string{
		"Acme Widgets",
		"Modular widgets for workshops",
		"Pros",
		"Buy now",
		"A widget on a workbench",
		"https://acme.example",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

// The JSON contract embedded in each template must be identical across
// languages, otherwise the parser would need per-language handling.
func TestBuildPromptStructuralStability(t *testing.T) {
	t.Parallel()

	fields := []string{
		`"summary"`,
		`"key_features"`,
		`"brand_voice"`,
		`"target_audiences"`,
		`"pain_points"`,
		`"needs"`,
		`"demographics"`,
	}

	for _, lang := range []analysis.Language{analysis.LangUK, analysis.LangRU, analysis.LangEN} {
		prompt := analysis.BuildPrompt(analysis.PromptInput{
			Content:  sampleContent(),
			Language: lang,
		})
		for _, f := range fields {
			if !strings.Contains(prompt, f) {
				t.Errorf("language %s: prompt missing JSON field %s", lang, f)
			}
		}
	}
}

func TestBuildPromptSubprojectVariant(t *testing.T) {
	t.Parallel()

	prompt := analysis.BuildPrompt(analysis.PromptInput{
		Content:  sampleContent(),
		Language: analysis.LangEN,
		Subproject: &analysis.SubprojectInfo{
			Name: "Spring webinar",
			Type: "webinar",
		},
	})

	if !strings.Contains(prompt, "Spring webinar") {
		t.Error("subproject name missing from prompt")
	}
	if !strings.Contains(prompt, "webinar") {
		t.Error("subproject type missing from prompt")
	}
}

func TestNormalizeLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  analysis.Language
	}{
		{"uk", analysis.LangUK},
		{"ru", analysis.LangRU},
		{"en", analysis.LangEN},
		{"EN", analysis.LangEN},
		{"", analysis.LangUK},
		{"de", analysis.LangUK},
	}

	for _, tc := range tests {
		if got := analysis.NormalizeLanguage(tc.input); got != tc.want {
			t.Errorf("NormalizeLanguage(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}
