package creative_test

import (
	"strings"
	"testing"

	"github.com/adcraft-ai/adcraft/internal/analysis"
	"github.com/adcraft-ai/adcraft/internal/creative"
)

func samplePromptContext() creative.PromptContext {
	return creative.PromptContext{
		Summary:     "Acme Widgets sells modular widgets.",
		KeyFeatures: []string{"Modular design", "Lifetime warranty"},
		BrandVoice:  "Practical and friendly",
		Audience: creative.AudienceInfo{
			Name:         "Workshop owners",
			Description:  "Small workshop owners upgrading tooling",
			PainPoints:   []string{"Tools break under daily load"},
			Needs:        []string{"Durable equipment"},
			Demographics: "30-50, small business owners",
		},
		Format:   "product-showcase",
		Size:     creative.Resolve("instagram-post"),
		Language: analysis.LangEN,
	}
}

func TestBuildPromptSections(t *testing.T) {
	t.Parallel()

	prompt := creative.BuildPrompt(samplePromptContext())

	for _, want := range []string{
		"Acme Widgets sells modular widgets.",
		"Workshop owners",
		"Tools break under daily load",
		"Durable equipment",
		"exactly 1080x1080 pixels, aspect ratio 1:1",
		"STYLE REQUIREMENTS:",
		"REMEMBER:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

// The language directive is intentionally stated twice, once at the top and
// once in the closing reminder.
func TestBuildPromptRepeatsLanguageDirective(t *testing.T) {
	t.Parallel()

	prompt := creative.BuildPrompt(samplePromptContext())
	if got := strings.Count(prompt, "CRITICAL LANGUAGE REQUIREMENT"); got != 2 {
		t.Errorf("language directive appears %d times, want 2", got)
	}
	if !strings.Contains(prompt, "English") {
		t.Error("language name missing from directive")
	}
}

func TestBuildPromptSafeZone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sizeID   string
		wantSafe bool
	}{
		{"story gets safe zone", "instagram-story", true},
		{"raw vertical gets safe zone", "1080x1920", true},
		{"square has no safe zone", "instagram-post", false},
		{"horizontal has no safe zone", "youtube-thumbnail", false},
		{"portrait has no safe zone", "instagram-portrait", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			pc := samplePromptContext()
			pc.Size = creative.Resolve(tc.sizeID)
			prompt := creative.BuildPrompt(pc)

			hasSafe := strings.Contains(prompt, "SAFE ZONE")
			if hasSafe != tc.wantSafe {
				t.Errorf("safe zone present = %v, want %v", hasSafe, tc.wantSafe)
			}
			if tc.wantSafe {
				for _, band := range []string{"top 250px", "bottom 250px", "250px to 1670px"} {
					if !strings.Contains(prompt, band) {
						t.Errorf("safe zone missing band %q", band)
					}
				}
			}
		})
	}
}

func TestBuildPromptFormatDirective(t *testing.T) {
	t.Parallel()

	known := samplePromptContext()
	known.Format = "before-after"
	if prompt := creative.BuildPrompt(known); !strings.Contains(prompt, creative.FormatDirective("before-after")) {
		t.Error("known format directive missing")
	}

	if creative.FormatDirective("hologram") != creative.FormatDirective("") {
		t.Error("unknown format should fall back to the generic directive")
	}

	unknown := samplePromptContext()
	unknown.Format = "hologram"
	if prompt := creative.BuildPrompt(unknown); !strings.Contains(prompt, creative.FormatDirective("")) {
		t.Error("generic directive missing for unknown format")
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	t.Parallel()

	pc := samplePromptContext()
	if creative.BuildPrompt(pc) != creative.BuildPrompt(pc) {
		t.Error("identical inputs produced different prompts")
	}
}

func TestBuildPromptReferenceSection(t *testing.T) {
	t.Parallel()

	pc := samplePromptContext()
	pc.References = []creative.Reference{
		{Role: creative.RolePerson, Data: []byte{1}, MimeType: "image/png"},
		{Role: creative.RoleTemplate, Data: []byte{2}, MimeType: "image/png"},
		{Role: creative.RoleLogo, Data: []byte{3}, MimeType: "image/png"},
	}
	prompt := creative.BuildPrompt(pc)

	for _, want := range []string{"REFERENCE IMAGES:", "Template/Background:", "Person/Product:", "Logo:", "Compositing order"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("reference section missing %q", want)
		}
	}

	noRefs := samplePromptContext()
	if strings.Contains(creative.BuildPrompt(noRefs), "REFERENCE IMAGES:") {
		t.Error("reference section present without references")
	}
}

func TestVariantSuffix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lang analysis.Language
		want string
	}{
		{analysis.LangUK, "Варіант 2 з 3"},
		{analysis.LangRU, "Вариант 2 из 3"},
		{analysis.LangEN, "Variant 2 of 3"},
	}

	for _, tc := range tests {
		if got := creative.VariantSuffix(tc.lang, 2, 3); !strings.Contains(got, tc.want) {
			t.Errorf("VariantSuffix(%s) = %q, want substring %q", tc.lang, got, tc.want)
		}
	}
}

func TestResizePrompt(t *testing.T) {
	t.Parallel()

	vertical := creative.ResizePrompt(analysis.LangEN, creative.Resolve("instagram-story"))
	if !strings.Contains(vertical, "exactly 1080x1920 pixels") {
		t.Error("target size missing from resize prompt")
	}
	if !strings.Contains(vertical, "SAFE ZONE") {
		t.Error("vertical resize prompt missing safe zone")
	}
	if got := strings.Count(vertical, "CRITICAL LANGUAGE REQUIREMENT"); got != 2 {
		t.Errorf("language directive appears %d times, want 2", got)
	}

	square := creative.ResizePrompt(analysis.LangEN, creative.Resolve("instagram-post"))
	if strings.Contains(square, "SAFE ZONE") {
		t.Error("square resize prompt should not carry safe zone")
	}
}
