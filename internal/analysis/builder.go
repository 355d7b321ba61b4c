package analysis

import (
	"fmt"
	"strings"

	"github.com/adcraft-ai/adcraft/internal/scraper"
)

// SubprojectInfo names the narrow page being analyzed when the analysis
// targets a subproject rather than a whole product.
type SubprojectInfo struct {
	Name string
	Type string
}

// PromptInput bundles everything the analysis prompt needs.
type PromptInput struct {
	Content    *scraper.ScrapedContent
	Language   Language
	Subproject *SubprojectInfo
}

// BuildPrompt renders the analysis instruction prompt for the text model.
// The instruction template is selected per language from a fixed table; the
// scraped content is embedded as a labeled plain-text block.
func BuildPrompt(in PromptInput) string {
	contentBlock := formatContent(in.Content)

	if in.Subproject != nil {
		return fmt.Sprintf(subprojectTemplates[in.Language], in.Subproject.Type, in.Subproject.Name, contentBlock)
	}
	return fmt.Sprintf(projectTemplates[in.Language], contentBlock)
}

func formatContent(c *scraper.ScrapedContent) string {
	if c == nil {
		return ""
	}

	var sb strings.Builder
	writeField := func(label, value string) {
		if value != "" {
			sb.WriteString(label)
			sb.WriteString(": ")
			sb.WriteString(value)
			sb.WriteString("\n")
		}
	}

	writeField("URL", c.URL)
	writeField("Title", c.Title)
	writeField("Description", c.MetaDescription)

	if len(c.Headings) > 0 {
		sb.WriteString("Headings:\n")
		for _, h := range c.Headings {
			sb.WriteString("- " + h + "\n")
		}
	}
	if len(c.Paragraphs) > 0 {
		sb.WriteString("Paragraphs:\n")
		for _, p := range c.Paragraphs {
			sb.WriteString("- " + p + "\n")
		}
	}
	if len(c.Buttons) > 0 {
		writeField("Buttons/CTA", strings.Join(c.Buttons, " | "))
	}
	if len(c.Images) > 0 {
		var alts []string
		for _, img := range c.Images {
			if img.Alt != "" {
				alts = append(alts, img.Alt)
			}
		}
		if len(alts) > 0 {
			writeField("Image descriptions", strings.Join(alts, " | "))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
