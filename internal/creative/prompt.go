package creative

import (
	"fmt"
	"strings"

	"github.com/adcraft-ai/adcraft/internal/analysis"
)

// ReferenceRole tags how a supplied reference image should be used.
type ReferenceRole string

const (
	RoleTemplate ReferenceRole = "template"
	RoleLogo     ReferenceRole = "logo"
	RolePerson   ReferenceRole = "person"
)

// RoleLabel returns the short label inserted before a reference image in
// the multimodal payload.
func RoleLabel(role ReferenceRole) string {
	switch role {
	case RoleTemplate:
		return "Template/Background:"
	case RoleLogo:
		return "Logo:"
	case RolePerson:
		return "Person/Product:"
	default:
		return string(role) + ":"
	}
}

// Reference is one reference image supplied for a generation call.
// Ephemeral: never persisted, only its presence is recorded.
type Reference struct {
	Role     ReferenceRole
	Data     []byte
	MimeType string
}

// AudienceInfo is the audience block of the creative prompt.
type AudienceInfo struct {
	Name         string
	Description  string
	PainPoints   []string
	Needs        []string
	Demographics string
}

// PromptContext bundles everything one creative prompt needs. Consumed once
// to build a single prompt string; the same input always yields the same
// prompt text.
type PromptContext struct {
	Summary     string
	KeyFeatures []string
	BrandVoice  string
	Audience    AudienceInfo
	Format      string // empty for chat-triggered generation
	Size        Size
	References  []Reference
	StyleNotes  string
	Language    analysis.Language
}

var languageNames = map[analysis.Language]string{
	analysis.LangUK: "Ukrainian (українська)",
	analysis.LangRU: "Russian (русский)",
	analysis.LangEN: "English",
}

// Image-generation models have been observed to ignore a single language
// mention, so the directive appears both at the top and in the closing
// reminder.
func languageDirective(lang analysis.Language) string {
	name := languageNames[lang]
	return fmt.Sprintf("CRITICAL LANGUAGE REQUIREMENT: ALL text rendered in the image (headlines, buttons, captions, any words at all) MUST be exclusively in %s. Do not mix languages. Do not use any other language for any visible text.", name)
}

const safeZoneDirective = `SAFE ZONE (vertical 9:16 story, 1080x1920 canvas): the top 250px and the bottom 250px of the canvas are covered by platform UI (profile header, reply bar, progress indicators). ALL text, logos, and critical elements MUST stay inside the vertical band from 250px to 1670px. Background artwork may fill the entire canvas edge to edge, but nothing that must be read may enter the top 250px or bottom 250px bands.`

// BuildPrompt renders the image-generation prompt in a fixed section order:
// language directive, product context, audience block, format directive,
// size directive, conditional safe zone, conditional reference-image
// instructions, optional style notes, closing requirements and reminders.
func BuildPrompt(pc PromptContext) string {
	var sb strings.Builder

	sb.WriteString(languageDirective(pc.Language))
	sb.WriteString("\n\n")

	sb.WriteString("Create a professional advertising creative for the following product.\n\n")
	sb.WriteString("PRODUCT:\n")
	sb.WriteString("Summary: " + pc.Summary + "\n")
	if len(pc.KeyFeatures) > 0 {
		sb.WriteString("Key features:\n")
		for i, f := range pc.KeyFeatures {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, f))
		}
	}
	if pc.BrandVoice != "" {
		sb.WriteString("Brand voice: " + pc.BrandVoice + "\n")
	}
	sb.WriteString("\n")

	sb.WriteString("TARGET AUDIENCE:\n")
	sb.WriteString("Name: " + pc.Audience.Name + "\n")
	if pc.Audience.Description != "" {
		sb.WriteString("Description: " + pc.Audience.Description + "\n")
	}
	if len(pc.Audience.PainPoints) > 0 {
		sb.WriteString("Pain points: " + strings.Join(pc.Audience.PainPoints, ", ") + "\n")
	}
	if len(pc.Audience.Needs) > 0 {
		sb.WriteString("Needs: " + strings.Join(pc.Audience.Needs, ", ") + "\n")
	}
	if pc.Audience.Demographics != "" {
		sb.WriteString("Demographics: " + pc.Audience.Demographics + "\n")
	}
	sb.WriteString("\n")

	sb.WriteString(FormatDirective(pc.Format))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("SIZE: exactly %dx%d pixels, aspect ratio %s.\n\n", pc.Size.Width, pc.Size.Height, pc.Size.Ratio))

	if pc.Size.Ratio == RatioVertical {
		sb.WriteString(safeZoneDirective)
		sb.WriteString("\n\n")
	}

	if len(pc.References) > 0 {
		writeReferenceSection(&sb, pc.References, pc.Audience.Name)
	}

	if notes := strings.TrimSpace(pc.StyleNotes); notes != "" {
		sb.WriteString("ADDITIONAL STYLE NOTES: " + notes + "\n\n")
	}

	sb.WriteString("STYLE REQUIREMENTS:\n")
	sb.WriteString("- High-resolution, professional advertising quality.\n")
	sb.WriteString("- Clear visual hierarchy, readable typography, strong contrast for text.\n")
	sb.WriteString("- No watermarks, no lorem ipsum, no distorted letters or gibberish words.\n")
	sb.WriteString("- The creative must speak directly to the audience above.\n\n")

	sb.WriteString(fmt.Sprintf("REMEMBER: this creative targets %q; address their needs (%s) and pain points (%s). ",
		pc.Audience.Name,
		strings.Join(pc.Audience.Needs, ", "),
		strings.Join(pc.Audience.PainPoints, ", ")))
	sb.WriteString(languageDirective(pc.Language))

	return sb.String()
}

func writeReferenceSection(sb *strings.Builder, refs []Reference, audienceName string) {
	present := map[ReferenceRole]bool{}
	for _, ref := range refs {
		present[ref.Role] = true
	}

	sb.WriteString("REFERENCE IMAGES:\n")
	if present[RoleTemplate] {
		sb.WriteString("- Template/Background: use this image as the style, layout, and background donor. Match its composition, palette, and mood.\n")
	}
	if present[RolePerson] {
		sb.WriteString("- Person/Product: feature this exact person or product as the focal subject of the creative. Preserve its appearance faithfully, do not redraw or replace it.\n")
	}
	if present[RoleLogo] {
		sb.WriteString("- Logo: embed this exact brand mark. Keep it crisp, unmodified, and clearly visible.\n")
	}
	sb.WriteString("Compositing order: build the background/template first, layer the person/product subject on top of it, and place the logo last, above everything. ")
	sb.WriteString(fmt.Sprintf("The composited result must still be an advertising creative aimed at %q.\n\n", audienceName))
}

// VariantSuffix returns the per-variant uniqueness instruction appended to
// the prompt when more than one image is requested.
func VariantSuffix(lang analysis.Language, variant, total int) string {
	switch lang {
	case analysis.LangRU:
		return fmt.Sprintf("\n\nВариант %d из %d: создай уникальную вариацию, заметно отличающуюся от остальных.", variant, total)
	case analysis.LangEN:
		return fmt.Sprintf("\n\nVariant %d of %d: produce a unique variation clearly distinct from the others.", variant, total)
	default:
		return fmt.Sprintf("\n\nВаріант %d з %d: створи унікальну варіацію, помітно відмінну від інших.", variant, total)
	}
}

// ResizePrompt builds the specialized prompt for re-laying-out an existing
// creative into a new aspect ratio. The original image travels as the sole
// template reference; the content must be recreated losslessly.
func ResizePrompt(lang analysis.Language, target Size) string {
	var sb strings.Builder

	sb.WriteString(languageDirective(lang))
	sb.WriteString("\n\n")
	sb.WriteString("Recreate the attached creative EXACTLY: same text, same product, same colors, same style, same logo. Do not add, remove, or reword anything. ")
	sb.WriteString(fmt.Sprintf("Re-lay-out the composition for a new canvas of exactly %dx%d pixels, aspect ratio %s, rearranging elements as needed so nothing is cropped or distorted.\n\n", target.Width, target.Height, target.Ratio))

	if target.Ratio == RatioVertical {
		sb.WriteString(safeZoneDirective)
		sb.WriteString("\n\n")
	}

	sb.WriteString(languageDirective(lang))
	return sb.String()
}
