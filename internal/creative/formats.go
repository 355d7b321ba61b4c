package creative

// formatDirectives maps a format archetype tag to its one-paragraph
// stylistic directive. Unknown tags fall back to genericFormatDirective,
// never an error.
var formatDirectives = map[string]string{
	"before-after": "Format: BEFORE/AFTER. Use a split-screen composition contrasting the situation without the product (left or top, muted and chaotic) against the situation with it (right or bottom, bright and orderly). Make the improvement obvious at a glance with a clear visual divider.",

	"testimonial": "Format: TESTIMONIAL. Center the creative on a realistic customer photo with a short quote in large quotation marks and the customer's first name and role underneath. The tone is authentic and trustworthy, like a real review, not a staged ad.",

	"product-showcase": "Format: PRODUCT SHOWCASE. Feature the product as the hero of the composition on a clean studio-style background with dramatic lighting, sharp focus on product details, and generous negative space for a short benefit line.",

	"lifestyle": "Format: LIFESTYLE. Show the product naturally embedded in an aspirational everyday scene of the target audience: real environments, candid moments, warm natural light. The product is present but the feeling comes first.",

	"problem-solution": "Format: PROBLEM/SOLUTION. Open the visual narrative with the audience's pain point rendered vividly, then resolve it with the product as the clear remedy. Use tension in the composition that the product visually releases.",

	"promo-offer": "Format: PROMO OFFER. Build a high-energy promotional layout with a large discount or offer headline, a bold accent color block, a sense of urgency, and a prominent call-to-action button shape.",

	"ugc": "Format: UGC STYLE. Imitate authentic user-generated content: smartphone-camera framing, slightly imperfect lighting, handheld feel, casual setting. It should look like a real customer's post, not a studio production.",

	"minimalist": "Format: MINIMALIST. Use a restrained composition with one focal element, a limited palette of at most three colors, lots of whitespace, and a single short line of text. Elegance through omission.",

	"comparison": "Format: COMPARISON. Lay out a side-by-side comparison of the product against the generic alternative using two columns or cards with short checkmark items, visually favoring the product without crowding the frame.",

	"announcement": "Format: ANNOUNCEMENT. Compose a launch-style creative with a bold 'new' energy: confetti-like accents or a spotlight effect, the product front and center, and a short headline announcing the novelty.",
}

const genericFormatDirective = "Format: standard advertising creative. Build a clean, modern advertising composition with a clear focal point, a short headline, and a visual hierarchy that leads the eye to the call to action."

// FormatDirective returns the stylistic directive for a format tag.
func FormatDirective(format string) string {
	if d, ok := formatDirectives[format]; ok {
		return d
	}
	return genericFormatDirective
}
