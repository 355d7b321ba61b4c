package imagegen

import (
	"encoding/base64"
	"encoding/json"
)

// inlineImage is one inline image blob lifted out of a response body,
// still base64-encoded.
type inlineImage struct {
	Data     string
	MimeType string
}

// extractFunc is one pure response-shape strategy: given the raw response
// body it returns any inline images it recognizes, or nil.
type extractFunc func(raw []byte) []inlineImage

// shapeExtractors is the ordered list of response shapes the upstream API
// has been observed to produce. Strategies are tried in sequence; the first
// one that finds images wins. New shapes get appended here, not woven into
// conditionals.
var shapeExtractors = []extractFunc{
	extractCamelCaseParts,
	extractSnakeCaseParts,
	extractFlatParts,
}

// extractImages decodes the first shape that matches into raw image bytes.
func extractImages(raw []byte) []Image {
	for _, extract := range shapeExtractors {
		blobs := extract(raw)
		if len(blobs) == 0 {
			continue
		}

		var images []Image
		for _, b := range blobs {
			data, err := base64.StdEncoding.DecodeString(b.Data)
			if err != nil {
				continue
			}
			mime := b.MimeType
			if mime == "" {
				mime = "image/png"
			}
			images = append(images, Image{Data: data, MimeType: mime})
		}
		if len(images) > 0 {
			return images
		}
	}
	return nil
}

// extractCamelCaseParts handles candidates[].content.parts[].inlineData.
func extractCamelCaseParts(raw []byte) []inlineImage {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					InlineData *struct {
						Data     string `json:"data"`
						MimeType string `json:"mimeType"`
					} `json:"inlineData"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}

	var out []inlineImage
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				out = append(out, inlineImage{Data: p.InlineData.Data, MimeType: p.InlineData.MimeType})
			}
		}
	}
	return out
}

// extractSnakeCaseParts handles candidates[].content.parts[].inline_data.
func extractSnakeCaseParts(raw []byte) []inlineImage {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					InlineData *struct {
						Data     string `json:"data"`
						MimeType string `json:"mime_type"`
					} `json:"inline_data"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}

	var out []inlineImage
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				out = append(out, inlineImage{Data: p.InlineData.Data, MimeType: p.InlineData.MimeType})
			}
		}
	}
	return out
}

// extractFlatParts handles candidates[].parts[] without the content wrapper,
// in either field casing.
func extractFlatParts(raw []byte) []inlineImage {
	var resp struct {
		Candidates []struct {
			Parts []struct {
				InlineData *struct {
					Data     string `json:"data"`
					MimeType string `json:"mimeType"`
				} `json:"inlineData"`
				InlineDataSnake *struct {
					Data     string `json:"data"`
					MimeType string `json:"mime_type"`
				} `json:"inline_data"`
			} `json:"parts"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}

	var out []inlineImage
	for _, cand := range resp.Candidates {
		for _, p := range cand.Parts {
			switch {
			case p.InlineData != nil && p.InlineData.Data != "":
				out = append(out, inlineImage{Data: p.InlineData.Data, MimeType: p.InlineData.MimeType})
			case p.InlineDataSnake != nil && p.InlineDataSnake.Data != "":
				out = append(out, inlineImage{Data: p.InlineDataSnake.Data, MimeType: p.InlineDataSnake.MimeType})
			}
		}
	}
	return out
}
