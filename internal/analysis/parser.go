package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError indicates the model reply contained no parseable JSON object.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse analysis response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to parse analysis response: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Demographics arrives from the model either as free text or as a map with
// the recognized keys age/gender/location/income. Both shapes are accepted;
// Display always has a usable string.
type Demographics struct {
	Display  string `json:"display"`
	Age      string `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Location string `json:"location,omitempty"`
	Income   string `json:"income,omitempty"`
}

// UnmarshalJSON accepts a JSON string or an object with recognized keys.
func (d *Demographics) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		d.Display = strings.TrimSpace(text)
		return nil
	}

	var fields struct {
		Age      string `json:"age"`
		Gender   string `json:"gender"`
		Location string `json:"location"`
		Income   string `json:"income"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("demographics is neither a string nor an object: %w", err)
	}

	d.Age = strings.TrimSpace(fields.Age)
	d.Gender = strings.TrimSpace(fields.Gender)
	d.Location = strings.TrimSpace(fields.Location)
	d.Income = strings.TrimSpace(fields.Income)

	var parts []string
	for _, p := range []string{d.Age, d.Gender, d.Location, d.Income} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	d.Display = strings.Join(parts, ", ")
	return nil
}

// Audience is one target-customer persona from the analysis reply.
type Audience struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	PainPoints   []string     `json:"pain_points"`
	Needs        []string     `json:"needs"`
	Demographics Demographics `json:"demographics"`
}

// Result is the validated analysis of one project or subproject.
type Result struct {
	Summary         string     `json:"summary"`
	KeyFeatures     []string   `json:"key_features"`
	BrandVoice      string     `json:"brand_voice"`
	TargetAudiences []Audience `json:"target_audiences"`
}

// ExtractJSONObject returns the first balanced top-level JSON object in the
// text. It tracks brace depth and string/escape state, so prose containing
// stray braces before or after the object does not break extraction.
func ExtractJSONObject(text string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range text {
		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}

	if start < 0 {
		return "", &ParseError{Reason: "no JSON object found in response"}
	}
	return "", &ParseError{Reason: "unbalanced JSON object in response"}
}

// Parse extracts and validates the analysis JSON from raw model text.
func Parse(text string) (*Result, error) {
	region, err := ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var result Result
	if err := json.Unmarshal([]byte(region), &result); err != nil {
		return nil, &ParseError{Reason: "extracted region is not valid JSON", Err: err}
	}

	if result.Summary == "" {
		return nil, &ParseError{Reason: "missing summary field"}
	}
	if len(result.TargetAudiences) == 0 {
		return nil, &ParseError{Reason: "no target audiences in response"}
	}

	for i := range result.TargetAudiences {
		seg := &result.TargetAudiences[i]
		if seg.ID == "" {
			seg.ID = fmt.Sprintf("s%d", i+1)
		}
		if seg.Name == "" {
			return nil, &ParseError{Reason: fmt.Sprintf("audience segment %d has no name", i+1)}
		}
		if len(seg.PainPoints) == 0 {
			return nil, &ParseError{Reason: fmt.Sprintf("audience segment %q has no pain points", seg.Name)}
		}
		if len(seg.Needs) == 0 {
			return nil, &ParseError{Reason: fmt.Sprintf("audience segment %q has no needs", seg.Name)}
		}
	}

	return &result, nil
}
