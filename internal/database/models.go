package database

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores a slice of strings as a JSON array in a TEXT column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	default:
		return fmt.Errorf("unsupported string list column type %T", src)
	}
}

// Project is a top-level analyzed entity (one site/product). It owns
// audience segments and generated creatives. The analysis fields hold the
// single current analysis result; a new analysis overwrites them.
type Project struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Name        string     `db:"name"`
	URL         string     `db:"url"`
	Description string     `db:"description"`
	Summary     string     `db:"summary"`
	KeyFeatures StringList `db:"key_features"`
	BrandVoice  string     `db:"brand_voice"`
}

// Subproject is a narrower page (webinar/landing/campaign) nested under a
// project, with its own analysis and audience segments.
type Subproject struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	ProjectID   string     `db:"project_id"`
	Name        string     `db:"name"`
	Type        string     `db:"type"`
	URL         string     `db:"url"`
	Summary     string     `db:"summary"`
	KeyFeatures StringList `db:"key_features"`
	BrandVoice  string     `db:"brand_voice"`
}

// AudienceSegment is one target-customer persona derived from analysis.
// Exactly one of ProjectID or SubprojectID is set.
type AudienceSegment struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	ProjectID    sql.NullString `db:"project_id"`
	SubprojectID sql.NullString `db:"subproject_id"`
	Name         string         `db:"name"`
	Description  string         `db:"description"`
	PainPoints   StringList     `db:"pain_points"`
	Needs        StringList     `db:"needs"`
	Demographics string         `db:"demographics"`
}

// Creative is one generated advertising image plus the exact prompt and
// parameters that produced it. Immutable after creation.
type Creative struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	ProjectID      sql.NullString `db:"project_id"`
	SessionID      string         `db:"session_id"`
	TargetAudience string         `db:"target_audience"`
	Format         string         `db:"format"`
	Size           string         `db:"size"`
	ImageURL       string         `db:"image_url"`
	PromptUsed     string         `db:"prompt_used"`
	RefTemplate    bool           `db:"ref_template"`
	RefLogo        bool           `db:"ref_logo"`
	RefPerson      bool           `db:"ref_person"`
}

// ChatSession holds per-session conversation state. AwaitingURL carries a
// URL the assistant has asked the user to confirm before analyzing; empty
// means nothing is pending.
type ChatSession struct {
	SessionID   string    `db:"session_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	AwaitingURL string    `db:"awaiting_url"`
	ProjectID   string    `db:"project_id"`
}

// ChatMessage is one turn of a chat conversation. CreativeIDs references
// creatives generated as part of this turn, for gallery display.
type ChatMessage struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	SessionID   string     `db:"session_id"`
	Role        string     `db:"role"`
	Content     string     `db:"content"`
	CreativeIDs StringList `db:"creative_ids"`
}
