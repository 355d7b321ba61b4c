package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// CreateProject inserts a new project record.
	CreateProject(ctx context.Context, project *Project) error

	// GetProject retrieves a project by ID.
	GetProject(ctx context.Context, id string) (*Project, error)

	// ListProjects retrieves all projects, newest first.
	ListProjects(ctx context.Context) ([]*Project, error)

	// CreateSubproject inserts a new subproject record.
	CreateSubproject(ctx context.Context, sub *Subproject) error

	// GetSubproject retrieves a subproject by ID.
	GetSubproject(ctx context.Context, id string) (*Subproject, error)

	// SaveProjectAnalysis stores an analysis result on a project, replacing
	// the previous result and all previously derived segments in a single
	// transaction. At most one current analysis exists per project.
	SaveProjectAnalysis(ctx context.Context, projectID string, summary string, keyFeatures []string, brandVoice string, segments []*AudienceSegment) error

	// SaveSubprojectAnalysis is SaveProjectAnalysis for a subproject.
	SaveSubprojectAnalysis(ctx context.Context, subprojectID string, summary string, keyFeatures []string, brandVoice string, segments []*AudienceSegment) error

	// GetSegment retrieves an audience segment by ID.
	GetSegment(ctx context.Context, id string) (*AudienceSegment, error)

	// ListSegmentsByProject retrieves the segments owned by a project.
	ListSegmentsByProject(ctx context.Context, projectID string) ([]*AudienceSegment, error)

	// SaveCreative inserts a generated creative record.
	SaveCreative(ctx context.Context, creative *Creative) error

	// GetCreative retrieves a creative by ID.
	GetCreative(ctx context.Context, id string) (*Creative, error)

	// ListCreatives retrieves creatives filtered by project or session ID,
	// newest first. Empty filters match everything.
	ListCreatives(ctx context.Context, projectID, sessionID string) ([]*Creative, error)

	// GetChatSession retrieves or creates the session row for a session ID.
	GetChatSession(ctx context.Context, sessionID string) (*ChatSession, error)

	// SetAwaitingURL updates the pending-confirmation URL for a session.
	// An empty URL clears the pending state.
	SetAwaitingURL(ctx context.Context, sessionID, url string) error

	// SetSessionProject records which project a chat session is working on.
	SetSessionProject(ctx context.Context, sessionID, projectID string) error

	// SaveChatMessage inserts one chat turn.
	SaveChatMessage(ctx context.Context, message *ChatMessage) error

	// GetRecentChatMessages retrieves the most recent 'limit' messages for a
	// session, in chronological order.
	GetRecentChatMessages(ctx context.Context, sessionID string, limit int) ([]*ChatMessage, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) CreateProject(ctx context.Context, project *Project) error {
	if project == nil {
		return fmt.Errorf("cannot save nil project")
	}
	if project.ID == "" {
		return fmt.Errorf("project must have an id")
	}
	if project.Name == "" {
		return fmt.Errorf("project must have a name")
	}

	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO projects (id, created_at, updated_at, name, url, description, summary, key_features, brand_voice)
		VALUES (:id, :created_at, :updated_at, :name, :url, :description, :summary, :key_features, :brand_voice)`,
		project)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert project", "project_id", project.ID, "error", err)
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

func (s *sqlxStore) GetProject(ctx context.Context, id string) (*Project, error) {
	var project Project
	err := s.db.GetContext(ctx, &project, `SELECT * FROM projects WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

func (s *sqlxStore) ListProjects(ctx context.Context) ([]*Project, error) {
	var projects []*Project
	err := s.db.SelectContext(ctx, &projects, `SELECT * FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *sqlxStore) CreateSubproject(ctx context.Context, sub *Subproject) error {
	if sub == nil {
		return fmt.Errorf("cannot save nil subproject")
	}
	if sub.ID == "" || sub.ProjectID == "" {
		return fmt.Errorf("subproject must have an id and a project_id")
	}

	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO subprojects (id, created_at, updated_at, project_id, name, type, url, summary, key_features, brand_voice)
		VALUES (:id, :created_at, :updated_at, :project_id, :name, :type, :url, :summary, :key_features, :brand_voice)`,
		sub)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert subproject", "subproject_id", sub.ID, "error", err)
		return fmt.Errorf("failed to insert subproject: %w", err)
	}
	return nil
}

func (s *sqlxStore) GetSubproject(ctx context.Context, id string) (*Subproject, error) {
	var sub Subproject
	err := s.db.GetContext(ctx, &sub, `SELECT * FROM subprojects WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subproject %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subproject: %w", err)
	}
	return &sub, nil
}

func (s *sqlxStore) SaveProjectAnalysis(ctx context.Context, projectID string, summary string, keyFeatures []string, brandVoice string, segments []*AudienceSegment) error {
	return s.saveAnalysis(ctx, "project", projectID, summary, keyFeatures, brandVoice, segments)
}

func (s *sqlxStore) SaveSubprojectAnalysis(ctx context.Context, subprojectID string, summary string, keyFeatures []string, brandVoice string, segments []*AudienceSegment) error {
	return s.saveAnalysis(ctx, "subproject", subprojectID, summary, keyFeatures, brandVoice, segments)
}

func (s *sqlxStore) saveAnalysis(ctx context.Context, owner, ownerID string, summary string, keyFeatures []string, brandVoice string, segments []*AudienceSegment) error {
	if ownerID == "" {
		return fmt.Errorf("analysis must have an owning %s id", owner)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.ErrorContext(ctx, "Failed to rollback analysis transaction", "error", rollbackErr)
			}
		}
	}()

	now := time.Now().UTC()
	var updateQuery, deleteQuery, ownerColumn string
	switch owner {
	case "project":
		updateQuery = `UPDATE projects SET summary = ?, key_features = ?, brand_voice = ?, updated_at = ? WHERE id = ?`
		deleteQuery = `DELETE FROM audience_segments WHERE project_id = ?`
		ownerColumn = "project_id"
	case "subproject":
		updateQuery = `UPDATE subprojects SET summary = ?, key_features = ?, brand_voice = ?, updated_at = ? WHERE id = ?`
		deleteQuery = `DELETE FROM audience_segments WHERE subproject_id = ?`
		ownerColumn = "subproject_id"
	default:
		return fmt.Errorf("unknown analysis owner %q", owner)
	}

	features, err := StringList(keyFeatures).Value()
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, updateQuery, summary, features, brandVoice, now, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update %s analysis: %w", owner, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("%s %s: %w", owner, ownerID, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, deleteQuery, ownerID); err != nil {
		return fmt.Errorf("failed to delete previous segments: %w", err)
	}

	for _, seg := range segments {
		seg.CreatedAt = now
		painPoints, err := seg.PainPoints.Value()
		if err != nil {
			return err
		}
		needs, err := seg.Needs.Value()
		if err != nil {
			return err
		}
		insert := fmt.Sprintf(`
			INSERT INTO audience_segments (id, created_at, %s, name, description, pain_points, needs, demographics)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, ownerColumn)
		if _, err := tx.ExecContext(ctx, insert, seg.ID, seg.CreatedAt, ownerID, seg.Name, seg.Description, painPoints, needs, seg.Demographics); err != nil {
			return fmt.Errorf("failed to insert audience segment %s: %w", seg.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis transaction: %w", err)
	}
	tx = nil

	s.logger.InfoContext(ctx, "Analysis saved", "owner", owner, "owner_id", ownerID, "segments", len(segments))
	return nil
}

func (s *sqlxStore) GetSegment(ctx context.Context, id string) (*AudienceSegment, error) {
	var seg AudienceSegment
	err := s.db.GetContext(ctx, &seg, `SELECT * FROM audience_segments WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("audience segment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audience segment: %w", err)
	}
	return &seg, nil
}

func (s *sqlxStore) ListSegmentsByProject(ctx context.Context, projectID string) ([]*AudienceSegment, error) {
	var segments []*AudienceSegment
	err := s.db.SelectContext(ctx, &segments, `SELECT * FROM audience_segments WHERE project_id = ? ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audience segments: %w", err)
	}
	return segments, nil
}

func (s *sqlxStore) SaveCreative(ctx context.Context, creative *Creative) error {
	if creative == nil {
		return fmt.Errorf("cannot save nil creative")
	}
	if creative.ID == "" || creative.SessionID == "" {
		return fmt.Errorf("creative must have an id and a session_id")
	}
	if creative.PromptUsed == "" {
		return fmt.Errorf("creative must record the prompt that produced it")
	}

	creative.CreatedAt = time.Now().UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO creatives (id, created_at, project_id, session_id, target_audience, format, size, image_url, prompt_used, ref_template, ref_logo, ref_person)
		VALUES (:id, :created_at, :project_id, :session_id, :target_audience, :format, :size, :image_url, :prompt_used, :ref_template, :ref_logo, :ref_person)`,
		creative)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert creative", "creative_id", creative.ID, "error", err)
		return fmt.Errorf("failed to insert creative: %w", err)
	}
	return nil
}

func (s *sqlxStore) GetCreative(ctx context.Context, id string) (*Creative, error) {
	var creative Creative
	err := s.db.GetContext(ctx, &creative, `SELECT * FROM creatives WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("creative %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creative: %w", err)
	}
	return &creative, nil
}

func (s *sqlxStore) ListCreatives(ctx context.Context, projectID, sessionID string) ([]*Creative, error) {
	query := `SELECT * FROM creatives`
	var args []any
	switch {
	case projectID != "":
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	case sessionID != "":
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY created_at DESC`

	var creatives []*Creative
	if err := s.db.SelectContext(ctx, &creatives, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list creatives: %w", err)
	}
	return creatives, nil
}

func (s *sqlxStore) GetChatSession(ctx context.Context, sessionID string) (*ChatSession, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (session_id, created_at, updated_at, awaiting_url)
		VALUES (?, ?, ?, '')
		ON CONFLICT(session_id) DO NOTHING`,
		sessionID, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert chat session: %w", err)
	}

	var session ChatSession
	if err := s.db.GetContext(ctx, &session, `SELECT * FROM chat_sessions WHERE session_id = ?`, sessionID); err != nil {
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}
	return &session, nil
}

func (s *sqlxStore) SetAwaitingURL(ctx context.Context, sessionID, url string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE chat_sessions SET awaiting_url = ?, updated_at = ? WHERE session_id = ?`,
		url, time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to update chat session state: %w", err)
	}
	return nil
}

func (s *sqlxStore) SetSessionProject(ctx context.Context, sessionID, projectID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE chat_sessions SET project_id = ?, updated_at = ? WHERE session_id = ?`,
		projectID, time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to update chat session project: %w", err)
	}
	return nil
}

func (s *sqlxStore) SaveChatMessage(ctx context.Context, message *ChatMessage) error {
	if message == nil {
		return fmt.Errorf("cannot save nil chat message")
	}
	if message.SessionID == "" {
		return fmt.Errorf("chat message must have a session_id")
	}
	if message.Role != "user" && message.Role != "assistant" {
		return fmt.Errorf("chat message role must be user or assistant, got %q", message.Role)
	}

	message.CreatedAt = time.Now().UTC()

	res, err := s.db.NamedExecContext(ctx, `
		INSERT INTO chat_messages (created_at, session_id, role, content, creative_ids)
		VALUES (:created_at, :session_id, :role, :content, :creative_ids)`,
		message)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		message.ID = uint(id)
	}
	return nil
}

func (s *sqlxStore) GetRecentChatMessages(ctx context.Context, sessionID string, limit int) ([]*ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	var messages []*ChatMessage
	err := s.db.SelectContext(ctx, &messages, `
		SELECT * FROM (
			SELECT * FROM chat_messages WHERE session_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat messages: %w", err)
	}
	return messages, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	start := time.Now()
	for _, stmt := range []string{"VACUUM", "ANALYZE"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("maintenance statement %s failed: %w", stmt, err)
		}
	}
	s.logger.InfoContext(ctx, "Database maintenance completed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
