package message

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteService stores messages in the shared app database. Parts are
// serialized as a JSON array of tagged envelopes so each part type
// round-trips unambiguously.
type SQLiteService struct {
	db *sql.DB
}

func NewSQLiteService(db *sql.DB) *SQLiteService {
	return &SQLiteService{db: db}
}

type partEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func serializeParts(parts []ContentPart) (string, error) {
	envelopes := make([]partEnvelope, 0, len(parts))
	for _, p := range parts {
		var kind string
		switch p.(type) {
		case TextContent:
			kind = "text"
		case Attachment:
			kind = "attachment"
		case ToolCall:
			kind = "tool_call"
		case ToolResult:
			kind = "tool_result"
		case Finish:
			kind = "finish"
		default:
			continue
		}
		data, err := json.Marshal(p)
		if err != nil {
			return "", err
		}
		envelopes = append(envelopes, partEnvelope{Type: kind, Data: data})
	}
	out, err := json.Marshal(envelopes)
	return string(out), err
}

func deserializeParts(metadata string) []ContentPart {
	if metadata == "" {
		return nil
	}
	var envelopes []partEnvelope
	if err := json.Unmarshal([]byte(metadata), &envelopes); err != nil {
		return nil
	}

	var parts []ContentPart
	for _, env := range envelopes {
		var (
			part ContentPart
			err  error
		)
		switch env.Type {
		case "text":
			var p TextContent
			err = json.Unmarshal(env.Data, &p)
			part = p
		case "attachment":
			var p Attachment
			err = json.Unmarshal(env.Data, &p)
			part = p
		case "tool_call":
			var p ToolCall
			err = json.Unmarshal(env.Data, &p)
			part = p
		case "tool_result":
			var p ToolResult
			err = json.Unmarshal(env.Data, &p)
			part = p
		case "finish":
			var p Finish
			err = json.Unmarshal(env.Data, &p)
			part = p
		default:
			continue
		}
		if err == nil {
			parts = append(parts, part)
		}
	}
	return parts
}

func (s *SQLiteService) Create(ctx context.Context, sessionID string, params CreateMessageParams) (Message, error) {
	metadata, err := serializeParts(params.Parts)
	if err != nil {
		return Message{}, fmt.Errorf("serialize parts: %w", err)
	}
	now := time.Now().Unix()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages(session_id, role, metadata, created_at, updated_at) VALUES(?, ?, ?, ?, ?)`,
		sessionID, params.Role, metadata, now, now)
	if err != nil {
		return Message{}, err
	}

	id, _ := res.LastInsertId()
	return Message{
		ID:        fmt.Sprintf("%d", id),
		SessionID: sessionID,
		Role:      params.Role,
		Parts:     params.Parts,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteService) List(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, metadata, created_at, updated_at
		 FROM messages WHERE session_id = ? ORDER BY id`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var (
			id               int64
			role, metadata   string
			created, updated int64
		)
		if err := rows.Scan(&id, &role, &metadata, &created, &updated); err != nil {
			return nil, err
		}
		msgs = append(msgs, Message{
			ID:        fmt.Sprintf("%d", id),
			SessionID: sessionID,
			Role:      Role(role),
			Parts:     deserializeParts(metadata),
			CreatedAt: created,
			UpdatedAt: updated,
		})
	}
	return msgs, rows.Err()
}

func (s *SQLiteService) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID)
	return err
}
