package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/govseek/govseek"
)

// Compile-time interface verification.
var _ govseek.ThreadStore = (*ThreadStore)(nil)

// ThreadStore implements govseek.ThreadStore using SQLite. Threads survive
// process restarts, so a conversation can be resumed by id across CLI
// invocations.
type ThreadStore struct {
	db *DB
}

// NewThreadStore creates a new ThreadStore.
func NewThreadStore(db *DB) *ThreadStore {
	return &ThreadStore{db: db}
}

// Load returns the thread with the given id, or an empty thread if none is
// stored. The returned thread is built from scratch on every call.
func (s *ThreadStore) Load(ctx context.Context, threadID string) (*govseek.Thread, error) {
	if threadID == "" {
		return nil, govseek.Errorf(govseek.EINVALID, "thread ID required")
	}

	thread := &govseek.Thread{ID: threadID}

	var lastSources string
	err := s.db.QueryRowContext(ctx, `
		SELECT last_sources FROM threads WHERE id = ?
	`, threadID).Scan(&lastSources)
	if err == sql.ErrNoRows {
		return thread, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(lastSources), &thread.LastSources); err != nil {
		return nil, fmt.Errorf("failed to parse last_sources: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, tool_calls, sources
		FROM messages
		WHERE thread_id = ?
		ORDER BY position ASC
	`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var msg govseek.Message
		var role, toolCalls, sources string
		if err := rows.Scan(&role, &msg.Content, &toolCalls, &sources); err != nil {
			return nil, err
		}
		msg.Role = govseek.Role(role)
		if err := json.Unmarshal([]byte(toolCalls), &msg.ToolCalls); err != nil {
			return nil, fmt.Errorf("failed to parse tool_calls: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &msg.Sources); err != nil {
			return nil, fmt.Errorf("failed to parse sources: %w", err)
		}
		thread.Messages = append(thread.Messages, msg)
	}

	return thread, rows.Err()
}

// Save replaces the stored thread with the given one in a single
// transaction.
func (s *ThreadStore) Save(ctx context.Context, thread *govseek.Thread) error {
	if thread == nil || thread.ID == "" {
		return govseek.Errorf(govseek.EINVALID, "thread ID required")
	}

	lastSources, err := json.Marshal(emptyIfNil(thread.LastSources))
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO threads (id, last_sources, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET last_sources = excluded.last_sources, updated_at = excluded.updated_at
	`, thread.ID, string(lastSources), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE thread_id = ?", thread.ID); err != nil {
		return err
	}

	for i, msg := range thread.Messages {
		toolCalls, err := json.Marshal(emptyCallsIfNil(msg.ToolCalls))
		if err != nil {
			return err
		}
		sources, err := json.Marshal(emptyIfNil(msg.Sources))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO messages (thread_id, position, role, content, tool_calls, sources)
			VALUES (?, ?, ?, ?, ?, ?)
		`, thread.ID, i, string(msg.Role), msg.Content, string(toolCalls), string(sources))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyCallsIfNil(s []govseek.ToolCall) []govseek.ToolCall {
	if s == nil {
		return []govseek.ToolCall{}
	}
	return s
}
