package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"ai-trip-planner/internal/travel"
)

// ChatRepository keeps the most recently generated plan per Telegram chat,
// so /last can replay it.
type ChatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// SaveLatest upserts the chat's latest plan.
func (r *ChatRepository) SaveLatest(ctx context.Context, chatID int64, userName string, plan *travel.ChatPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO chat_plans (chat_id, user_name, plan_data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET
		   user_name = excluded.user_name,
		   plan_data = excluded.plan_data,
		   updated_at = excluded.updated_at`,
		chatID, userName, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert chat plan: %w", err)
	}
	return nil
}

// Latest returns the chat's stored plan, or nil when none exists.
func (r *ChatRepository) Latest(ctx context.Context, chatID int64) (*travel.ChatPlan, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT plan_data FROM chat_plans WHERE chat_id = ?`, chatID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chat plan: %w", err)
	}

	var plan travel.ChatPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to decode chat plan: %w", err)
	}
	return &plan, nil
}
