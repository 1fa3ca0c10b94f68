package planner

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// TripPlan is a stored planning result.
type TripPlan struct {
	ID          int64
	UserID      string
	Destination string
	PlanData    []byte // Raw JSON of the full ChatPlan
	CreatedAt   time.Time
}

// PlanRepository is a database-backed repository for trip plans.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Save inserts a new trip plan into the database.
func (r *PlanRepository) Save(ctx context.Context, userID, destination string, planData []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO trip_plans (user_id, destination, plan_data, created_at) VALUES (?, ?, ?, ?)`,
		userID, destination, planData, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip plan: %w", err)
	}
	return nil
}

// ListRecentByUserID retrieves the N most recent trip plans for a given user.
func (r *PlanRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]TripPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, destination, plan_data, created_at
		 FROM trip_plans
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent trip plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	var plans []TripPlan
	for rows.Next() {
		var plan TripPlan
		if err := rows.Scan(&plan.ID, &plan.UserID, &plan.Destination, &plan.PlanData, &plan.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip plan row: %w", err)
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}
