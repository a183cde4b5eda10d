package repository

import (
	"context"
	"database/sql"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

// NotificationRepo persists notification-center entries written by the
// event consumer.
type NotificationRepo struct{ db *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts a notification for a user.
func (r *NotificationRepo) Create(ctx context.Context, userID uint64, kind, body string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO notifications (user_id, kind, body) VALUES (?,?,?)",
		userID, kind, body)
	return err
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, kind, body, is_read, created_at
		FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Body, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags one notification as read, scoped to its owner.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
