package repository

import (
	"context"
	"database/sql"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

// ConversationRepo persists chat threads and messages. Threads are created
// lazily by the notification consumer on the first tier-1 approval; system
// messages carry a null sender.
type ConversationRepo struct{ db *sql.DB }

func NewConversationRepo(db *sql.DB) *ConversationRepo { return &ConversationRepo{db: db} }

// GetOrCreate returns the conversation for an application, creating it on
// first use. The duplicate key from a concurrent create is resolved by
// re-reading.
func (r *ConversationRepo) GetOrCreate(ctx context.Context, applicationID, chefID, managerID uint64) (model.Conversation, error) {
	conv, err := r.GetByApplication(ctx, applicationID)
	if err == nil {
		return conv, nil
	}
	if err != sql.ErrNoRows {
		return model.Conversation{}, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO conversations (application_id, chef_id, manager_id) VALUES (?,?,?)",
		applicationID, chefID, managerID)
	if err != nil {
		// lost a create race; the row exists now
		return r.GetByApplication(ctx, applicationID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Conversation{}, err
	}
	return model.Conversation{ID: uint64(id), ApplicationID: applicationID, ChefID: chefID, ManagerID: managerID}, nil
}

// GetByApplication fetches the thread attached to an application.
func (r *ConversationRepo) GetByApplication(ctx context.Context, applicationID uint64) (model.Conversation, error) {
	var conv model.Conversation
	err := r.db.QueryRowContext(ctx, `
		SELECT id, application_id, chef_id, manager_id, created_at
		FROM conversations WHERE application_id = ?`, applicationID).
		Scan(&conv.ID, &conv.ApplicationID, &conv.ChefID, &conv.ManagerID, &conv.CreatedAt)
	return conv, err
}

// GetByID fetches a thread by id.
func (r *ConversationRepo) GetByID(ctx context.Context, id uint64) (model.Conversation, error) {
	var conv model.Conversation
	err := r.db.QueryRowContext(ctx, `
		SELECT id, application_id, chef_id, manager_id, created_at
		FROM conversations WHERE id = ?`, id).
		Scan(&conv.ID, &conv.ApplicationID, &conv.ChefID, &conv.ManagerID, &conv.CreatedAt)
	return conv, err
}

// AppendSystemMessage adds a system-authored message to a thread.
func (r *ConversationRepo) AppendSystemMessage(ctx context.Context, conversationID uint64, body string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (conversation_id, sender_id, kind, body) VALUES (?, NULL, ?, ?)",
		conversationID, model.MessageSystem, body)
	return err
}

// AppendUserMessage adds a participant's message to a thread.
func (r *ConversationRepo) AppendUserMessage(ctx context.Context, conversationID, senderID uint64, body string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (conversation_id, sender_id, kind, body) VALUES (?,?,?,?)",
		conversationID, senderID, model.MessageUser, body)
	return err
}

// ListMessages returns a thread's messages oldest first.
func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID uint64) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, kind, body, created_at
		FROM messages WHERE conversation_id = ? ORDER BY created_at, id`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Message, 0)
	for rows.Next() {
		var m model.Message
		var sender sql.NullInt64
		if err := rows.Scan(&m.ID, &m.ConversationID, &sender, &m.Kind, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		if sender.Valid {
			id := uint64(sender.Int64)
			m.SenderID = &id
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
