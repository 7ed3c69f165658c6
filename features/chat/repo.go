package chat

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, m *Message) error {
	sources := m.Sources
	if len(sources) == 0 {
		sources = []byte("[]")
	}
	query := `INSERT INTO messages (owner_id, role, content, sources)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, m.OwnerID, m.Role, m.Content, sources).
		Scan(&m.ID, &m.CreatedAt)
}

// History returns the owner's most recent turns in chronological order.
func (r *PostgresRepo) History(ctx context.Context, ownerID string, limit int) ([]Message, error) {
	query := `SELECT id, owner_id, role, content, sources, created_at FROM (
			SELECT id, owner_id, role, content, sources, created_at
			FROM messages WHERE owner_id = $1
			ORDER BY created_at DESC LIMIT $2
		) recent ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Role, &m.Content, &m.Sources, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}
