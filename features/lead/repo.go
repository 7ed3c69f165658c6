package lead

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

func (r *PostgresRepo) Save(ctx context.Context, l *Lead) error {
	query := `INSERT INTO leads (owner_id, name, email, phone, company, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		l.OwnerID, l.Name, l.Email, l.Phone, l.Company, l.Status, l.Notes).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, ownerID, id string) (*Lead, error) {
	l := &Lead{}
	query := `SELECT id, owner_id, name, email, phone, company, status, notes, created_at, updated_at
		FROM leads WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`
	err := r.db.QueryRowContext(ctx, query, id, ownerID).
		Scan(&l.ID, &l.OwnerID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Status, &l.Notes, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *PostgresRepo) List(ctx context.Context, ownerID, status string) ([]Lead, error) {
	query := `SELECT id, owner_id, name, email, phone, company, status, notes, created_at, updated_at
		FROM leads WHERE owner_id = $1 AND deleted_at IS NULL`
	args := []interface{}{ownerID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var l Lead
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Status, &l.Notes, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, l *Lead) error {
	query := `UPDATE leads SET name = $1, email = $2, phone = $3, company = $4, status = $5, notes = $6, updated_at = NOW()
		WHERE id = $7 AND owner_id = $8 AND deleted_at IS NULL
		RETURNING updated_at`
	return r.db.QueryRowContext(ctx, query,
		l.Name, l.Email, l.Phone, l.Company, l.Status, l.Notes, l.ID, l.OwnerID).
		Scan(&l.UpdatedAt)
}

func (r *PostgresRepo) Delete(ctx context.Context, ownerID, id string) error {
	query := `UPDATE leads SET deleted_at = NOW() WHERE id = $1 AND owner_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, ownerID)
	return err
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM leads WHERE deleted_at IS NULL`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}
