package document

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO documents`).
		WithArgs("owner-1", "notes.txt", "/uploads/abc_notes.txt", "hash-1", "processing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("doc-1", now, now))

	doc := &Document{
		OwnerID:     "owner-1",
		FileName:    "notes.txt",
		FilePath:    "/uploads/abc_notes.txt",
		ContentHash: "hash-1",
		Status:      "processing",
	}
	require.NoError(t, repo.Save(context.Background(), doc))
	assert.Equal(t, "doc-1", doc.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_ExistsByHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("owner-1", "hash-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByHash(context.Background(), "owner-1", "hash-1")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Get_OwnerScoped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)

	mock.ExpectQuery(`SELECT id, owner_id, file_name, file_path, status, chunk_count`).
		WithArgs("doc-1", "other-owner").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.Get(context.Background(), "other-owner", "doc-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "owner_id", "file_name", "status", "chunk_count", "created_at", "updated_at"}).
		AddRow("doc-2", "owner-1", "faq.md", "completed", 4, now, now).
		AddRow("doc-1", "owner-1", "notes.txt", "failed", 0, now, now)

	mock.ExpectQuery(`SELECT id, owner_id, file_name, status, chunk_count`).
		WithArgs("owner-1").
		WillReturnRows(rows)

	docs, err := repo.List(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "faq.md", docs[0].FileName)
	assert.Equal(t, "failed", docs[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)

	mock.ExpectExec(`UPDATE documents SET status`).
		WithArgs("completed", "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "doc-1", "completed"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_SoftDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)

	mock.ExpectExec(`UPDATE documents SET deleted_at`).
		WithArgs("doc-1", "owner-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), "owner-1", "doc-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)

	mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}
