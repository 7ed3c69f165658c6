package job

import (
	"context"
	"encoding/json"
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

	payload := json.RawMessage(`{"document_id":"doc-1"}`)
	mock.ExpectQuery(`INSERT INTO failed_jobs`).
		WithArgs("doc-1", "ingest_consumer", []byte(payload), "read file: no such file").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "retries"}).
			AddRow("job-1", now, 0))

	j := &Job{DocumentID: "doc-1", Handler: "ingest_consumer", Payload: payload, Error: "read file: no such file"}
	require.NoError(t, repo.Save(context.Background(), j))
	assert.Equal(t, "job-1", j.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "document_id", "handler", "payload", "error", "retries", "created_at"}).
		AddRow("job-2", "doc-2", "ingest_consumer", []byte(`{}`), "timeout", 1, now).
		AddRow("job-1", "doc-1", "ingest_consumer", []byte(`{}`), "quota", 0, now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT id, document_id, handler`).WillReturnRows(rows)

	jobs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "doc-2", jobs[0].DocumentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)

	mock.ExpectExec(`DELETE FROM failed_jobs`).
		WithArgs("job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "job-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
