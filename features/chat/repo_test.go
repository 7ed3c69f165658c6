package chat

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepo_Save_DefaultsSources(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO messages`).
		WithArgs("owner-1", "user", "hours?", []byte("[]")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("msg-1", now))

	m := &Message{OwnerID: "owner-1", Role: RoleUser, Content: "hours?"}
	require.NoError(t, repo.Save(context.Background(), m))
	assert.Equal(t, "msg-1", m.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_History_ChronologicalOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	base := time.Now()

	rows := sqlmock.NewRows([]string{"id", "owner_id", "role", "content", "sources", "created_at"}).
		AddRow("msg-1", "owner-1", "user", "hours?", []byte("[]"), base.Add(-time.Minute)).
		AddRow("msg-2", "owner-1", "assistant", "Open 9-5.", []byte(`[{"document_id":"doc-1"}]`), base)

	mock.ExpectQuery(`SELECT id, owner_id, role, content, sources`).
		WithArgs("owner-1", 50).
		WillReturnRows(rows)

	msgs, err := repo.History(context.Background(), "owner-1", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.True(t, msgs[0].CreatedAt.Before(msgs[1].CreatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}
