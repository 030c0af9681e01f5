package store_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolportal/internal/store"
	"schoolportal/internal/store/storetest"
)

func TestNewDBRejectsUnknownDriver(t *testing.T) {
	_, err := store.NewDB(context.Background(), "mysql", "whatever")
	require.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := storetest.NewSQLite(t)
	require.NoError(t, db.Migrate(context.Background()))
	assert.True(t, db.Healthy(context.Background()))
}

func TestAttendanceIndexRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewSQLite(t)

	_, err := db.Client.ExecContext(ctx, `INSERT INTO users (email, password_hash, role, fullname) VALUES ('s@x.io', 'h', 'student', 'S')`)
	require.NoError(t, err)

	insert := `INSERT INTO attendance (student_id, date, status) VALUES (1, '2026-01-10', 'present')`
	_, err = db.Client.ExecContext(ctx, insert)
	require.NoError(t, err)
	_, err = db.Client.ExecContext(ctx, insert)
	require.Error(t, err)
	assert.True(t, store.IsUniqueViolation(err))
}

func TestForeignKeysEnforced(t *testing.T) {
	db := storetest.NewSQLite(t)
	_, err := db.Client.ExecContext(context.Background(), `INSERT INTO marks (student_id, subject, marks, date) VALUES (42, 'Physics', 70, '2026-01-10')`)
	require.Error(t, err)
	assert.False(t, store.IsUniqueViolation(err))
}

func TestResetDropsRows(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewSQLite(t)
	_, err := db.Client.ExecContext(ctx, `INSERT INTO users (email, password_hash, role, fullname) VALUES ('a@x.io', 'h', 'admin', 'A')`)
	require.NoError(t, err)

	require.NoError(t, db.Reset(ctx))

	var n int
	require.NoError(t, db.Client.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`))
	assert.Zero(t, n)
}

func TestIsUniqueViolationIgnoresOtherErrors(t *testing.T) {
	assert.False(t, store.IsUniqueViolation(nil))
	assert.False(t, store.IsUniqueViolation(errors.New("boom")))
}

func TestNilDBIsUnhealthy(t *testing.T) {
	var db *store.DB
	assert.False(t, db.Healthy(context.Background()))
	assert.NoError(t, db.Close())
}
