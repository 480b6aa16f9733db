// AngelaMos | 2026
// repository_test.go

package usage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/science-ai/backend/internal/core"
)

var rowColumns = []string{
	"id", "plan",
	"presentations_created", "academic_works_created",
	"academic_generations_today", "chat_messages_today",
	"dalle_images_used", "plagiarism_checks_used",
	"dissertation_generations_used", "large_chapter_generations_used",
	"last_daily_reset", "last_monthly_reset",
}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func usageRow(chat, dalle int, daily, monthly time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(rowColumns).
		AddRow("u1", "pro", 1, 0, 0, chat, dalle, 0, 0, 0, daily, monthly)
}

func TestRepository_Get(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM users WHERE id = $1 AND deleted_at IS NULL",
	)).
		WithArgs("u1").
		WillReturnRows(usageRow(4, 2, testNow, testNow))

	u, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "pro", u.Plan)
	assert.Equal(t, 1, u.PresentationsCreated)
	assert.Equal(t, 4, u.ChatMessagesToday)
	assert.Equal(t, 2, u.DalleImagesUsed)
	assert.True(t, testNow.Equal(u.LastDailyReset))
}

func TestRepository_GetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(rowColumns))

	_, err := repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_IncrementIsSingleAtomicUpdate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE users SET chat_messages_today = chat_messages_today + $2, " +
			"dalle_images_used = dalle_images_used + $3, updated_at = NOW() " +
			"WHERE id = $1 AND deleted_at IS NULL RETURNING id, plan",
	)).
		WithArgs("u1", 2, 1).
		WillReturnRows(usageRow(6, 3, testNow, testNow))

	u, err := repo.Increment(context.Background(), "u1", []Delta{
		{Counter: CounterChatMessages, Amount: 2},
		{Counter: CounterDalleImages, Amount: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, u.ChatMessagesToday)
	assert.Equal(t, 3, u.DalleImagesUsed)
}

func TestRepository_IncrementRejectsUnknownCounter(t *testing.T) {
	repo, _ := newMockRepo(t)

	_, err := repo.Increment(context.Background(), "u1", []Delta{
		{Counter: Counter("chat_messages_today = 0; --"), Amount: 1},
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestRepository_IncrementSurfacesStoreError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("UPDATE users").
		WithArgs("u1", 1).
		WillReturnError(errors.New("deadlock detected"))

	_, err := repo.Increment(context.Background(), "u1", []Delta{
		{Counter: CounterChatMessages, Amount: 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "increment usage: deadlock detected")
}

func TestRepository_ResetIfUnchanged(t *testing.T) {
	yesterday := testNow.AddDate(0, 0, -1)

	t.Run("applied", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta(
			"SET academic_generations_today = 0, chat_messages_today = 0, " +
				"last_daily_reset = $2, updated_at = NOW() " +
				"WHERE id = $1 AND deleted_at IS NULL AND last_daily_reset = $3",
		)).
			WithArgs("u1", testNow, yesterday).
			WillReturnRows(usageRow(0, 3, testNow, yesterday))

		u, applied, err := repo.ResetIfUnchanged(
			context.Background(), "u1", ResetDaily, testNow, yesterday)
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, 0, u.ChatMessagesToday)
	})

	t.Run("lost race", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta("AND last_monthly_reset = $3")).
			WithArgs("u1", testNow, yesterday).
			WillReturnRows(sqlmock.NewRows(rowColumns))

		u, applied, err := repo.ResetIfUnchanged(
			context.Background(), "u1", ResetMonthly, testNow, yesterday)
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Nil(t, u)
	})
}

func TestRepository_ForceResetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("last_monthly_reset = $2")).
		WithArgs("ghost", testNow).
		WillReturnRows(sqlmock.NewRows(rowColumns))

	_, err := repo.ForceReset(context.Background(), "ghost", ResetMonthly, testNow)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_IncrementWithin(t *testing.T) {
	t.Run("within limit", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta(
			"AND chat_messages_today + $2 <= $3",
		)).
			WithArgs("u1", 1, 10).
			WillReturnRows(usageRow(7, 0, testNow, testNow))

		u, ok, err := repo.IncrementWithin(
			context.Background(), "u1", CounterChatMessages, 1, 10)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 7, u.ChatMessagesToday)
	})

	t.Run("ceiling reached", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta("AND chat_messages_today + $2 <= $3")).
			WithArgs("u1", 1, 10).
			WillReturnRows(sqlmock.NewRows(rowColumns))

		_, ok, err := repo.IncrementWithin(
			context.Background(), "u1", CounterChatMessages, 1, 10)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unlimited skips predicate", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta(
			"WHERE id = $1 AND deleted_at IS NULL RETURNING",
		)).
			WithArgs("u1", 5).
			WillReturnRows(usageRow(99, 0, testNow, testNow))

		u, ok, err := repo.IncrementWithin(
			context.Background(), "u1", CounterChatMessages, 5, Unlimited)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 99, u.ChatMessagesToday)
	})
}
