package database

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func newSub(email, city, frequency string) *ports.SubscriptionData {
	return &ports.SubscriptionData{
		Email:             email,
		City:              city,
		Frequency:         frequency,
		ConfirmationToken: "confirm-" + email + "-" + city,
		UnsubscribeToken:  "unsub-" + email + "-" + city,
	}
}

func TestSubscriptionRepository_CreateAndFind(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))
	ctx := context.Background()

	sub := newSub("test@example.com", "London", "daily")
	require.NoError(t, repo.Create(ctx, sub))
	assert.NotZero(t, sub.ID)
	assert.False(t, sub.CreatedAt.IsZero())

	byID, err := repo.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", byID.Email)

	byPair, err := repo.FindByEmailAndCity(ctx, "test@example.com", "London")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, byPair.ID)
	assert.False(t, byPair.Confirmed)

	pending, err := repo.FindPendingByConfirmationToken(ctx, sub.ConfirmationToken)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, pending.ID)
	assert.NotEqual(t, pending.ConfirmationToken, pending.UnsubscribeToken)

	byUnsub, err := repo.FindByUnsubscribeToken(ctx, sub.UnsubscribeToken)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, byUnsub.ID)
}

func TestSubscriptionRepository_Create_Duplicates(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newSub("test@example.com", "London", "daily")))

	t.Run("SameEmailAndCity", func(t *testing.T) {
		dup := newSub("test@example.com", "London", "hourly")
		dup.ConfirmationToken = "other-confirm"
		dup.UnsubscribeToken = "other-unsub"
		err := repo.Create(ctx, dup)
		assert.True(t, errors.IsAlreadyExistsError(err))
	})

	t.Run("ConfirmationTokenCollision", func(t *testing.T) {
		dup := newSub("other@example.com", "Paris", "daily")
		dup.ConfirmationToken = "confirm-test@example.com-London"
		err := repo.Create(ctx, dup)
		assert.True(t, errors.IsAlreadyExistsError(err))
	})

	t.Run("UnsubscribeTokenCollision", func(t *testing.T) {
		dup := newSub("other@example.com", "Paris", "daily")
		dup.UnsubscribeToken = "unsub-test@example.com-London"
		err := repo.Create(ctx, dup)
		assert.True(t, errors.IsAlreadyExistsError(err))
	})

	t.Run("SameEmailOtherCity", func(t *testing.T) {
		assert.NoError(t, repo.Create(ctx, newSub("test@example.com", "Paris", "daily")))
	})

	var count int64
	require.NoError(t, repo.db.Model(&SubscriptionModel{}).Where("email = ? AND city = ?", "test@example.com", "London").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSubscriptionRepository_Create_ConcurrentDuplicates(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))
	ctx := context.Background()

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dupes   int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := newSub("race@example.com", "Kyiv", "daily")
			sub.ConfirmationToken = fmt.Sprintf("confirm-%d", i)
			sub.UnsubscribeToken = fmt.Sprintf("unsub-%d", i)
			err := repo.Create(ctx, sub)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.IsAlreadyExistsError(err):
				dupes++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, dupes)
}

func TestSubscriptionRepository_Create_Validation(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))

	assert.True(t, errors.IsValidationError(repo.Create(context.Background(), nil)))
	assert.True(t, errors.IsValidationError(repo.Create(context.Background(), &ports.SubscriptionData{
		Email: "a@example.com", City: "Kyiv", Frequency: "daily",
	})))
}

func TestSubscriptionRepository_NotFound(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.FindByID(ctx, 42)
	assert.True(t, errors.IsNotFoundError(err))

	_, err = repo.FindByEmailAndCity(ctx, "nobody@example.com", "Nowhere")
	assert.True(t, errors.IsNotFoundError(err))

	_, err = repo.FindPendingByConfirmationToken(ctx, "missing")
	assert.True(t, errors.IsNotFoundError(err))

	_, err = repo.FindByUnsubscribeToken(ctx, "missing")
	assert.True(t, errors.IsNotFoundError(err))

	assert.True(t, errors.IsNotFoundError(repo.MarkConfirmed(ctx, 42)))
	assert.True(t, errors.IsNotFoundError(repo.Delete(ctx, 42)))
}

func TestSubscriptionRepository_MarkConfirmed_OnlyOnce(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))
	ctx := context.Background()

	sub := newSub("test@example.com", "London", "daily")
	require.NoError(t, repo.Create(ctx, sub))

	require.NoError(t, repo.MarkConfirmed(ctx, sub.ID))
	assert.True(t, errors.IsNotFoundError(repo.MarkConfirmed(ctx, sub.ID)))

	// A confirmed subscription no longer matches its confirmation token.
	_, err := repo.FindPendingByConfirmationToken(ctx, sub.ConfirmationToken)
	assert.True(t, errors.IsNotFoundError(err))

	stored, err := repo.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, stored.Confirmed)
}

func TestSubscriptionRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRepositoryAdapter(db)
	ctx := context.Background()

	sub := newSub("test@example.com", "London", "daily")
	require.NoError(t, repo.Create(ctx, sub))

	require.NoError(t, repo.Delete(ctx, sub.ID))
	assert.True(t, errors.IsNotFoundError(repo.Delete(ctx, sub.ID)))

	var count int64
	require.NoError(t, db.Unscoped().Model(&SubscriptionModel{}).Count(&count).Error)
	assert.Zero(t, count)

	// The pair can be subscribed again once removed.
	require.NoError(t, repo.Create(ctx, newSub("test@example.com", "London", "hourly")))
}

func TestSubscriptionRepository_ListAndCountConfirmedByFrequency(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))
	ctx := context.Background()

	daily := newSub("daily@example.com", "Kyiv", "daily")
	pending := newSub("pending@example.com", "Kyiv", "daily")
	hourly := newSub("hourly@example.com", "Kyiv", "hourly")
	for _, s := range []*ports.SubscriptionData{daily, pending, hourly} {
		require.NoError(t, repo.Create(ctx, s))
	}
	require.NoError(t, repo.MarkConfirmed(ctx, daily.ID))
	require.NoError(t, repo.MarkConfirmed(ctx, hourly.ID))

	list, err := repo.ListConfirmedByFrequency(ctx, "daily")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "daily@example.com", list[0].Email)

	count, err := repo.CountConfirmedByFrequency(ctx, "hourly")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.ListConfirmedByFrequency(ctx, "")
	assert.True(t, errors.IsValidationError(err))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(fmt.Errorf("ERROR: duplicate key value violates unique constraint \"idx\" (SQLSTATE 23505)")))
	assert.True(t, isDuplicateKey(fmt.Errorf("UNIQUE constraint failed: subscriptions.email")))
	assert.False(t, isDuplicateKey(gorm.ErrRecordNotFound))
}
