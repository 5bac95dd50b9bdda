package blacklist

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nmbsms/scholarship-backend/internal/database/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// one in-memory database, one connection
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, model.Migrate(db))
	return db
}

func TestRevokeAndIsRevoked(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testDB(t))

	revoked, err := store.IsRevoked(ctx, "some-token")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "some-token", time.Now().Add(time.Hour)))

	revoked, err = store.IsRevoked(ctx, "some-token")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "another-token")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRevoke_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	store := NewStore(db)

	exp := time.Now().Add(time.Hour)
	require.NoError(t, store.Revoke(ctx, "some-token", exp))
	require.NoError(t, store.Revoke(ctx, "some-token", exp))

	var count int64
	require.NoError(t, db.Model(&model.RevokedToken{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testDB(t))

	now := time.Now()
	require.NoError(t, store.Revoke(ctx, "expired-1", now.Add(-2*time.Hour)))
	require.NoError(t, store.Revoke(ctx, "expired-2", now.Add(-time.Minute)))
	require.NoError(t, store.Revoke(ctx, "live-1", now.Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "boundary", now))

	deleted, err := store.SweepExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	// entries expiring at or after the sweep instant survive
	for _, tok := range []string{"live-1", "boundary"} {
		revoked, err := store.IsRevoked(ctx, tok)
		require.NoError(t, err)
		require.True(t, revoked, "sweep must not remove unexpired entry %q", tok)
	}
	for _, tok := range []string{"expired-1", "expired-2"} {
		revoked, err := store.IsRevoked(ctx, tok)
		require.NoError(t, err)
		require.False(t, revoked)
	}

	// a second sweep with the same instant removes nothing further
	deleted, err = store.SweepExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 0, deleted)
}

func TestRevoke_VisibleToConcurrentChecks(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testDB(t))
	exp := time.Now().Add(time.Hour)

	// Every revoke completed before its check must be observed, across
	// goroutines, with a sweep running in between.
	var wg sync.WaitGroup
	errs := make(chan error, 64)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok := fmt.Sprintf("token-%d", i)
			if err := store.Revoke(ctx, tok, exp); err != nil {
				errs <- err
				return
			}
			revoked, err := store.IsRevoked(ctx, tok)
			if err != nil {
				errs <- err
				return
			}
			if !revoked {
				errs <- fmt.Errorf("revocation of %s not visible after revoke returned", tok)
			}
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := store.SweepExpired(ctx, time.Now()); err != nil {
			errs <- err
		}
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// the sweep must not have eaten any still-valid entry
	for i := 0; i < 16; i++ {
		revoked, err := store.IsRevoked(ctx, fmt.Sprintf("token-%d", i))
		require.NoError(t, err)
		require.True(t, revoked)
	}
}

func TestHashToken_StableAndDistinct(t *testing.T) {
	require.Equal(t, HashToken("abc"), HashToken("abc"))
	require.NotEqual(t, HashToken("abc"), HashToken("abd"))
	require.Len(t, HashToken("abc"), 64)
}
