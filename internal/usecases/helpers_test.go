package usecases_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"wtyczki.backend/internal/domain/entities"
	redispkg "wtyczki.backend/pkg/redis"
)

const testEncryptionKey = "0000000000000000000000000000000000000000000000000000000000000000"

func newTestStores(t *testing.T) (*redispkg.SessionStore, *redispkg.TokenStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sessions, err := redispkg.NewSessionStore(rdb, testEncryptionKey)
	require.NoError(t, err)
	return sessions, redispkg.NewTokenStore(rdb)
}

func activeUser(balance int64) *entities.User {
	return &entities.User{
		ID:                   uuid.New(),
		Email:                "alice@example.com",
		CurrentTokenBalance:  balance,
		TotalTokensPurchased: balance,
		CreatedAt:            time.Now(),
		LastLoginAt:          time.Now(),
	}
}
