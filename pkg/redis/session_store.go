package redis

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix  = "session:"
	userSessionsIndex = "user_sessions:"
)

// SessionData holds the data stored for a browser session
type SessionData struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	IssuedAt  int64  `json:"issuedAt"`
	ExpiresAt int64  `json:"expiresAt"` // unix seconds
}

// Expired reports whether the session has passed its expiry
func (d *SessionData) Expired(now time.Time) bool {
	return now.Unix() >= d.ExpiresAt
}

// SessionStore handles session storage in Redis with encryption
type SessionStore struct {
	rdb           *goredis.Client
	encryptionKey []byte
}

// NewSessionStore creates a new session store
func NewSessionStore(rdb *goredis.Client, encryptionKeyHex string) (*SessionStore, error) {
	key, err := hex.DecodeString(encryptionKeyHex)
	if err != nil {
		return nil, errors.New("invalid encryption key hex")
	}
	if len(key) != 32 {
		return nil, errors.New("encryption key must be 32 bytes (64 hex chars)")
	}
	return &SessionStore{rdb: rdb, encryptionKey: key}, nil
}

// Create stores encrypted session data and indexes the session under its
// owner so all of a user's sessions can be revoked in one pass
func (s *SessionStore) Create(ctx context.Context, sessionID string, data *SessionData, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	encryptedData, err := s.encrypt(jsonData)
	if err != nil {
		return err
	}

	if err := s.rdb.Set(ctx, sessionKeyPrefix+sessionID, encryptedData, ttl).Err(); err != nil {
		return err
	}

	indexKey := userSessionsIndex + data.UserID
	if err := s.rdb.SAdd(ctx, indexKey, sessionID).Err(); err != nil {
		return err
	}
	// keep the index alive at least as long as the session
	return s.rdb.Expire(ctx, indexKey, ttl).Err()
}

// Get retrieves and decrypts session data. A missing key returns ErrNotFound.
// A session past its recorded expiry is deleted on read and ErrExpired is
// returned.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*SessionData, error) {
	encryptedDataStr, err := s.rdb.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	decryptedData, err := s.decrypt(encryptedDataStr)
	if err != nil {
		return nil, err
	}

	var data SessionData
	if err := json.Unmarshal(decryptedData, &data); err != nil {
		return nil, err
	}

	if data.Expired(time.Now()) {
		_ = s.Delete(ctx, sessionID)
		return nil, ErrExpired
	}

	return &data, nil
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

// RevokeAllForUser deletes every session indexed under the user
func (s *SessionStore) RevokeAllForUser(ctx context.Context, userID string) (int, error) {
	indexKey := userSessionsIndex + userID
	ids, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, err
	}

	revoked := 0
	for _, id := range ids {
		if err := s.rdb.Del(ctx, sessionKeyPrefix+id).Err(); err == nil {
			revoked++
		}
	}
	_ = s.rdb.Del(ctx, indexKey).Err()
	return revoked, nil
}

func (s *SessionStore) encrypt(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return hex.EncodeToString(ciphertext), nil
}

func (s *SessionStore) decrypt(ciphertextHex string) ([]byte, error) {
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
