package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	accessTokenKeyPrefix = "access_token:"
	authCodeKeyPrefix    = "auth_code:"
	userTokensIndex      = "user_tokens:"
)

// AccessTokenData is the record behind an opaque OAuth access token
type AccessTokenData struct {
	UserID    string   `json:"userId"`
	ClientID  string   `json:"clientId"`
	Scopes    []string `json:"scopes,omitempty"`
	IssuedAt  int64    `json:"issuedAt"`
	ExpiresAt int64    `json:"expiresAt"` // unix seconds
}

// Expired reports whether the token has passed its expiry
func (d *AccessTokenData) Expired(now time.Time) bool {
	return now.Unix() >= d.ExpiresAt
}

// AuthCodeData is the record behind a one-time OAuth authorization code
type AuthCodeData struct {
	UserID              string `json:"userId"`
	ClientID            string `json:"clientId"`
	RedirectURI         string `json:"redirectUri"`
	CodeChallenge       string `json:"codeChallenge"`
	CodeChallengeMethod string `json:"codeChallengeMethod"`
	ExpiresAt           int64  `json:"expiresAt"`
}

// TokenStore handles the OAuth ephemeral namespaces (access tokens and
// one-time authorization codes) in Redis
type TokenStore struct {
	rdb *goredis.Client
}

// NewTokenStore creates a new token store
func NewTokenStore(rdb *goredis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

// PutAccessToken stores an access token record with TTL and indexes it
// under its owner for bulk revocation
func (s *TokenStore) PutAccessToken(ctx context.Context, token string, data *AccessTokenData, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, accessTokenKeyPrefix+token, jsonData, ttl).Err(); err != nil {
		return err
	}
	indexKey := userTokensIndex + data.UserID
	if err := s.rdb.SAdd(ctx, indexKey, token).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, indexKey, ttl).Err()
}

// GetAccessToken retrieves an access token record. A miss returns
// ErrNotFound; an expired record is deleted on read and ErrExpired returned.
func (s *TokenStore) GetAccessToken(ctx context.Context, token string) (*AccessTokenData, error) {
	raw, err := s.rdb.Get(ctx, accessTokenKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var data AccessTokenData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}

	if data.Expired(time.Now()) {
		_ = s.DeleteAccessToken(ctx, token)
		return nil, ErrExpired
	}

	return &data, nil
}

// DeleteAccessToken revokes a single access token
func (s *TokenStore) DeleteAccessToken(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, accessTokenKeyPrefix+token).Err()
}

// RevokeAllForUser deletes every access token indexed under the user
func (s *TokenStore) RevokeAllForUser(ctx context.Context, userID string) (int, error) {
	indexKey := userTokensIndex + userID
	tokens, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, err
	}

	revoked := 0
	for _, tok := range tokens {
		if err := s.rdb.Del(ctx, accessTokenKeyPrefix+tok).Err(); err == nil {
			revoked++
		}
	}
	_ = s.rdb.Del(ctx, indexKey).Err()
	return revoked, nil
}

// PutAuthCode stores a one-time authorization code
func (s *TokenStore) PutAuthCode(ctx context.Context, code string, data *AuthCodeData, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, authCodeKeyPrefix+code, jsonData, ttl).Err()
}

// ConsumeAuthCode retrieves and deletes an authorization code in one step.
// Codes are single use; a second consume returns ErrNotFound.
func (s *TokenStore) ConsumeAuthCode(ctx context.Context, code string) (*AuthCodeData, error) {
	raw, err := s.rdb.GetDel(ctx, authCodeKeyPrefix+code).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var data AuthCodeData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}

	if time.Now().Unix() >= data.ExpiresAt {
		return nil, ErrExpired
	}

	return &data, nil
}
