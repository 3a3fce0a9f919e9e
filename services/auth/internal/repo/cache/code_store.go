package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"storynest/services/auth/internal/entity"

	"github.com/redis/go-redis/v9"
)

const codeKeyPrefix = "auth:code:"

var ErrCodeNotFound = errors.New("code not found or expired")

// CodeStore keeps one-time codes used in email links.
type CodeStore interface {
	Issue(ctx context.Context, userID string, purpose entity.CodePurpose, ttl time.Duration) (string, error)
	// Consume returns the code's owner and deletes it, so each code works
	// once.
	Consume(ctx context.Context, code string) (string, entity.CodePurpose, error)
}

type codeEntry struct {
	UserID  string             `json:"user_id"`
	Purpose entity.CodePurpose `json:"purpose"`
}

type redisCodeStore struct {
	client *redis.Client
}

func NewCodeStore(client *redis.Client) CodeStore {
	return &redisCodeStore{client: client}
}

func (s *redisCodeStore) Issue(ctx context.Context, userID string, purpose entity.CodePurpose, ttl time.Duration) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := hex.EncodeToString(buf)

	payload, err := json.Marshal(codeEntry{UserID: userID, Purpose: purpose})
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, codeKeyPrefix+code, payload, ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

func (s *redisCodeStore) Consume(ctx context.Context, code string) (string, entity.CodePurpose, error) {
	raw, err := s.client.GetDel(ctx, codeKeyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", "", ErrCodeNotFound
	}
	if err != nil {
		return "", "", err
	}

	var entry codeEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return "", "", err
	}
	return entry.UserID, entry.Purpose, nil
}
