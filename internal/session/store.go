// Package session persists portal sessions and guards concurrent update
// submissions. The upstream bearer token is sealed before it is written.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/ticket-portal/internal/domain"
)

// ErrNotFound is returned when a session is absent or has expired.
var ErrNotFound = errors.New("session not found")

// Store persists sessions keyed by their id.
type Store interface {
	Save(ctx context.Context, sess domain.Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

type record struct {
	ID          string      `json:"id"`
	SealedToken string      `json:"sealed_token"`
	Role        domain.Role `json:"role"`
	UserID      int64       `json:"user_id"`
	Username    string      `json:"username"`
	Team        string      `json:"team"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

func encode(sealer *Sealer, sess domain.Session) ([]byte, error) {
	sealed, err := sealer.Seal(sess.Token)
	if err != nil {
		return nil, err
	}
	return json.Marshal(record{
		ID:          sess.ID,
		SealedToken: sealed,
		Role:        sess.Role,
		UserID:      sess.UserID,
		Username:    sess.Username,
		Team:        sess.Team,
		CreatedAt:   sess.CreatedAt.UTC(),
		ExpiresAt:   sess.ExpiresAt.UTC(),
	})
}

func decode(sealer *Sealer, raw []byte) (*domain.Session, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	token, err := sealer.Open(rec.SealedToken)
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		ID:        rec.ID,
		Token:     token,
		Role:      rec.Role,
		UserID:    rec.UserID,
		Username:  rec.Username,
		Team:      rec.Team,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}
