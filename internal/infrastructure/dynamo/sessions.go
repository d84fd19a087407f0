package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/news-api/internal/domain"
)

// SessionRepo provides typed DynamoDB operations for the sessions table.
// GSI: user_id-index. expires_at is the table TTL attribute.
type SessionRepo struct {
	t table
}

func NewSessionRepo(client *dynamodb.Client, tableName string) *SessionRepo {
	return &SessionRepo{t: table{client: client, name: tableName, pk: "session_id"}}
}

func (r *SessionRepo) Put(ctx context.Context, s *domain.Session) error {
	return r.t.put(ctx, s)
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	s, err := getItem[domain.Session](ctx, r.t, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return s, nil
}

func (r *SessionRepo) Update(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	return r.t.update(ctx, sessionID, updates)
}

// Disable marks a single session as logged out.
func (r *SessionRepo) Disable(ctx context.Context, sessionID string) error {
	return r.Update(ctx, sessionID, map[string]interface{}{fieldEnable: false})
}

// SoftDeleteByUser disables every session of a user and returns the first
// failure, if any, after attempting all of them.
func (r *SessionRepo) SoftDeleteByUser(ctx context.Context, userID string) error {
	sessions, err := queryIndex[domain.Session](ctx, r.t, "user_id-index", "user_id", userID)
	if err != nil {
		return err
	}
	var firstErr error
	for _, s := range sessions {
		if !s.Enable {
			continue
		}
		if err := r.Disable(ctx, s.SessionID); err != nil {
			slog.Warn("failed to disable session during user soft-delete", "session_id", s.SessionID, "user_id", userID, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
