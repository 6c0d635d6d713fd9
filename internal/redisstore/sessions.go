package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/masjid-admin/internal/csvimport"
	"github.com/pkordes/masjid-admin/internal/domain"
)

// SessionStore keeps import sessions between requests. Every Save refreshes
// the TTL, so a session expires ttl after its last change.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionStore returns a SessionStore with the given idle TTL.
func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return keyPrefix + "import_session:" + id.String()
}

func lockKey(id uuid.UUID) string {
	return sessionKey(id) + ":submit"
}

// Save writes the session.
func (s *SessionStore) Save(ctx context.Context, sess *csvimport.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("redisstore.SessionStore.Save: encode: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore.SessionStore.Save: %w", err)
	}
	return nil
}

// Load reads a session. Returns domain.ErrNotFound if it never existed or
// has expired.
func (s *SessionStore) Load(ctx context.Context, id uuid.UUID) (*csvimport.Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redisstore.SessionStore.Load: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore.SessionStore.Load: %w", err)
	}

	var sess csvimport.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("redisstore.SessionStore.Load: decode: %w", err)
	}
	if sess.Mapping == nil {
		sess.Mapping = map[string]string{}
	}
	return &sess, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redisstore.SessionStore.Delete: %w", err)
	}
	return nil
}

// Lock takes the session's submit lock for at most ttl. It returns
// domain.ErrConflict while another holder has it. The returned func
// releases the lock if it is still ours.
func (s *SessionStore) Lock(ctx context.Context, id uuid.UUID, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := s.rdb.SetNX(ctx, lockKey(id), token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore.SessionStore.Lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("redisstore.SessionStore.Lock: submit in progress: %w", domain.ErrConflict)
	}

	release := func() {
		// Fresh context: the request's may already be cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, s.rdb, []string{lockKey(id)}, token).Err()
	}
	return release, nil
}

// releaseScript deletes the lock only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)
