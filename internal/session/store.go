package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// SavedAnswer is the per-question state of an in-progress attempt. It
// lives only in the session; nothing is persisted to the database.
type SavedAnswer struct {
	Answer  string `json:"answer"`
	Flagged bool   `json:"flagged"`
}

// Session is the full server-side session payload: who the visitor is
// plus their attempt scratchpad keyed "kind:assessmentID:questionID".
type Session struct {
	Username  string                 `json:"username"`
	IsAdmin   bool                   `json:"is_admin"`
	Answers   map[string]SavedAnswer `json:"answers"`
	CreatedAt time.Time              `json:"created_at"`
}

// AnswerKey builds the scratchpad key for one question of one attempt.
func AnswerKey(kind string, assessmentID, questionID uint) string {
	return fmt.Sprintf("%s:%d:%d", kind, assessmentID, questionID)
}

// Store manages opaque session IDs in Redis. Each write refreshes the
// TTL, so a session lives as long as the user keeps using it.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(id string) string {
	return "session:" + id
}

// Create starts a new session and returns its ID.
func (s *Store) Create(ctx context.Context, username string, isAdmin bool) (string, error) {
	id := uuid.New().String()
	sess := &Session{
		Username:  username,
		IsAdmin:   isAdmin,
		Answers:   make(map[string]SavedAnswer),
		CreatedAt: time.Now(),
	}
	if err := s.save(ctx, id, sess); err != nil {
		return "", err
	}
	return id, nil
}

// Get loads the session for an ID.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if sess.Answers == nil {
		sess.Answers = make(map[string]SavedAnswer)
	}
	return &sess, nil
}

// SaveAnswer records one answer in the session scratchpad.
func (s *Store) SaveAnswer(ctx context.Context, id, answerKey string, answer SavedAnswer) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.Answers[answerKey] = answer
	return s.save(ctx, id, sess)
}

// Touch refreshes the session TTL without changing its contents.
func (s *Store) Touch(ctx context.Context, id string) error {
	ok, err := s.client.Expire(ctx, s.key(id), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// Destroy removes the session entirely.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, id string, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
