package storage

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrEmptyUserID ключ нельзя сохранить без идентификатора сессии.
	ErrEmptyUserID = errors.New("empty user id")
	// ErrEmptyPattern в подписке нет ни одной непустой части.
	ErrEmptyPattern = errors.New("empty pattern")
	// ErrPatternIndex у пользователя нет подписки с таким индексом.
	ErrPatternIndex = errors.New("pattern index out of range")
)

// KeyStore определяет интерфейс для работы с хранилищем API-ключей.
type KeyStore interface {
	// Get возвращает ключ пользователя или пустую строку, если ключа нет.
	Get(ctx context.Context, userID string) (string, error)
	// Set сохраняет ключ пользователя.
	Set(ctx context.Context, userID, apiKey string) error
	// Delete удаляет ключ пользователя.
	Delete(ctx context.Context, userID string) error
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}

// SessionKeys отдаёт ключ одной сессии только на чтение.
// Если у сессии ключа нет, используется Fallback.
type SessionKeys struct {
	Store    KeyStore
	UserID   string
	Fallback string
	Logger   *zap.Logger
}

// APIKey возвращает ключ сессии. Ошибки хранилища логируются и читаются как отсутствие ключа.
func (s SessionKeys) APIKey(ctx context.Context) string {
	if s.Store != nil && s.UserID != "" {
		key, err := s.Store.Get(ctx, s.UserID)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Warn("failed to read api key", zap.String("user_id", s.UserID), zap.Error(err))
			}
		} else if key != "" {
			return key
		}
	}
	return s.Fallback
}

// StaticKey ключ, не зависящий от сессии.
type StaticKey string

// APIKey возвращает сам ключ.
func (k StaticKey) APIKey(context.Context) string {
	return string(k)
}

// PatternStore хранит подписки пользователей. Порядок подписок пользователя
// сохраняется, индекс считается внутри списка одного пользователя.
type PatternStore interface {
	Add(ctx context.Context, userID, pattern string) error
	List(ctx context.Context, userID string) ([]string, error)
	RemoveAt(ctx context.Context, userID string, index int) error
	RemoveAll(ctx context.Context, userID string) error
	// Matching возвращает пользователей, у которых хотя бы одна подписка совпала с title.
	Matching(ctx context.Context, title string) ([]string, error)
	Ping(ctx context.Context) error
}

// PatternTerms разбивает подписку на непустые части.
func PatternTerms(pattern string) []string {
	var terms []string
	for _, t := range strings.Split(pattern, ";") {
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// MatchPattern true, если каждая часть подписки входит в title. Регистр учитывается.
func MatchPattern(pattern, title string) bool {
	for _, t := range PatternTerms(pattern) {
		if !strings.Contains(title, t) {
			return false
		}
	}
	return true
}

// MatchingUsers отбирает пользователей с совпавшей подпиской, без повторов, в порядке entries.
func MatchingUsers(userIDs, patterns []string, title string) []string {
	seen := make(map[string]struct{})
	var users []string
	for i, p := range patterns {
		if _, ok := seen[userIDs[i]]; ok || !MatchPattern(p, title) {
			continue
		}
		seen[userIDs[i]] = struct{}{}
		users = append(users, userIDs[i])
	}
	return users
}
