package repositories

import (
	"context"
	"fmt"

	"github.com/Totarae/TransferRedirect/internal/storage"
)

// PatternRepository реализует storage.PatternStore с использованием PostgreSQL.
// Порядок подписок пользователя задаёт serial-колонка id.
type PatternRepository struct {
	DB Querier
}

// NewPatternRepository создаёт новый экземпляр PatternRepository.
func NewPatternRepository(db Querier) *PatternRepository {
	return &PatternRepository{DB: db}
}

// Add сохраняет подписку.
func (r *PatternRepository) Add(ctx context.Context, userID, pattern string) error {
	if userID == "" {
		return storage.ErrEmptyUserID
	}
	if len(storage.PatternTerms(pattern)) == 0 {
		return storage.ErrEmptyPattern
	}
	query := `INSERT INTO patterns (user_id, pattern) VALUES ($1, $2)`
	if _, err := r.DB.Exec(ctx, query, userID, pattern); err != nil {
		return fmt.Errorf("database insert error: %w", err)
	}
	return nil
}

// List возвращает подписки пользователя по порядку добавления.
func (r *PatternRepository) List(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT COALESCE(array_agg(pattern ORDER BY id), '{}') FROM patterns WHERE user_id = $1`
	var patterns []string
	if err := r.DB.QueryRow(ctx, query, userID).Scan(&patterns); err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return patterns, nil
}

// RemoveAt удаляет подписку с индексом index из списка пользователя.
func (r *PatternRepository) RemoveAt(ctx context.Context, userID string, index int) error {
	if index < 0 {
		return storage.ErrPatternIndex
	}
	query := `DELETE FROM patterns WHERE id = (
                  SELECT id FROM patterns WHERE user_id = $1 ORDER BY id OFFSET $2 LIMIT 1)`
	tag, err := r.DB.Exec(ctx, query, userID, index)
	if err != nil {
		return fmt.Errorf("database delete error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrPatternIndex
	}
	return nil
}

// RemoveAll удаляет все подписки пользователя.
func (r *PatternRepository) RemoveAll(ctx context.Context, userID string) error {
	if _, err := r.DB.Exec(ctx, `DELETE FROM patterns WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("database delete error: %w", err)
	}
	return nil
}

// Matching возвращает пользователей, подписки которых совпали с title.
// Части подписки сравниваются в Go, как и в остальных хранилищах.
func (r *PatternRepository) Matching(ctx context.Context, title string) ([]string, error) {
	query := `SELECT COALESCE(array_agg(user_id ORDER BY id), '{}'),
                     COALESCE(array_agg(pattern ORDER BY id), '{}')
              FROM patterns`
	var users, patterns []string
	if err := r.DB.QueryRow(ctx, query).Scan(&users, &patterns); err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if len(users) != len(patterns) {
		return nil, fmt.Errorf("database error: %d users for %d patterns", len(users), len(patterns))
	}
	return storage.MatchingUsers(users, patterns, title), nil
}

// Ping проверяет доступность базы данных.
func (r *PatternRepository) Ping(ctx context.Context) error {
	return r.DB.Ping(ctx)
}
