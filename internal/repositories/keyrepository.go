package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Totarae/TransferRedirect/internal/model"
	"github.com/Totarae/TransferRedirect/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier часть pgxpool.Pool, которой пользуется репозиторий.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// KeyRepository реализует storage.KeyStore с использованием PostgreSQL.
type KeyRepository struct {
	DB Querier
}

// NewKeyRepository создаёт новый экземпляр KeyRepository.
func NewKeyRepository(db Querier) *KeyRepository {
	return &KeyRepository{DB: db}
}

// Get возвращает ключ пользователя или пустую строку.
func (r *KeyRepository) Get(ctx context.Context, userID string) (string, error) {
	obj, err := r.Find(ctx, userID)
	if err != nil || obj == nil {
		return "", err
	}
	return obj.APIKey, nil
}

// Find извлекает строку ключа. nil, если строки нет.
func (r *KeyRepository) Find(ctx context.Context, userID string) (*model.KeyObject, error) {
	query := `SELECT user_id, api_key, updated FROM api_keys WHERE user_id = $1`
	obj := &model.KeyObject{}
	err := r.DB.QueryRow(ctx, query, userID).Scan(&obj.UserID, &obj.APIKey, &obj.Updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return obj, nil
}

// Set сохраняет ключ; существующая запись перезаписывается.
func (r *KeyRepository) Set(ctx context.Context, userID, apiKey string) error {
	if userID == "" {
		return storage.ErrEmptyUserID
	}
	if apiKey == "" {
		return r.Delete(ctx, userID)
	}
	query := `INSERT INTO api_keys (user_id, api_key, updated)
              VALUES ($1, $2, now())
              ON CONFLICT (user_id) DO UPDATE SET api_key = EXCLUDED.api_key, updated = now()`
	if _, err := r.DB.Exec(ctx, query, userID, apiKey); err != nil {
		return fmt.Errorf("database upsert error: %w", err)
	}
	return nil
}

// Delete удаляет ключ пользователя.
func (r *KeyRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.DB.Exec(ctx, `DELETE FROM api_keys WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("database delete error: %w", err)
	}
	return nil
}

// Ping проверяет доступность базы данных.
func (r *KeyRepository) Ping(ctx context.Context) error {
	return r.DB.Ping(ctx)
}
