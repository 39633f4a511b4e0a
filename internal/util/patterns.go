package util

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/Totarae/TransferRedirect/internal/model"
	"github.com/Totarae/TransferRedirect/internal/storage"
)

// PatternStore хранит подписки в памяти и, если задан файл, целиком переписывает его при каждом изменении.
type PatternStore struct {
	entries []model.PatternEntry
	mutex   sync.RWMutex
	file    string
}

// NewPatternStore создаёт хранилище подписок. Пустой путь означает только память.
func NewPatternStore(file string) *PatternStore {
	store := &PatternStore{file: file}
	if err := store.LoadFromFile(); err != nil {
		log.Printf("Ошибка загрузки подписок из файла: %v", err)
	}
	return store
}

// Add добавляет подписку в конец списка пользователя.
func (s *PatternStore) Add(_ context.Context, userID, pattern string) error {
	if userID == "" {
		return storage.ErrEmptyUserID
	}
	if len(storage.PatternTerms(pattern)) == 0 {
		return storage.ErrEmptyPattern
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	next := append(slices.Clip(s.entries), model.PatternEntry{UserID: userID, Pattern: pattern})
	return s.commit(next)
}

// List возвращает подписки пользователя по порядку добавления.
func (s *PatternStore) List(_ context.Context, userID string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var patterns []string
	for _, e := range s.entries {
		if e.UserID == userID {
			patterns = append(patterns, e.Pattern)
		}
	}
	return patterns, nil
}

// RemoveAt удаляет подписку с индексом index из списка пользователя.
func (s *PatternStore) RemoveAt(_ context.Context, userID string, index int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if index >= 0 {
		n := 0
		for i, e := range s.entries {
			if e.UserID != userID {
				continue
			}
			if n == index {
				return s.commit(slices.Delete(slices.Clone(s.entries), i, i+1))
			}
			n++
		}
	}
	return storage.ErrPatternIndex
}

// RemoveAll удаляет все подписки пользователя.
func (s *PatternStore) RemoveAll(_ context.Context, userID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.commit(slices.DeleteFunc(slices.Clone(s.entries), func(e model.PatternEntry) bool {
		return e.UserID == userID
	}))
}

// Matching возвращает пользователей, подписки которых совпали с title.
func (s *PatternStore) Matching(_ context.Context, title string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	users := make([]string, len(s.entries))
	patterns := make([]string, len(s.entries))
	for i, e := range s.entries {
		users[i], patterns[i] = e.UserID, e.Pattern
	}
	return storage.MatchingUsers(users, patterns, title), nil
}

// Ping всегда успешен.
func (s *PatternStore) Ping(context.Context) error {
	return nil
}

// commit сохраняет next в файл и только потом подменяет состояние в памяти.
func (s *PatternStore) commit(next []model.PatternEntry) error {
	if err := s.saveToFile(next); err != nil {
		return err
	}
	s.entries = next
	return nil
}

// LoadFromFile читает снимок подписок. Отсутствующий файл не ошибка.
func (s *PatternStore) LoadFromFile() error {
	if s.file == "" {
		return nil
	}
	data, err := os.ReadFile(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var entries []model.PatternEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	s.entries = entries
	log.Printf("Загружено %d подписок из файла %s", len(entries), s.file)
	return nil
}

func (s *PatternStore) saveToFile(entries []model.PatternEntry) error {
	if s.file == "" {
		return nil
	}
	if entries == nil {
		entries = []model.PatternEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	// Снимок заменяется целиком через временный файл рядом
	tmp, err := os.CreateTemp(filepath.Dir(s.file), filepath.Base(s.file)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.file)
}
