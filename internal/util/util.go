package util

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/Totarae/TransferRedirect/internal/model"
	"github.com/Totarae/TransferRedirect/internal/storage"
)

// KeyStore provides a thread-safe API key storage.
// С пустым путём к файлу работает только в памяти.
type KeyStore struct {
	data  map[string]string
	mutex sync.RWMutex
	file  string
}

// NewKeyStore initializes a new KeyStore
func NewKeyStore(file string) *KeyStore {
	store := &KeyStore{
		data: make(map[string]string),
		file: file,
	}

	// Загружаем данные из файла
	if err := store.LoadFromFile(); err != nil {
		log.Printf("Ошибка загрузки из файла: %v", err)
	}

	return store
}

// Get returns the API key of a user
func (s *KeyStore) Get(_ context.Context, userID string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.data[userID], nil
}

// Set stores the API key of a user
func (s *KeyStore) Set(_ context.Context, userID, apiKey string) error {
	if userID == "" {
		return storage.ErrEmptyUserID
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	// Сначала файл: при ошибке записи память не меняется
	if err := s.AppendToFile(model.Entry{UserID: userID, APIKey: apiKey}); err != nil {
		return err
	}
	if apiKey == "" {
		delete(s.data, userID)
	} else {
		s.data[userID] = apiKey
	}
	return nil
}

// Delete removes the API key of a user
func (s *KeyStore) Delete(ctx context.Context, userID string) error {
	return s.Set(ctx, userID, "")
}

// Ping всегда успешен: файл открывается на каждую запись.
func (s *KeyStore) Ping(context.Context) error {
	return nil
}

// Len количество сохранённых ключей
func (s *KeyStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// LoadFromFile загружает данные из файла при старте сервера
func (s *KeyStore) LoadFromFile() error {
	if s.file == "" {
		return nil
	}
	file, err := os.Open(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Файл ещё не создан, это не ошибка
		}
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)

	for {
		var entry model.Entry
		if err := decoder.Decode(&entry); err != nil {
			break
		}
		if entry.APIKey == "" {
			delete(s.data, entry.UserID)
			continue
		}
		s.data[entry.UserID] = entry.APIKey
	}

	log.Printf("Загружено %d ключей из файла %s", len(s.data), s.file)
	return nil
}

// AppendToFile добавляет новую запись в файл
func (s *KeyStore) AppendToFile(entry model.Entry) error {
	if s.file == "" {
		return nil
	}
	file, err := os.OpenFile(s.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	_, err = file.Write(append(data, '\n')) // Записываем с новой строки
	return err
}

// BuildRedirectLink строит ссылку вида <base>/?r=<value>, которую понимает корневой обработчик.
func BuildRedirectLink(baseURL, value string) string {
	return strings.TrimSuffix(baseURL, "/") + "/?r=" + url.QueryEscape(value)
}

// MaskKey скрывает ключ, оставляя последние четыре символа.
func MaskKey(key string) string {
	runes := []rune(key)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
