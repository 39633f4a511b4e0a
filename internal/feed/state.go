package feed

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"
)

// InitialLookback насколько в прошлое смотрит первый запуск без сохранённого состояния.
const InitialLookback = 4 * time.Hour

// State хранит дату публикации последнего обработанного элемента.
type State interface {
	Load() (time.Time, error)
	Save(t time.Time) error
}

// FileState хранит дату в файле в формате RFC 1123Z.
type FileState struct {
	Path string
	now  func() time.Time
}

// NewFileState создаёт состояние в файле path.
func NewFileState(path string) *FileState {
	return &FileState{Path: path, now: time.Now}
}

// Load читает дату. Если файла нет, он создаётся со временем now-InitialLookback.
func (s *FileState) Load() (time.Time, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		initial := s.now().Add(-InitialLookback).Truncate(time.Second)
		return initial, s.Save(initial)
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC1123Z, strings.TrimSpace(string(data)))
}

// Save перезаписывает файл.
func (s *FileState) Save(t time.Time) error {
	return os.WriteFile(s.Path, []byte(t.Format(time.RFC1123Z)), 0600)
}

// MemoryState состояние без файла, начинается с now-InitialLookback.
type MemoryState struct {
	mu   sync.Mutex
	last time.Time
}

// NewMemoryState создаёт состояние в памяти.
func NewMemoryState() *MemoryState {
	return &MemoryState{last: time.Now().Add(-InitialLookback)}
}

func (s *MemoryState) Load() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, nil
}

func (s *MemoryState) Save(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = t
	return nil
}
