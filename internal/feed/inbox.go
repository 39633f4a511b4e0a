package feed

import (
	"context"
	"sync"

	"github.com/Totarae/TransferRedirect/internal/model"
)

// DefaultInboxSize сколько уведомлений хранится на пользователя.
const DefaultInboxSize = 50

// Notifier доставляет уведомление пользователю.
type Notifier interface {
	Notify(ctx context.Context, userID string, n model.Notification) error
}

// Inbox держит последние уведомления каждого пользователя в памяти.
// При переполнении отбрасываются самые старые.
type Inbox struct {
	mu    sync.Mutex
	size  int
	items map[string][]model.Notification
}

// NewInbox создаёт ящик на size уведомлений на пользователя.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &Inbox{size: size, items: make(map[string][]model.Notification)}
}

// Notify кладёт уведомление в ящик пользователя.
func (b *Inbox) Notify(_ context.Context, userID string, n model.Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := append(b.items[userID], n)
	if over := len(list) - b.size; over > 0 {
		list = append([]model.Notification(nil), list[over:]...)
	}
	b.items[userID] = list
	return nil
}

// Drain отдаёт и очищает уведомления пользователя.
func (b *Inbox) Drain(userID string) []model.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.items[userID]
	delete(b.items, userID)
	return list
}

// Len количество уведомлений пользователя.
func (b *Inbox) Len(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items[userID])
}
