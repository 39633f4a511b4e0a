package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Totarae/TransferRedirect/internal/model"
	"github.com/Totarae/TransferRedirect/internal/util"
	"go.uber.org/zap"
)

// Matcher ищет пользователей, подписанных на заголовок.
type Matcher interface {
	Matching(ctx context.Context, title string) ([]string, error)
}

// Watcher периодически опрашивает ленту и уведомляет подписчиков о новых элементах.
type Watcher struct {
	Source       Source
	Patterns     Matcher
	Notifier     Notifier
	State        State
	BaseURL      string
	Interval     time.Duration
	FailInterval time.Duration
	Logger       *zap.Logger
}

// Poll выполняет один опрос. Возвращает число доставленных уведомлений.
// Состояние сдвигается на самый свежий элемент, даже если подписчиков не нашлось.
func (w *Watcher) Poll(ctx context.Context) (int, error) {
	items, err := w.Source.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	last, err := w.State.Load()
	if err != nil {
		return 0, fmt.Errorf("load feed state: %w", err)
	}

	var fresh []Item
	for _, it := range items {
		if it.Published.After(last) {
			fresh = append(fresh, it)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Published.After(fresh[j].Published)
	})

	delivered := 0
	for _, it := range fresh {
		delivered += w.notify(ctx, it)
	}

	if err := w.State.Save(fresh[0].Published); err != nil {
		return delivered, fmt.Errorf("save feed state: %w", err)
	}
	return delivered, nil
}

func (w *Watcher) notify(ctx context.Context, it Item) int {
	users, err := w.Patterns.Matching(ctx, it.Title)
	if err != nil {
		w.Logger.Error("pattern lookup failed", zap.String("title", it.Title), zap.Error(err))
		return 0
	}
	if len(users) == 0 {
		return 0
	}

	n := model.Notification{
		Title:     it.Title,
		Source:    it.Link,
		Link:      util.BuildRedirectLink(w.BaseURL, it.Link),
		Published: it.Published,
	}
	delivered := 0
	for _, userID := range users {
		if err := w.Notifier.Notify(ctx, userID, n); err != nil {
			w.Logger.Error("notify failed", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		delivered++
	}
	w.Logger.Info("release matched", zap.String("title", it.Title), zap.Int("users", delivered))
	return delivered
}

// Run опрашивает ленту до отмены ctx. После ошибки ждёт FailInterval, иначе Interval.
func (w *Watcher) Run(ctx context.Context) {
	for {
		wait := w.Interval
		if _, err := w.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			w.Logger.Error("feed poll failed", zap.Error(err))
			wait = w.FailInterval
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
