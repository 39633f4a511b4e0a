// Package feed следит за RSS-лентой релизов и уведомляет подписчиков ссылками вида <base>/?r=<link>.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// ErrEmptyFeed в ленте нет ни одного пригодного элемента.
var ErrEmptyFeed = errors.New("feed returned no valid items")

// Item элемент ленты.
type Item struct {
	Title     string
	Link      string
	Published time.Time
}

// Source источник элементов ленты.
type Source interface {
	Fetch(ctx context.Context) ([]Item, error)
}

// Fetcher загружает RSS/Atom ленту по URL.
type Fetcher struct {
	URL    string
	Parser *gofeed.Parser
	Logger *zap.Logger
}

// NewFetcher создаёт загрузчик ленты. nil httpClient означает http.DefaultClient.
func NewFetcher(url string, httpClient *http.Client, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := gofeed.NewParser()
	if httpClient != nil {
		parser.Client = httpClient
	}
	return &Fetcher{URL: url, Parser: parser, Logger: logger}
}

// Fetch загружает ленту. Элементы без заголовка, ссылки или даты публикации пропускаются.
func (f *Fetcher) Fetch(ctx context.Context) ([]Item, error) {
	parsed, err := f.Parser.ParseURLWithContext(f.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for i, it := range parsed.Items {
		link := itemLink(it)
		switch {
		case it.Title == "":
			f.Logger.Warn("feed item has no title", zap.Int("index", i))
			continue
		case link == "":
			f.Logger.Warn("feed item has no link", zap.Int("index", i), zap.String("title", it.Title))
			continue
		case it.PublishedParsed == nil:
			f.Logger.Warn("feed item has no valid publication date", zap.Int("index", i), zap.String("title", it.Title))
			continue
		}
		items = append(items, Item{Title: it.Title, Link: link, Published: *it.PublishedParsed})
	}
	if len(items) == 0 {
		return nil, ErrEmptyFeed
	}
	return items, nil
}

// itemLink ссылка элемента; если её нет, берётся первое вложение (.torrent).
func itemLink(it *gofeed.Item) string {
	if it.Link != "" {
		return it.Link
	}
	for _, enc := range it.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}
