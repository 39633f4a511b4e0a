package model

import "time"

// PatternEntry подписка пользователя на релизы.
// Pattern состоит из частей через ';', все части должны встретиться в заголовке.
type PatternEntry struct {
	UserID  string `json:"user_id"`
	Pattern string `json:"pattern"`
}

// PatternRequest тело запроса POST /api/patterns.
type PatternRequest struct {
	Pattern string `json:"pattern"`
}

// PatternItem подписка с её индексом в списке пользователя.
type PatternItem struct {
	Index   int    `json:"index"`
	Pattern string `json:"pattern"`
}

// PatternsResponse ответ GET /api/patterns.
type PatternsResponse struct {
	Patterns []PatternItem `json:"patterns"`
}

// Notification новый релиз, совпавший с подпиской.
type Notification struct {
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
}
