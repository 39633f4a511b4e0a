package model

import "time"

// KeyObject строка таблицы api_keys.
type KeyObject struct {
	UserID  string
	APIKey  string
	Updated time.Time
}
