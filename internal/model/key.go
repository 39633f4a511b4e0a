package model

// KeyRequest тело запроса PUT /api/key.
type KeyRequest struct {
	APIKey string `json:"apikey"`
}

// KeyResponse ответ GET /api/key. Сам ключ никогда не отдаётся целиком.
type KeyResponse struct {
	Set    bool   `json:"set"`
	APIKey string `json:"apikey,omitempty"`
}
