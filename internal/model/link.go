package model

// LinkRequest представляет структуру запроса на построение ссылки перенаправления.
type LinkRequest struct {
	URL string `json:"url"`
}

// LinkResponse представляет структуру ответа с готовой ссылкой.
type LinkResponse struct {
	Result string `json:"result"`
}
