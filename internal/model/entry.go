package model

// Entry представляет строку файла хранилища ключей.
// Запись с пустым APIKey означает удаление ключа пользователя.
type Entry struct {
	UserID string `json:"user_id"`
	APIKey string `json:"api_key"`
}
