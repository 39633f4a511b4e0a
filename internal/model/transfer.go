package model

// StatusError значение поля status, которым провайдер сообщает об ошибке.
const StatusError = "error"

// TransferResponse ответ провайдера на /api/transfer/create.
// Решение принимается только по Status, остальные поля нужны для логов.
type TransferResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Type    string `json:"type,omitempty"`
}

// Failed сообщает, отклонил ли провайдер создание трансфера.
func (r TransferResponse) Failed() bool {
	return r.Status == StatusError
}
