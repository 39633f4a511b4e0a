package keylog

import "go.uber.org/zap"

const keyField = "api_key"

func fields(key string) []zap.Field {
	return []zap.Field{
		zap.String("apikey", key),  // want `поле "apikey" раскрывает API-ключ в логах`
		zap.Any(keyField, key),     // want `поле "api_key" раскрывает API-ключ в логах`
		zap.String("API-Key", key), // want `поле "API-Key" раскрывает API-ключ в логах`
		zap.String("user_id", key),
		other("apikey", key),
	}
}

func other(string, string) zap.Field { return zap.Field{} }
