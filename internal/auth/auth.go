package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	// CookieName имя куки сессии.
	CookieName   = "transfer_session"
	cookieMaxAge = 365 * 24 * 60 * 60 // 1 год
)

type ctxKey struct{}

type Auth struct {
	SecretKey string
	Secure    bool
}

func New(secret string) *Auth {
	return &Auth{SecretKey: secret}
}

// Создать подпись
func (a *Auth) sign(userID string) string {
	mac := hmac.New(sha256.New, []byte(a.SecretKey))
	mac.Write([]byte(userID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Создать куку вида: transfer_session=userID:signature
func (a *Auth) issueCookie(w http.ResponseWriter) string {
	userID := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    a.SignCookieValue(userID),
		Path:     "/",
		HttpOnly: true,
		Secure:   a.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   cookieMaxAge,
	})
	return userID
}

// GetOrSetUserID возвращает id сессии, при необходимости выдавая новую куку
func (a *Auth) GetOrSetUserID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := a.ValidateUserID(r); ok {
		return id
	}
	return a.issueCookie(w)
}

// ValidateUserID проверяет наличие и подпись куки
func (a *Auth) ValidateUserID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	parts := strings.SplitN(cookie.Value, ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", false
	}
	if !hmac.Equal([]byte(a.sign(parts[0])), []byte(parts[1])) {
		return "", false
	}

	return parts[0], true
}

// SignCookieValue значение куки для userID; используется и в тестах
func (a *Auth) SignCookieValue(userID string) string {
	return fmt.Sprintf("%s:%s", userID, a.sign(userID))
}

// Middleware кладёт id сессии в контекст запроса
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := a.GetOrSetUserID(w, r)
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID возвращает контекст с id сессии
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext достаёт id сессии из контекста
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
