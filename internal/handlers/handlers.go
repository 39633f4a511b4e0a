package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Totarae/TransferRedirect/internal/auth"
	"github.com/Totarae/TransferRedirect/internal/feed"
	"github.com/Totarae/TransferRedirect/internal/model"
	"github.com/Totarae/TransferRedirect/internal/service"
	"github.com/Totarae/TransferRedirect/internal/storage"
	"github.com/Totarae/TransferRedirect/internal/util"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler обрабатывает HTTP-запросы сервиса.
type Handler struct {
	Service     *service.RedirectService
	Keys        storage.KeyStore
	Patterns    storage.PatternStore
	Inbox       *feed.Inbox
	BaseURL     string
	FallbackKey string
	Logger      *zap.Logger
}

// NewHandler создаёт обработчик. Подписки и уведомления по умолчанию живут в памяти.
func NewHandler(svc *service.RedirectService, keys storage.KeyStore, baseURL, fallbackKey string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Service:     svc,
		Keys:        keys,
		Patterns:    util.NewPatternStore(""),
		Inbox:       feed.NewInbox(feed.DefaultInboxSize),
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		FallbackKey: fallbackKey,
		Logger:      logger,
	}
}

// httpNavigator отвечает клиенту 307 на адрес перехода.
type httpNavigator struct {
	w    http.ResponseWriter
	done bool
}

func (n *httpNavigator) Navigate(url string) {
	if n.done {
		return
	}
	n.done = true
	// Устанавливаем заголовок Location и код 307
	n.w.Header().Set("Location", url)
	n.w.WriteHeader(http.StatusTemporaryRedirect)
}

func (h *Handler) sessionKeys(r *http.Request) storage.SessionKeys {
	userID, _ := auth.UserIDFromContext(r.Context())
	return storage.SessionKeys{
		Store:    h.Keys,
		UserID:   userID,
		Fallback: h.FallbackKey,
		Logger:   h.Logger,
	}
}

// Redirect создаёт трансфер по параметру r и перенаправляет на список трансферов.
// Во всех остальных случаях отвечает 204.
func (h *Handler) Redirect(res http.ResponseWriter, req *http.Request) {
	nav := &httpNavigator{w: res}
	outcome := h.Service.Execute(req.Context(), req.URL, h.sessionKeys(req), nav)
	h.Logger.Debug("redirect handled", zap.Stringer("outcome", outcome))
	if !nav.done {
		res.WriteHeader(http.StatusNoContent)
	}
}

// GetKey сообщает, сохранён ли ключ у текущей сессии.
func (h *Handler) GetKey(res http.ResponseWriter, req *http.Request) {
	userID, ok := auth.UserIDFromContext(req.Context())
	if !ok {
		writeJSON(res, http.StatusOK, model.KeyResponse{})
		return
	}
	key, err := h.Keys.Get(req.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to read api key", zap.String("user_id", userID), zap.Error(err))
		http.Error(res, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(res, http.StatusOK, model.KeyResponse{Set: key != "", APIKey: util.MaskKey(key)})
}

// PutKey сохраняет ключ текущей сессии.
func (h *Handler) PutKey(res http.ResponseWriter, req *http.Request) {
	var body model.KeyRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(res, "Invalid JSON", http.StatusBadRequest)
		return
	}
	body.APIKey = strings.TrimSpace(body.APIKey)
	if body.APIKey == "" {
		http.Error(res, "API key empty", http.StatusBadRequest)
		return
	}

	userID, _ := auth.UserIDFromContext(req.Context())
	if err := h.Keys.Set(req.Context(), userID, body.APIKey); err != nil {
		if errors.Is(err, storage.ErrEmptyUserID) {
			http.Error(res, "No session", http.StatusUnauthorized)
			return
		}
		h.Logger.Error("failed to save api key", zap.String("user_id", userID), zap.Error(err))
		http.Error(res, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

// DeleteKey удаляет ключ текущей сессии.
func (h *Handler) DeleteKey(res http.ResponseWriter, req *http.Request) {
	userID, ok := auth.UserIDFromContext(req.Context())
	if ok {
		if err := h.Keys.Delete(req.Context(), userID); err != nil {
			h.Logger.Error("failed to delete api key", zap.String("user_id", userID), zap.Error(err))
			http.Error(res, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
	res.WriteHeader(http.StatusNoContent)
}

// CreateLink строит ссылку <base>/?r=<url>, открытие которой создаёт трансфер.
func (h *Handler) CreateLink(res http.ResponseWriter, req *http.Request) {
	var body model.LinkRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(res, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.URL) == "" {
		http.Error(res, "URL empty", http.StatusBadRequest)
		return
	}

	writeJSON(res, http.StatusCreated, model.LinkResponse{Result: util.BuildRedirectLink(h.BaseURL, body.URL)})
}

// ListPatterns возвращает подписки текущей сессии с индексами.
func (h *Handler) ListPatterns(res http.ResponseWriter, req *http.Request) {
	resp := model.PatternsResponse{Patterns: []model.PatternItem{}}
	userID, ok := auth.UserIDFromContext(req.Context())
	if ok {
		patterns, err := h.Patterns.List(req.Context(), userID)
		if err != nil {
			h.Logger.Error("failed to list patterns", zap.String("user_id", userID), zap.Error(err))
			http.Error(res, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		for i, p := range patterns {
			resp.Patterns = append(resp.Patterns, model.PatternItem{Index: i, Pattern: p})
		}
	}
	writeJSON(res, http.StatusOK, resp)
}

// AddPattern добавляет подписку. Части подписки разделяются ';'.
func (h *Handler) AddPattern(res http.ResponseWriter, req *http.Request) {
	var body model.PatternRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(res, "Invalid JSON", http.StatusBadRequest)
		return
	}

	userID, _ := auth.UserIDFromContext(req.Context())
	if err := h.Patterns.Add(req.Context(), userID, body.Pattern); err != nil {
		switch {
		case errors.Is(err, storage.ErrEmptyPattern):
			http.Error(res, "Pattern empty", http.StatusBadRequest)
		case errors.Is(err, storage.ErrEmptyUserID):
			http.Error(res, "No session", http.StatusUnauthorized)
		default:
			h.Logger.Error("failed to add pattern", zap.String("user_id", userID), zap.Error(err))
			http.Error(res, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}
	res.WriteHeader(http.StatusCreated)
}

// DeletePattern удаляет подписку по индексу из URL.
func (h *Handler) DeletePattern(res http.ResponseWriter, req *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(req, "index"))
	if err != nil {
		http.Error(res, "Invalid index", http.StatusBadRequest)
		return
	}

	userID, _ := auth.UserIDFromContext(req.Context())
	if err := h.Patterns.RemoveAt(req.Context(), userID, index); err != nil {
		if errors.Is(err, storage.ErrPatternIndex) {
			http.Error(res, "Pattern not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("failed to remove pattern", zap.String("user_id", userID), zap.Error(err))
		http.Error(res, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

// DeletePatterns удаляет все подписки сессии.
func (h *Handler) DeletePatterns(res http.ResponseWriter, req *http.Request) {
	userID, ok := auth.UserIDFromContext(req.Context())
	if ok {
		if err := h.Patterns.RemoveAll(req.Context(), userID); err != nil {
			h.Logger.Error("failed to remove patterns", zap.String("user_id", userID), zap.Error(err))
			http.Error(res, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
	res.WriteHeader(http.StatusNoContent)
}

// Notifications отдаёт накопленные уведомления сессии и очищает их.
func (h *Handler) Notifications(res http.ResponseWriter, req *http.Request) {
	list := []model.Notification{}
	if userID, ok := auth.UserIDFromContext(req.Context()); ok {
		if drained := h.Inbox.Drain(userID); drained != nil {
			list = drained
		}
	}
	writeJSON(res, http.StatusOK, list)
}

// Ping проверяет доступность хранилищ.
func (h *Handler) Ping(res http.ResponseWriter, req *http.Request) {
	if err := h.Keys.Ping(req.Context()); err != nil {
		h.Logger.Error("key store ping failed", zap.Error(err))
		http.Error(res, "Storage unavailable", http.StatusInternalServerError)
		return
	}
	if err := h.Patterns.Ping(req.Context()); err != nil {
		h.Logger.Error("pattern store ping failed", zap.Error(err))
		http.Error(res, "Storage unavailable", http.StatusInternalServerError)
		return
	}
	res.WriteHeader(http.StatusOK)
}

func writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	_ = json.NewEncoder(res).Encode(v)
}
