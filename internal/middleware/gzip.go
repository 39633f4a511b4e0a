package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"
)

// gzipResponseWriter сжимает тело ответа. Content-Encoding и gzip.Writer появляются
// только при первой записи тела, поэтому ответы без тела уходят как есть.
type gzipResponseWriter struct {
	http.ResponseWriter
	gz          *gzip.Writer
	status      int
	wroteHeader bool
}

func (g *gzipResponseWriter) WriteHeader(code int) {
	if g.wroteHeader {
		return
	}
	g.status = code
	if !bodyAllowed(code) {
		g.wroteHeader = true
		g.ResponseWriter.WriteHeader(code)
	}
	// Для остальных кодов заголовок уходит при первой записи тела
}

func (g *gzipResponseWriter) Write(b []byte) (int, error) {
	if g.wroteHeader && g.gz == nil {
		// Тело без сжатия: заголовки уже отправлены
		return g.ResponseWriter.Write(b)
	}
	if g.gz == nil {
		if g.status == 0 {
			g.status = http.StatusOK
		}
		g.Header().Set("Content-Encoding", "gzip")
		g.Header().Del("Content-Length")
		g.wroteHeader = true
		g.ResponseWriter.WriteHeader(g.status)
		g.gz = gzip.NewWriter(g.ResponseWriter)
	}
	return g.gz.Write(b)
}

func bodyAllowed(code int) bool {
	return code != http.StatusNoContent && code != http.StatusNotModified && (code < 300 || code >= 400)
}

// Close отправляет отложенный заголовок ответа без тела и закрывает gzip.Writer.
func (g *gzipResponseWriter) Close() error {
	if g.gz == nil {
		if !g.wroteHeader && g.status != 0 {
			g.wroteHeader = true
			g.ResponseWriter.WriteHeader(g.status)
		}
		return nil
	}
	return g.gz.Close()
}

// GzipMiddleware добавляет поддержку gzip для входящих и исходящих данных
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Распаковываем входящие gzip-запросы
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			reader, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, "Unable to decompress request", http.StatusBadRequest)
				return
			}
			defer reader.Close()
			r.Body = reader
			r.Header.Del("Content-Encoding")
		}

		// Проверяем, поддерживает ли клиент gzip-ответ
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Add("Vary", "Accept-Encoding")
		gzRespWriter := &gzipResponseWriter{ResponseWriter: w}
		defer gzRespWriter.Close()
		next.ServeHTTP(gzRespWriter, r)
	})
}
