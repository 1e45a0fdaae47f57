package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"
)

// Сжимаются только текстовые типы ответов. Бинарные выдачи
// (файлы заказов с выставленным Content-Length) проходят без перекодирования.
var compressibleTypes = map[string]bool{
	"application/json": true,
	"text/html":        true,
	"text/plain":       true,
}

type gzipWriter struct {
	http.ResponseWriter
	gw          *gzip.Writer
	wroteHeader bool
}

func (w *gzipWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.wroteHeader = true

		ct := w.Header().Get("Content-Type")
		if i := strings.Index(ct, ";"); i >= 0 {
			ct = ct[:i]
		}
		if compressibleTypes[strings.TrimSpace(ct)] {
			// Длина сжатого тела неизвестна заранее
			w.Header().Del("Content-Length")
			w.Header().Set("Content-Encoding", "gzip")
			w.gw = gzip.NewWriter(w.ResponseWriter)
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(b))
		}
		w.WriteHeader(http.StatusOK)
	}
	if w.gw != nil {
		return w.gw.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

func (w *gzipWriter) close() error {
	if w.gw != nil {
		return w.gw.Close()
	}
	return nil
}

// GzipMiddleware распаковывает сжатые тела запросов и сжимает ответы,
// если клиент поддерживает gzip. Решение о сжатии принимается по
// Content-Type ответа в момент записи заголовков.
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			gr, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			defer gr.Close()
			r.Body = gr
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gzw := &gzipWriter{ResponseWriter: w}
		defer gzw.close()

		next.ServeHTTP(gzw, r)
	})
}
