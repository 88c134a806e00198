// Package chiext has chi middleware.
package chiext

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger logs every request to slog, server errors at error level.
func Logger() func(next http.Handler) http.Handler {
	return middleware.RequestLogger(&SlogFormatter{})
}

type SlogFormatter struct{}

func (l *SlogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	attrs := []any{slog.String("package", "http")}

	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		attrs = append(attrs, slog.String("request", reqID))
	}
	attrs = append(attrs, slog.String("from", r.RemoteAddr))

	return &slogEntry{
		attrs: attrs,
		msg:   fmt.Sprintf("%s %s %s", r.Method, r.RequestURI, r.Proto),
	}
}

type slogEntry struct {
	attrs []any
	msg   string
}

func (l *slogEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	attrs := append(l.attrs,
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.Duration("elapsed", elapsed),
	)

	if status >= 500 {
		slog.Error(l.msg, attrs...)
		return
	}
	slog.Debug(l.msg, attrs...)
}

func (l *slogEntry) Panic(v interface{}, stack []byte) {
	slog.Error("Request panicked", append(l.attrs, slog.Any("panic", v), slog.String("stack", string(stack)))...)
}
