package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// SecurityLoggingMiddleware logs requests without exposing request bodies
func (s *Server) SecurityLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		s.logger.Printf(
			"request_start method=%s path=%s request_id=%s remote_addr=%s user_agent=%q engine_version=%s",
			r.Method,
			r.URL.Path,
			requestID,
			r.RemoteAddr,
			r.UserAgent(),
			EngineVersion,
		)

		next.ServeHTTP(ww, r)

		s.logger.Printf(
			"request_completed method=%s path=%s status=%d duration=%v request_id=%s bytes_written=%d engine_version=%s",
			r.Method,
			r.URL.Path,
			ww.Status(),
			time.Since(start),
			requestID,
			ww.BytesWritten(),
			EngineVersion,
		)
	})
}

// CORSMiddleware handles CORS headers for development
func (s *Server) CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
