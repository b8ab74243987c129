// internal/middleware/logging.go

package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware wraps the room mux and emits one structured line per
// request: method, path, caller, and how long the handler took. The
// path is captured up front because websocket upgrades may outlive the
// request object.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path
			method := r.Method

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   method,
				"path":     path,
				"remote":   r.RemoteAddr,
				"duration": time.Since(start),
			}).Info("request served")
		})
	}
}

// LogWebSocketConnect marks a room socket opening. Long-lived sockets
// bypass the per-request line above once upgraded, so the socket
// lifecycle gets its own pair of entries.
func LogWebSocketConnect(logger *logrus.Logger, remoteAddr, path string) {
	logger.WithFields(logrus.Fields{
		"remote": remoteAddr,
		"path":   path,
	}).Info("room socket opened")
}

// LogWebSocketDisconnect marks the socket closing, with the read error
// when the close was not clean.
func LogWebSocketDisconnect(logger *logrus.Logger, remoteAddr, path string, err error) {
	fields := logrus.Fields{
		"remote": remoteAddr,
		"path":   path,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("room socket closed")
}
