package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"irokart-be/internal/logger"
	"irokart-be/internal/transport"

	"go.uber.org/zap"
)

func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.FromCtx(r.Context()).Error("panic recovered",
				zap.Any("panic", rec),
				zap.String("path", r.URL.Path),
				zap.ByteString("stack", debug.Stack()),
			)
			transport.WriteError(w, r, fmt.Errorf("panic: %v", rec))
		}()

		next.ServeHTTP(w, r)
	})
}

// Chain wraps h so that mws[0] is the outermost handler.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
