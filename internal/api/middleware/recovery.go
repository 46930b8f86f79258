package middleware

import (
	"net/http"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func Recovery(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					log.Error("panic recovered",
						"recover", rvr,
						"method", r.Method,
						"path", r.URL.Path,
						"request_id", chiMiddleware.GetReqID(r.Context()),
					)
					common.RespondWithError(w, http.StatusInternalServerError, common.KindInternal, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
