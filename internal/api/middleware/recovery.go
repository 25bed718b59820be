package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/conquest-go/internal/api/apierr"
	"github.com/mcoot/conquest-go/internal/middleware"
)

// Recovery answers handler panics with an INTERNAL_ERROR JSON body
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
