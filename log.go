package main

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	useragent "github.com/mileusna/useragent"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// newLogger logs to w at the given level, in color if w is a terminal and as
// JSON otherwise.
func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), errors.Wrap(err, "invalid log level")
	}

	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	return zerolog.New(w).With().Timestamp().Logger().Level(lvl), nil
}

// accessLog puts the logger into every request's context and logs each
// request once it is done.
func accessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		h := hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
			ua := useragent.Parse(r.UserAgent())

			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Stringer("url", r.URL).
				Int("status", status).
				Int("size", size).
				Dur("duration", d).
				Str("browser", ua.Name).
				Str("os", ua.OS).
				Bool("mobile", ua.Mobile).
				Msg("Request")
		})(next)

		h = hlog.RemoteAddrHandler("ip")(h)
		h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)

		return hlog.NewHandler(logger)(h)
	}
}
