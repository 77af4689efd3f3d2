package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderRequestAt = "X-Request-At"

	headerReplayed = "Idempotent-Replayed"
)

// teeWriter copies the response body while it is written.
type teeWriter struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// Idempotency makes mutating requests safe to resend. The key is method +
// route + actor + X-Request-Id; a resend with the same body replays the
// stored response, a concurrent duplicate gets 409. Server errors are not
// stored so the same request id can be tried again.
//
// Must run after Auth.
func Idempotency(rdb *redis.Client, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	store := replayStore{rdb: rdb, ttl: ttl}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID := strings.ToLower(strings.TrimSpace(req.Header.Get(HeaderRequestID)))
			if reqID == "" {
				return fail(c, http.StatusBadRequest, "missing "+HeaderRequestID)
			}
			if !validReqID(reqID) {
				return fail(c, http.StatusBadRequest, "invalid "+HeaderRequestID+" format")
			}
			at, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return fail(c, http.StatusBadRequest, err.Error())
			}
			now := time.Now().UTC()
			if !withinSkew(at, now) {
				return fail(c, http.StatusBadRequest, HeaderRequestAt+" too skewed")
			}
			who, ok := ActorFrom(c)
			if !ok {
				return fail(c, http.StatusUnauthorized, "not authenticated")
			}

			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					return fail(c, http.StatusBadRequest, "unreadable body")
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			sum := digest(body)

			key := replayKey(req.Method, c.Path(), who.UserID, reqID)
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			claimed, err := store.claim(ctx, key, sum, now)
			if err != nil {
				log.Error("idempotency store unavailable", zap.String("key", key), zap.Error(err))
				return fail(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !claimed {
				prev, err := store.load(ctx, key)
				if err != nil {
					log.Warn("load stored response", zap.String("key", key), zap.Error(err))
				}
				if prev.Digest != "" && prev.Digest != sum {
					return fail(c, http.StatusConflict, HeaderRequestID+" reused with different body")
				}
				if !prev.replayable() {
					return fail(c, http.StatusConflict, "request is already in progress")
				}
				ct := prev.ContentType
				if ct == "" {
					ct = echo.MIMEApplicationJSONCharsetUTF8
				}
				c.Response().Header().Set(headerReplayed, "true")
				return c.Blob(prev.Status, ct, prev.Body)
			}

			tee := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = tee
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be gone once the handler returns
			bg := context.Background()
			if tee.status >= http.StatusInternalServerError {
				if err := store.release(bg, key); err != nil {
					log.Warn("release idempotency key", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			err = store.complete(bg, key, storedResponse{
				Status:      tee.status,
				ContentType: tee.Header().Get(echo.HeaderContentType),
				Body:        tee.body.Bytes(),
				Digest:      sum,
				StoredAt:    time.Now().UTC(),
			})
			if err != nil {
				log.Warn("store response", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}
