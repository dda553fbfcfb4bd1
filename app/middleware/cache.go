package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"yatube/app/auth"
	"yatube/app/cache"
)

// CacheHeader reports whether a response came from the cache.
const CacheHeader = "X-Cache"

// CacheKey is the full request URL plus the viewing user, so pages rendered
// for one identity are never served to another.
func CacheKey(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	key := scheme + "://" + r.Host + r.URL.RequestURI()
	if user := auth.CurrentUser(r.Context()); user != nil {
		key += "#user=" + user.Username
	}
	return key
}

// CacheResponse serves GET requests from c and stores successful responses
// for ttl. It must run after the session middleware. Writes the cache drops
// are logged and the page is simply rendered again on the next request.
func CacheResponse(c cache.Cache, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := CacheKey(r)
			if entry, ok := c.Get(key); ok {
				for k, vs := range entry.Header {
					w.Header()[k] = append([]string(nil), vs...)
				}
				w.Header().Set(CacheHeader, "HIT")
				w.WriteHeader(entry.Status)
				w.Write(entry.Body)
				return
			}

			rec := &recorder{header: http.Header{}, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status == http.StatusOK && rec.header.Get("Set-Cookie") == "" {
				stored := c.Set(key, &cache.Entry{
					Status: rec.status,
					Header: rec.header.Clone(),
					Body:   bytes.Clone(rec.body.Bytes()),
				}, ttl)
				if !stored {
					logger.Warn("response not cached", slog.String("key", key))
				}
			}

			for k, vs := range rec.header {
				w.Header()[k] = vs
			}
			w.Header().Set(CacheHeader, "MISS")
			w.WriteHeader(rec.status)
			w.Write(rec.body.Bytes())
		})
	}
}

// recorder buffers a response so it can be stored before it is sent.
type recorder struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status = status
	r.wroteHeader = true
}

func (r *recorder) Write(p []byte) (int, error) {
	r.wroteHeader = true
	return r.body.Write(p)
}
