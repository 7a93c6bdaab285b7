package cache

import (
	"bytes"
	"net/http"
	"slices"
)

const headerCache = "X-Cache"

// Middleware serves GET requests from the view cache and stores
// 200 responses on a miss. Only headers written by next are cached, so
// per-request headers set by outer middleware are never replayed.
func Middleware(vc *ViewCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := r.URL.Path
			if page, ok := vc.Get(key); ok {
				for k, v := range page.Header {
					w.Header()[k] = slices.Clone(v)
				}
				w.Header().Set(headerCache, "HIT")
				w.WriteHeader(page.Status)
				_, _ = w.Write(page.Body)
				return
			}

			gen := vc.Generation()
			before := w.Header().Clone()
			w.Header().Set(headerCache, "MISS")
			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status == http.StatusOK {
				page := Page{Status: rec.status, Header: handlerHeaders(before, rec.header), Body: rec.body.Bytes()}
				vc.SetIfCurrent(key, page, gen)
			}
		})
	}
}

// handlerHeaders returns the headers present in after that differ from before.
func handlerHeaders(before, after http.Header) http.Header {
	out := make(http.Header)
	for k, v := range after {
		if k == headerCache {
			continue
		}
		if !slices.Equal(before[k], v) {
			out[k] = slices.Clone(v)
		}
	}
	return out
}

// recorder tees the response body so it can be cached.
type recorder struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	header      http.Header
	wroteHeader bool
}

func (r *recorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = status
	r.header = r.ResponseWriter.Header().Clone()
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
