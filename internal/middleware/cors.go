package middleware

import (
	"net/http"
	"strings"

	"github.com/2beens/kadjot/internal/auth"

	log "github.com/sirupsen/logrus"
)

var allowedHeaders = strings.Join([]string{
	"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization",
	auth.TokenHeader, auth.GuestHeader, TimezoneHeader,
}, ", ")

// TimezoneHeader carries the viewer's IANA timezone name.
const TimezoneHeader = "X-Timezone"

func Cors(origins []string) func(next http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowedOrigins[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			userAgent := r.Header.Get("User-Agent")

			switch {
			case
				allowedOrigins[origin],
				strings.HasPrefix(userAgent, "curl/"),
				strings.HasPrefix(userAgent, "test-agent"),
				// health checks from load balancers and uptime monitors carry no origin
				origin == "" && r.URL.Path == "/api/health":
				{
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
					w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
				}
			default:
				log.Warnf("CORS: origin not allowed for path [%s] and origin [%s]", r.URL.Path, origin)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
