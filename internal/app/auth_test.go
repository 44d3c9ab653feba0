package app

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestMetricsAuthMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		enabled bool
		header  string
		want    int
	}{
		{"disabled passes through", false, "", http.StatusOK},
		{"valid credentials", true, basicAuth("prometheus", "secret123"), http.StatusOK},
		{"wrong username", true, basicAuth("scraper", "secret123"), http.StatusUnauthorized},
		{"wrong password", true, basicAuth("prometheus", "nope"), http.StatusUnauthorized},
		{"no header", true, "", http.StatusUnauthorized},
		{"only scheme", true, "Basic", http.StatusUnauthorized},
		{"invalid base64", true, "Basic notbase64!!!", http.StatusUnauthorized},
		{"bearer token", true, "Bearer sometoken", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			router := gin.New()
			router.GET("/metrics", metricsAuthMiddleware(tt.enabled, "prometheus", "secret123"), func(c *gin.Context) {
				c.String(http.StatusOK, "metrics")
			})

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic realm=")
			} else {
				assert.Equal(t, "metrics", w.Body.String())
			}
		})
	}
}
