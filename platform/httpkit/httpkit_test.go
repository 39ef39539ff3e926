package httpkit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"filmdecks_backend/platform/apperr"
	"filmdecks_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type jwtConfig string

func (s jwtConfig) GetJWTAccessSecret() string { return string(s) }

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestHandleErrorTypedAndUntyped(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"not found", apperr.NotFound("lead not found"), http.StatusNotFound, "lead not found"},
		{"validation", apperr.Validation("Validation failed", apperr.FieldViolation{Field: "logline"}), http.StatusBadRequest, "Validation failed"},
		{"internal hides message", apperr.Wrap(apperr.KindInternal, "db exploded", errors.New("conn reset")), http.StatusInternalServerError, "Internal server error"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			if !HandleError(c, tc.err) {
				t.Fatalf("expected error to be handled")
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			body := decodeError(t, rec)
			if body.Success || body.Error != tc.wantError {
				t.Fatalf("unexpected body %#v", body)
			}
		})
	}
}

func TestHandleErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	if HandleError(c, nil) {
		t.Fatalf("nil error must not be handled")
	}
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func adminRouter(secret string) *gin.Engine {
	r := gin.New()
	r.GET("/admin", AuthRequired(jwtConfig(secret)), RequireRole("admin"), func(c *gin.Context) {
		c.String(http.StatusOK, GetIdentity(c).UserID().String())
	})
	return r
}

func TestAuthRequiredAndRole(t *testing.T) {
	const secret = "test-secret"
	userID := uuid.New()
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", jwt.MapClaims{"sub": userID.String(), "type": "access", "roles": []string{"admin"}, "exp": exp}), http.StatusUnauthorized},
		{"refresh token", "Bearer " + signToken(t, secret, jwt.MapClaims{"sub": userID.String(), "type": "refresh", "roles": []string{"admin"}, "exp": exp}), http.StatusUnauthorized},
		{"not admin", "Bearer " + signToken(t, secret, jwt.MapClaims{"sub": userID.String(), "type": "access", "roles": []string{"viewer"}, "exp": exp}), http.StatusForbidden},
		{"admin", "Bearer " + signToken(t, secret, jwt.MapClaims{"sub": userID.String(), "type": "access", "roles": []string{"admin"}, "exp": exp}), http.StatusOK},
	}

	r := adminRouter(secret)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, rec.Code, rec.Body.String())
			}
			if tc.want == http.StatusOK && rec.Body.String() != userID.String() {
				t.Fatalf("expected identity %s, got %s", userID, rec.Body.String())
			}
		})
	}
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0.001), 2, logger.New("development"))
	r := gin.New()
	r.POST("/submit", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}

func TestRequestIDEchoesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(logger.RequestIDKey).(string)
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Body.String() != "req-123" || rec.Header().Get(HeaderRequestID) != "req-123" {
		t.Fatalf("request id not propagated: body=%q header=%q", rec.Body.String(), rec.Header().Get(HeaderRequestID))
	}
}
