package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"app error", New(KindEmailTaken, "taken"), KindEmailTaken},
		{"wrapped app error", fmt.Errorf("signup: %w", New(KindWeakPassword, "short")), KindWeakPassword},
		{"record not found", gorm.ErrRecordNotFound, KindNotFound},
		{"duplicated key", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), KindConflict},
		{"foreign key", gorm.ErrForeignKeyViolated, KindInvalidInput},
		{"plain", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := gorm.ErrRecordNotFound
	err := Wrap(cause, KindNotFound, "Profile not found")

	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.True(t, Is(err, KindNotFound))
	assert.Contains(t, err.Error(), "Profile not found")
	assert.Nil(t, Wrap(nil, KindInternal, "x"))
}

func TestHTTPStatusRoundTrip(t *testing.T) {
	for _, kind := range []Kind{KindInvalidInput, KindUnauthorized, KindForbidden, KindNotFound, KindConflict, KindRateLimited, KindUnavailable, KindInternal} {
		assert.Equal(t, kind, KindFromStatus(HTTPStatus(kind)), string(kind))
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Incorrect email or password.", UserMessage(KindInvalidCredentials))
	assert.Equal(t, UserMessage(KindInternal), UserMessage(Kind("unknown")))
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"app error", New(KindForbidden, "Only admins can respond"), http.StatusForbidden, "forbidden", "Only admins can respond"},
		{"not found sentinel", gorm.ErrRecordNotFound, http.StatusNotFound, "not_found", UserMessage(KindNotFound)},
		{"internal hides cause", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal", internalMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/test", func(c *gin.Context) { Respond(c, tt.err) })

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/test", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]string
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, tt.wantMessage, body["error"])
		})
	}
}
