package rest

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/dtroode/academia-moderation/internal/model"
	"github.com/dtroode/academia-moderation/internal/testutil"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		kind model.ErrorKind
		want int
	}{
		{model.KindValidation, http.StatusBadRequest},
		{model.KindInvalidOperation, http.StatusBadRequest},
		{model.KindUnauthenticated, http.StatusUnauthorized},
		{model.KindForbidden, http.StatusForbidden},
		{model.KindNotFound, http.StatusNotFound},
		{model.KindConflict, http.StatusConflict},
		{model.KindUnavailable, http.StatusInternalServerError},
		{model.KindUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.kind))
		})
	}
}

func TestRespondError_HidesInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, err := range []error{
		errors.New("pq: password authentication failed"),
		model.NewErrUnavailable(errors.New("dial tcp 10.0.0.5:5432")),
	} {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)

		respondError(c, err)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"internal server error"}`, rec.Body.String())
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Recovery(testutil.MakeNoopLogger()))
	engine.GET("/panic", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken(""))
}
