package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordModeration(t *testing.T) {
	before := testutil.ToFloat64(ModerationActionsTotal.WithLabelValues("approve", "conflict"))

	RecordModeration("approve", "conflict")
	RecordModeration("approve", "conflict")

	after := testutil.ToFloat64(ModerationActionsTotal.WithLabelValues("approve", "conflict"))
	assert.Equal(t, before+2, after)
}

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("http", "GET /api/admin/statistics", "200"))

	RecordRequest("http", "GET /api/admin/statistics", "200", 12*time.Millisecond)

	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("http", "GET /api/admin/statistics", "200"))
	assert.Equal(t, before+1, after)
}

func TestHandler(t *testing.T) {
	RecordModeration("demote", "ok")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `moderation_actions_total{action="demote",result="ok"}`)
}
