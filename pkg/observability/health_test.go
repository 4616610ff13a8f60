package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecker_Liveness(t *testing.T) {
	checker := NewHealthChecker("1.2.3")
	checker.AddCheck("never", func(ctx context.Context) error { return errors.New("down") })

	w := httptest.NewRecorder()
	checker.Liveness(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Equal(t, "1.2.3", status.Version)
}

func TestHealthChecker_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		checkErr   error
		wantCode   int
		wantStatus string
	}{
		{name: "ready", wantCode: http.StatusOK, wantStatus: StatusHealthy},
		{name: "not ready", checkErr: errors.New("plugins not mounted"), wantCode: http.StatusServiceUnavailable, wantStatus: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewHealthChecker("dev")
			checker.AddCheck("plugins", func(ctx context.Context) error { return tt.checkErr })

			w := httptest.NewRecorder()
			checker.Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantCode, w.Code)

			var status HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.wantStatus, status.Status)
			require.Contains(t, status.Dependencies, "plugins")
			if tt.checkErr != nil {
				assert.Equal(t, tt.checkErr.Error(), status.Dependencies["plugins"].Message)
			}
		})
	}
}

func TestHealthChecker_NoChecksIsHealthy(t *testing.T) {
	status := NewHealthChecker("dev").Check(context.Background())

	assert.Equal(t, StatusHealthy, status.Status)
	assert.Empty(t, status.Dependencies)
}
