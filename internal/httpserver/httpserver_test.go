package httpserver

import (
	"net/http/httptest"
	"testing"

	"github.com/giantswarm/pluginhost/internal/manager"
	"github.com/giantswarm/pluginhost/internal/validate"
	"github.com/stretchr/testify/require"
)

func TestHandleHealthReturnsOKWhenFleetEmpty(t *testing.T) {
	mgr := manager.New(manager.Config{Host: validate.HostContext{}})
	srv := New(mgr)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
}
