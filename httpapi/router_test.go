package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigamon-dev/SubspaceServer-sub008/httpapi"
	"github.com/gigamon-dev/SubspaceServer-sub008/module"
)

type fakeManager struct {
	modules []module.Info
}

func (f *fakeManager) ListModules() []module.Info { return f.modules }

func (f *fakeManager) GetModuleInfo(identity string) (module.Info, bool) {
	for _, m := range f.modules {
		if m.Identity == identity {
			return m, true
		}
	}
	return module.Info{}, false
}

func TestListModules(t *testing.T) {
	mgr := &fakeManager{modules: []module.Info{
		{Identity: "chat.Module", State: module.StatePostLoaded, AttachedArenas: []string{"arena-1"}},
	}}
	router := httpapi.NewRouter(mgr, nil)

	req := httptest.NewRequest(http.MethodGet, "/modules", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []module.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)
	assert.Equal(t, "chat.Module", got[0].Identity)
}

func TestGetModuleNotFound(t *testing.T) {
	router := httpapi.NewRouter(&fakeManager{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/modules/missing.Module", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestArenaModulesFiltersByAttachment(t *testing.T) {
	mgr := &fakeManager{modules: []module.Info{
		{Identity: "chat.Module", AttachedArenas: []string{"arena-1"}},
		{Identity: "clientsettings.Module", AttachedArenas: []string{"arena-2"}},
	}}
	router := httpapi.NewRouter(mgr, nil)

	req := httptest.NewRequest(http.MethodGet, "/arenas/arena-1/modules", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var got []module.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "chat.Module", got[0].Identity)
}

func TestMetricsWithoutCollectorReturnsEmptyObject(t *testing.T) {
	router := httpapi.NewRouter(&fakeManager{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}
