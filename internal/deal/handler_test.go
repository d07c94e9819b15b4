// AngelaMos | 2026
// handler_test.go

package deal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/perkhub/internal/core"
)

func newTestRouter(svc *Service) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandlerList(t *testing.T) {
	svc, _ := newSeededService(t, 5)
	h := newTestRouter(svc)

	rec := get(h, "/deals?limit=2&skip=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Deals, 2)
	assert.Equal(t, Pagination{Total: 5, Limit: 2, Skip: 1, HasMore: true}, resp.Pagination)
}

func TestHandlerListInvalidAccessLevel(t *testing.T) {
	svc, _ := newSeededService(t, 1)
	h := newTestRouter(svc)

	rec := get(h, "/deals?accessLevel=gold")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp core.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, CodeInvalidAccessLevel, resp.Error.Code)
}

func TestHandlerGet(t *testing.T) {
	svc, _ := newSeededService(t, 2)
	h := newTestRouter(svc)

	rec := get(h, "/deals/deal-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Deal DealResponse `json:"deal"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "deal-1", resp.Deal.Slug)

	rec = get(h, "/deals/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var errResp core.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, CodeDealNotFound, errResp.Error.Code)
}
