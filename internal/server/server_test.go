package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/playbill/internal/config"
	"github.com/agenthands/playbill/internal/core"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store/memstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, metricsCfg config.MetricsConfig) (*gin.Engine, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	s := NewServer(core.NewPlaybill(memstore.New(), logger), logger, metricsCfg)
	return s.SetupRouter(), &logs
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type errorBody struct {
	Error struct {
		Kind         string   `json:"kind"`
		Message      string   `json:"message"`
		Associations []string `json:"associations"`
		Fields       []struct {
			Kind  string `json:"kind"`
			Field string `json:"field"`
		} `json:"fields"`
	} `json:"error"`
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, config.MetricsConfig{})
	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMaterialLifecycle(t *testing.T) {
	r, logs := newTestRouter(t, config.MetricsConfig{})

	w := do(t, r, http.MethodPost, "/api/materials", model.Material{
		Name:   "Hamlet",
		Format: "play",
		Year:   1600,
		WritingCredits: []model.WritingCredit{{
			Entities: []model.WritingEntity{{Model: model.KindPerson, Name: "William Shakespeare"}},
		}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Material](t, w)
	require.NotEmpty(t, created.UUID)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(t, r, http.MethodGet, "/api/materials/"+created.UUID+"/edit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	edit := decode[model.Material](t, w)
	assert.Equal(t, "Hamlet", edit.Name)
	require.Len(t, edit.WritingCredits, 1)
	assert.Equal(t, "William Shakespeare", edit.WritingCredits[0].Entities[0].Name)

	w = do(t, r, http.MethodGet, "/api/materials/"+created.UUID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	show := decode[model.MaterialShow](t, w)
	assert.Equal(t, "Hamlet", show.Name)

	w = do(t, r, http.MethodGet, "/api/materials", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]model.EntitySummary](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, created.UUID, list[0].UUID)

	edit.Subtitle = "Prince of Denmark"
	w = do(t, r, http.MethodPut, "/api/materials/"+created.UUID, edit)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Prince of Denmark", decode[model.Material](t, w).Subtitle)

	// The writing credit still links the material to a person.
	w = do(t, r, http.MethodDelete, "/api/materials/"+created.UUID, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	refused := decode[errorBody](t, w)
	assert.Equal(t, "undeletable_entity", refused.Error.Kind)
	assert.Equal(t, []string{"PERSON"}, refused.Error.Associations)

	edit.WritingCredits = nil
	w = do(t, r, http.MethodPut, "/api/materials/"+created.UUID, edit)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodDelete, "/api/materials/"+created.UUID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/api/materials/"+created.UUID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[errorBody](t, w).Error.Kind)

	assert.Contains(t, logs.String(), "route=/api/materials/:uuid")
}

func TestInvalidBody(t *testing.T) {
	r, _ := newTestRouter(t, config.MetricsConfig{})
	w := do(t, r, http.MethodPost, "/api/venues", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", decode[errorBody](t, w).Error.Kind)
}

func TestValidationErrorsAreFieldScoped(t *testing.T) {
	r, _ := newTestRouter(t, config.MetricsConfig{})
	w := do(t, r, http.MethodPost, "/api/venues", model.Venue{
		Name:      "National Theatre",
		SubVenues: []model.Ref{{Name: "Olivier Theatre"}, {Name: "Olivier Theatre"}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "validation", body.Error.Kind)
	require.NotEmpty(t, body.Error.Fields)
	assert.Equal(t, "subVenues[0].name", body.Error.Fields[0].Field)

	w = do(t, r, http.MethodGet, "/api/venues", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestEntityRoutesUseTheirKind(t *testing.T) {
	r, _ := newTestRouter(t, config.MetricsConfig{})

	w := do(t, r, http.MethodPost, "/api/people", model.Entity{Name: "Judi Dench"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	person := decode[model.Entity](t, w)

	w = do(t, r, http.MethodGet, "/api/people/"+person.UUID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/companies/"+person.UUID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/characters/"+person.UUID+"/edit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/people/"+person.UUID+"/awards", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAwardsRoute(t *testing.T) {
	r, _ := newTestRouter(t, config.MetricsConfig{})

	w := do(t, r, http.MethodPost, "/api/materials", model.Material{Name: "Hamlet", Format: "play"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	hamlet := decode[model.Material](t, w)

	w = do(t, r, http.MethodPost, "/api/award-ceremonies", model.AwardCeremony{
		Name:  "2024",
		Award: model.Ref{Name: "Bard Prize"},
		Categories: []model.CategoryInput{{
			Name: "Best Play",
			Nominations: []model.NominationInput{{
				IsWinner:  true,
				Materials: []model.Ref{{Name: "Hamlet"}},
			}},
		}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/materials/"+hamlet.UUID+"/awards", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	awards := decode[[]model.Award](t, w)
	require.Len(t, awards, 1)
	assert.Equal(t, "Bard Prize", awards[0].Name)

	w = do(t, r, http.MethodDelete, "/api/materials/"+hamlet.UUID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "undeletable_entity", decode[errorBody](t, w).Error.Kind)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, config.MetricsConfig{Enabled: true, Path: "/metrics"})
	do(t, r, http.MethodGet, "/health", nil)

	w := do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "playbill_http_requests_total")

	r, _ = newTestRouter(t, config.MetricsConfig{})
	w = do(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
