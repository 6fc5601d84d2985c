package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"powerd/internal/service"
	"powerd/pkg/types"
)

type mockService struct {
	models     []types.Model
	status     types.StatusResponse
	ready      bool
	predictErr error
	reloadErr  error
	resp       types.PredictResponse
}

func (m *mockService) ListModels() []types.Model  { return append([]types.Model(nil), m.models...) }
func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                { return m.ready }
func (m *mockService) Reload(ctx context.Context, id string) error { return m.reloadErr }
func (m *mockService) Predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error) {
	if m.predictErr != nil {
		return types.PredictResponse{}, m.predictErr
	}
	return m.resp, nil
}

func postPredict(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

const sampleBody = `{"model":"xgb","fields":{"Voltage":"240.0"},"timestamp":"2008-12-16T17:25:00"}`

func TestPredictHandler(t *testing.T) {
	svc := &mockService{resp: types.PredictResponse{Model: "xgb", Prediction: 4.2, Units: "kW"}}
	r := NewMux(svc)
	w := postPredict(t, r, sampleBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp types.PredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Prediction != 4.2 || resp.Model != "xgb" || resp.Units != "kW" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestPredictRequiresJSONContentType(t *testing.T) {
	r := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(sampleBody))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestPredictRejectsInvalidJSON(t *testing.T) {
	r := NewMux(&mockService{})
	w := postPredict(t, r, "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	var er types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != http.StatusBadRequest {
		t.Fatalf("error body: %+v", er)
	}
}

func TestPredictErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrBadInput(errors.New("missing field: Voltage")), http.StatusBadRequest},
		{service.ErrNotFound(errors.New("unknown model: nope")), http.StatusNotFound},
		{service.ErrUnavailable(errors.New("artifact unavailable for xgb: connection refused")), http.StatusServiceUnavailable},
		{service.ErrInternal(errors.New("schema violation: length mismatch")), http.StatusInternalServerError},
		{errors.New("plain failure"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		r := NewMux(&mockService{predictErr: c.err})
		w := postPredict(t, r, sampleBody)
		if w.Code != c.want {
			t.Fatalf("err %v: status=%d want %d", c.err, w.Code, c.want)
		}
	}
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func TestPredictHTTPErrorPassthrough(t *testing.T) {
	r := NewMux(&mockService{predictErr: mockHTTPError{msg: "teapot", code: http.StatusTeapot}})
	w := postPredict(t, r, sampleBody)
	if w.Code != http.StatusTeapot {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestModelsHandler(t *testing.T) {
	svc := &mockService{models: []types.Model{{ID: "xgb"}, {ID: "rf"}}}
	r := NewMux(svc)
	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body types.ModelsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Models) != 2 {
		t.Fatalf("models len=%d", len(body.Models))
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{CacheDir: "/tmp/artifacts"}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.CacheDir != "/tmp/artifacts" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestReloadHandler(t *testing.T) {
	r := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/models/xgb/reload", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "xgb") {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func TestReloadHandlerUnknownModel(t *testing.T) {
	r := NewMux(&mockService{reloadErr: service.ErrNotFound(errors.New("unknown model: nope"))})
	req := httptest.NewRequest(http.MethodPost, "/models/nope/reload", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	r := NewMux(&mockService{ready: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	r := NewMux(&mockService{ready: false})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)

	r := NewMux(&mockService{models: []types.Model{{ID: "xgb"}}})
	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options=%q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatal("expected Access-Control-Allow-Origin to be set")
	}
}

// blockingService blocks Predict until the request context is done.
type blockingService struct {
	mockService
}

func (b *blockingService) Predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error) {
	<-ctx.Done()
	return types.PredictResponse{}, ctx.Err()
}

func TestPredictShutdownReturns503(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	SetBaseContext(ctx)
	defer SetBaseContext(nil)

	r := NewMux(&blockingService{})
	w := postPredict(t, r, sampleBody)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d want 503", w.Code)
	}
	var er types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != http.StatusServiceUnavailable {
		t.Fatalf("error body: %+v", er)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}
