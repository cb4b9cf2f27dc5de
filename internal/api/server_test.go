package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/imcap/internal/caption"
)

type stubService struct {
	captions  []caption.Caption
	err       error
	lastImage []byte
	lastOpts  caption.Options
}

func (s *stubService) Caption(ctx context.Context, image []byte, opts caption.Options) ([]caption.Caption, error) {
	s.lastImage = image
	s.lastOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.captions, nil
}

func newTestEcho(service CaptionService) *echo.Echo {
	server := NewServer(NewCaptionStore(), service)
	e := echo.New()
	server.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doRaw(t *testing.T, e *echo.Echo, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// imageJSON is "img" base64-encoded, enough to pass the required-image check.
const imageJSON = `"aW1n"`

func TestCreateGetDeleteCaptionLifecycle(t *testing.T) {
	t.Parallel()

	service := &stubService{captions: []caption.Caption{
		{Sentence: "a dog riding a wave", Logprob: -1.2, Confidence: 0.301},
	}}
	e := newTestEcho(service)

	createRec := doJSON(t, e, http.MethodPost, "/v1/captions", `{"image":`+imageJSON+`,"beam_width":2}`)
	if createRec.Code != http.StatusOK {
		t.Fatalf("create status: got %d body=%s", createRec.Code, createRec.Body.String())
	}
	if service.lastOpts.BeamWidth != 2 {
		t.Fatalf("beam width not forwarded: %+v", service.lastOpts)
	}

	var created CaptionResponse
	if err := json.Unmarshal(createRec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" || created.Object != "caption" {
		t.Fatalf("unexpected response envelope: %+v", created)
	}
	if len(created.Captions) != 1 || created.Captions[0].Sentence != "a dog riding a wave" {
		t.Fatalf("unexpected captions: %+v", created.Captions)
	}

	getRec := doJSON(t, e, http.MethodGet, "/v1/captions/"+created.ID, "")
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: got %d body=%s", getRec.Code, getRec.Body.String())
	}

	delRec := doJSON(t, e, http.MethodDelete, "/v1/captions/"+created.ID, "")
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status: got %d body=%s", delRec.Code, delRec.Body.String())
	}
	if !strings.Contains(delRec.Body.String(), `"deleted":true`) {
		t.Fatalf("delete response missing deleted=true: %s", delRec.Body.String())
	}

	getDeletedRec := doJSON(t, e, http.MethodGet, "/v1/captions/"+created.ID, "")
	if getDeletedRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", getDeletedRec.Code)
	}
}

func TestCreateValidationErrors(t *testing.T) {
	t.Parallel()

	e := newTestEcho(&stubService{})

	rec := doJSON(t, e, http.MethodPost, "/v1/captions", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing image: expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "image is required") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/captions", `{"image":`+imageJSON+`,"limit":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative limit: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/captions", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: expected 400, got %d", rec.Code)
	}
}

// TestCreateCaptionRawBody posts the image bytes directly instead of the
// JSON envelope; the whole body must reach the service untouched.
func TestCreateCaptionRawBody(t *testing.T) {
	t.Parallel()

	service := &stubService{captions: []caption.Caption{{Sentence: "x"}}}
	e := newTestEcho(service)

	rec := doRaw(t, e, "/v1/captions", "image/jpeg", "\xff\xd8raw jpeg bytes")
	if rec.Code != http.StatusOK {
		t.Fatalf("raw create: got %d body=%s", rec.Code, rec.Body.String())
	}
	if string(service.lastImage) != "\xff\xd8raw jpeg bytes" {
		t.Fatalf("image bytes mangled: %q", service.lastImage)
	}
}

// TestCreateCaptionQueryParams verifies that decode parameters pass via the
// query string on a raw-body request and that they win over body fields on
// a JSON one.
func TestCreateCaptionQueryParams(t *testing.T) {
	t.Parallel()

	service := &stubService{captions: []caption.Caption{{Sentence: "x"}}}
	e := newTestEcho(service)

	rec := doRaw(t, e, "/v1/captions?beam_width=4&max_steps=7&length_normalization=0.5&limit=2", "image/png", "img")
	if rec.Code != http.StatusOK {
		t.Fatalf("raw create: got %d body=%s", rec.Code, rec.Body.String())
	}
	want := caption.Options{BeamWidth: 4, MaxSteps: 7, LengthNormalization: 0.5, Limit: 2}
	if service.lastOpts != want {
		t.Fatalf("options not forwarded: got %+v, want %+v", service.lastOpts, want)
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/captions?beam_width=5", `{"image":`+imageJSON+`,"beam_width":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("json create: got %d body=%s", rec.Code, rec.Body.String())
	}
	if service.lastOpts.BeamWidth != 5 {
		t.Fatalf("query param should win over body: %+v", service.lastOpts)
	}

	rec = doRaw(t, e, "/v1/captions?beam_width=wide", "image/png", "img")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad beam_width: expected 400, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	e := newTestEcho(&stubService{})
	rec := doJSON(t, e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status: got %d", rec.Code)
	}
}

func TestRateLimitExceeded(t *testing.T) {
	t.Parallel()

	service := &stubService{captions: []caption.Caption{{Sentence: "x"}}}
	server := NewServer(NewCaptionStore(), service)
	server.SetRateLimit(0, 1)
	e := echo.New()
	server.Register(e)

	first := doJSON(t, e, http.MethodPost, "/v1/captions", `{"image":`+imageJSON+`}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first request: got %d body=%s", first.Code, first.Body.String())
	}
	second := doJSON(t, e, http.MethodPost, "/v1/captions", `{"image":`+imageJSON+`}`)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", second.Code)
	}
}
