package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"sejoli-paypal-gateway/internal/dto"
)

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type stubIPNService struct {
	resp *dto.IPNResponse
	last *dto.IPNRequest
}

func (s *stubIPNService) Handle(ctx context.Context, req *dto.IPNRequest) *dto.IPNResponse {
	s.last = req
	return s.resp
}

func postIPN(t *testing.T, h *IPNHandler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}
	req := httptest.NewRequest(http.MethodPost, "/?paypal-ipn=1", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	if err := h.Handle(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	return rec
}

func TestIPNHandlerPassesFormFields(t *testing.T) {
	svc := &stubIPNService{resp: &dto.IPNResponse{Success: 1}}
	h := NewIPNHandler(svc)

	rec := postIPN(t, h, url.Values{
		"data": {`{"action":1,"invoice_id":"sjl142"}`},
		"hash": {"deadbeef"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(got, echo.MIMEApplicationJSON) {
		t.Fatalf("expected json response, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), `"success":1`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	if svc.last == nil || svc.last.Hash != "deadbeef" {
		t.Fatalf("service did not receive the form fields: %+v", svc.last)
	}
}

func TestIPNHandlerRejectsMissingFields(t *testing.T) {
	svc := &stubIPNService{resp: &dto.IPNResponse{Success: 1}}
	h := NewIPNHandler(svc)

	rec := postIPN(t, h, url.Values{"data": {`{}`}})

	if !strings.Contains(rec.Body.String(), `"success":0`) {
		t.Fatalf("missing hash must fail, got %s", rec.Body.String())
	}
	if svc.last != nil {
		t.Fatal("service must not be called without both fields")
	}
}
