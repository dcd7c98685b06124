package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/avelora/qr-loyalty/internal/award"
	"github.com/avelora/qr-loyalty/internal/config"
	"github.com/avelora/qr-loyalty/internal/i18n"
	"github.com/avelora/qr-loyalty/internal/model"
	"github.com/avelora/qr-loyalty/internal/queue"
)

type fakeProcessor struct {
	result    award.Result
	err       error
	gotBID    uint64
	gotToken  string
	callCount int
}

func (f *fakeProcessor) Process(_ context.Context, businessID uint64, customerToken string) (award.Result, error) {
	f.callCount++
	f.gotBID = businessID
	f.gotToken = customerToken
	if f.err != nil {
		return award.Result{}, f.err
	}
	return f.result, nil
}

func newScanContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/business/scan", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("business_id", uint64(7))
	c.Set("role", RoleBusiness)
	return c, rec
}

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.New("en")
	if err != nil {
		t.Fatalf("i18n.New: %v", err)
	}
	return tr
}

func TestScanAwardsPoints(t *testing.T) {
	proc := &fakeProcessor{result: award.Result{
		Customer:      model.Customer{ID: 3, Token: "cust_abc", Name: "Ada"},
		Business:      model.Business{ID: 7, Name: "Cafe"},
		MembershipID:  11,
		PointsAwarded: 2,
		Total:         4,
	}}
	h := &ScanHandler{Cfg: config.Config{}, Processor: proc, Tr: newTestTranslator(t)}

	c, rec := newScanContext(t, `{"code":"cust_abc"}`)
	if err := h.Scan(c); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if proc.gotBID != 7 || proc.gotToken != "cust_abc" {
		t.Fatalf("processor called with (%d, %q)", proc.gotBID, proc.gotToken)
	}

	var resp scanResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.PointsAwarded != 2 || resp.Total != 4 || resp.RewardWon || resp.NewMember {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Customer.Name != "Ada" {
		t.Fatalf("customer name = %q", resp.Customer.Name)
	}
}

func TestScanAcceptsFullURL(t *testing.T) {
	proc := &fakeProcessor{result: award.Result{
		Customer: model.Customer{Token: "cust_abc"},
		Business: model.Business{ID: 7},
		Total:    1, PointsAwarded: 1,
	}}
	h := &ScanHandler{Cfg: config.Config{}, Processor: proc, Tr: newTestTranslator(t)}

	c, rec := newScanContext(t, `{"code":"https://cards.example.com/c?token=cust_abc&join=7"}`)
	if err := h.Scan(c); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if proc.gotToken != "cust_abc" {
		t.Fatalf("token extracted from URL = %q", proc.gotToken)
	}
}

func TestScanRejectsBusinessCode(t *testing.T) {
	proc := &fakeProcessor{}
	h := &ScanHandler{Cfg: config.Config{}, Processor: proc, Tr: newTestTranslator(t)}

	c, rec := newScanContext(t, `{"code":"biz_abc"}`)
	if err := h.Scan(c); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if proc.callCount != 0 {
		t.Fatal("processor should not run for a business code")
	}
}

func TestScanRejectsGarbage(t *testing.T) {
	proc := &fakeProcessor{}
	h := &ScanHandler{Cfg: config.Config{}, Processor: proc, Tr: newTestTranslator(t)}

	c, rec := newScanContext(t, `{"code":"hello world"}`)
	if err := h.Scan(c); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if proc.callCount != 0 {
		t.Fatal("processor should not run for an unrecognized code")
	}
}

func TestScanUnknownCustomerIs404(t *testing.T) {
	proc := &fakeProcessor{err: award.ErrCustomerNotFound}
	h := &ScanHandler{Cfg: config.Config{}, Processor: proc, Tr: newTestTranslator(t)}

	c, rec := newScanContext(t, `{"code":"cust_nobody"}`)
	if err := h.Scan(c); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestScanRewardFallsBackToDefaultMessage(t *testing.T) {
	proc := &fakeProcessor{result: award.Result{
		Customer:  model.Customer{Token: "cust_abc"},
		Business:  model.Business{ID: 7},
		Total:     0,
		RewardWon: true, PointsAwarded: 1,
	}}
	published := make(chan queue.RewardWonEvent, 1)
	h := &ScanHandler{
		Cfg:       config.Config{},
		Processor: proc,
		Tr:        newTestTranslator(t),
		Publish: func(_ context.Context, ev queue.RewardWonEvent) error {
			published <- ev
			return nil
		},
	}

	c, rec := newScanContext(t, `{"code":"cust_abc"}`)
	if err := h.Scan(c); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	var resp scanResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.RewardWon {
		t.Fatal("reward_won not set")
	}
	if resp.RewardMessage == "" {
		t.Fatal("expected default reward message when business configured none")
	}
	ev := <-published
	if ev.BusinessID != 7 || ev.RewardMessage != resp.RewardMessage {
		t.Fatalf("published event = %+v", ev)
	}
}

func TestScanRewardKeepsBusinessMessage(t *testing.T) {
	proc := &fakeProcessor{result: award.Result{
		Customer:      model.Customer{Token: "cust_abc"},
		Business:      model.Business{ID: 7},
		RewardWon:     true,
		RewardMessage: "Free coffee!",
		PointsAwarded: 1,
	}}
	h := &ScanHandler{Cfg: config.Config{}, Processor: proc, Tr: newTestTranslator(t)}

	c, rec := newScanContext(t, `{"code":"cust_abc"}`)
	if err := h.Scan(c); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	var resp scanResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.RewardMessage != "Free coffee!" {
		t.Fatalf("reward message = %q", resp.RewardMessage)
	}
}

func TestScanRequiresCode(t *testing.T) {
	h := &ScanHandler{Cfg: config.Config{}, Processor: &fakeProcessor{}, Tr: newTestTranslator(t)}
	c, rec := newScanContext(t, `{}`)
	if err := h.Scan(c); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
