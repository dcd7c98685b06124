package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelora/qr-loyalty/internal/config"
	"github.com/avelora/qr-loyalty/internal/i18n"
	"github.com/avelora/qr-loyalty/internal/model"
	"github.com/avelora/qr-loyalty/internal/qr"
	"github.com/avelora/qr-loyalty/internal/repository"
	"github.com/avelora/qr-loyalty/internal/token"
)

// CustomerHandler serves customer self-service endpoints.  There is no
// customer login: the cust_ token in the path is the credential, treated as
// unguessable.  The state endpoint is what customer displays poll.
type CustomerHandler struct {
	Cfg         config.Config
	Customers   *repository.CustomerRepo
	Memberships *repository.MembershipRepo
	Discounts   *repository.DiscountRepo
	Businesses  *repository.BusinessRepo
	Tr          *i18n.Translator
}

func NewCustomerHandler(cfg config.Config, cu *repository.CustomerRepo, m *repository.MembershipRepo, d *repository.DiscountRepo, b *repository.BusinessRepo, tr *i18n.Translator) *CustomerHandler {
	if cu == nil || m == nil || d == nil || b == nil || tr == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{Cfg: cfg, Customers: cu, Memberships: m, Discounts: d, Businesses: b, Tr: tr}
}

type customerSignupReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Signup handles POST /v1/customers: self-service signup.  Unlike the
// terminal-issued flow, the record is complete from the start.
func (h *CustomerHandler) Signup(c echo.Context) error {
	var req customerSignupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tok := token.NewCustomerToken()
	if _, err := h.Customers.Create(ctx, tok, req.Name, req.Phone, false); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create customer failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"token":    tok,
		"scan_url": customerScanURL(h.Cfg.PublicBaseURL, tok, 0),
		"qr_url":   "/v1/customers/" + tok + "/qr",
	})
}

type customerStateResp struct {
	Customer struct {
		Token       string `json:"token"`
		Name        string `json:"name"`
		Phone       string `json:"phone"`
		Provisional bool   `json:"provisional"`
	} `json:"customer"`
	Balances      []repository.BalanceRow `json:"balances"`
	TotalPoints   int                     `json:"total_points"`
	RewardPending bool                    `json:"reward_pending"`
	RewardMessage string                  `json:"reward_message,omitempty"`
	Discount      *model.Discount         `json:"discount,omitempty"`
}

// GetState handles GET /v1/customers/:token.  Displays poll this endpoint
// on a fixed interval; the response carries the explicit reward_pending
// flag so a display never has to infer a reward from a point decrease.
// The flag is cleared after being reported once, so each reward celebrates
// exactly one time.  An optional discount_id query parameter attaches that
// discount to the response for highlighting.
func (h *CustomerHandler) GetState(c echo.Context) error {
	tok := c.Param("token")
	res := token.Resolve(tok)
	if res.Kind != token.KindCustomer {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust, err := h.Customers.GetByToken(ctx, res.Token)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	balances, err := h.Memberships.ListByCustomer(ctx, cust.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	var resp customerStateResp
	resp.Customer.Token = cust.Token
	resp.Customer.Name = cust.Name
	resp.Customer.Phone = cust.Phone
	resp.Customer.Provisional = cust.Provisional
	if balances == nil {
		balances = []repository.BalanceRow{}
	}
	resp.Balances = balances

	var pendingIDs []uint64
	for _, b := range balances {
		resp.TotalPoints += b.Points
		if b.RewardPending {
			resp.RewardPending = true
			if resp.RewardMessage == "" {
				resp.RewardMessage = b.RewardMessage
			}
			pendingIDs = append(pendingIDs, b.MembershipID)
		}
	}
	if resp.RewardPending && resp.RewardMessage == "" {
		resp.RewardMessage = h.Tr.Translate(requestLang(c), "reward.default_message")
	}

	// Report-once semantics: clear the flags we are about to deliver.  A
	// failure here is logged by the repo caller chain on the next poll; the
	// worst case is one extra celebration, never a missed one.
	if len(pendingIDs) > 0 {
		_ = h.Memberships.ClearRewardPending(ctx, pendingIDs)
	}

	if did, err := strconv.ParseUint(c.QueryParam("discount_id"), 10, 64); err == nil && did > 0 {
		if d, err := h.Discounts.GetByID(ctx, did); err == nil && d.IsActive {
			resp.Discount = &d
		}
	}
	return c.JSON(http.StatusOK, resp)
}

type customerUpdateReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Update handles PUT /v1/customers/:token.  Both the setup step that
// completes a provisional record and ordinary profile edits land here; the
// provisional flag is cleared either way.
func (h *CustomerHandler) Update(c echo.Context) error {
	res := token.Resolve(c.Param("token"))
	if res.Kind != token.KindCustomer {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}
	var req customerUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust, err := h.Customers.GetByToken(ctx, res.Token)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := h.Customers.Update(ctx, cust.ID, req.Name, req.Phone); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": cust.Token, "name": req.Name, "phone": strings.TrimSpace(req.Phone)})
}

// Delete handles DELETE /v1/customers/:token: explicit account deletion.
// Memberships cascade away with the record.
func (h *CustomerHandler) Delete(c echo.Context) error {
	res := token.Resolve(c.Param("token"))
	if res.Kind != token.KindCustomer {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust, err := h.Customers.GetByToken(ctx, res.Token)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := h.Customers.Delete(ctx, cust.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": h.Tr.Translate(requestLang(c), "customer.deleted")})
}

// QRCode handles GET /v1/customers/:token/qr.  The payload is the scan URL
// for this customer; when a join parameter names a business, that
// business's styling is applied and the join survives into the payload so
// the first scan auto-creates the membership.
func (h *CustomerHandler) QRCode(c echo.Context) error {
	res := token.Resolve(c.Param("token"))
	if res.Kind != token.KindCustomer {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust, err := h.Customers.GetByToken(ctx, res.Token)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	var style qr.Style
	joinID, _ := strconv.ParseUint(c.QueryParam("join"), 10, 64)
	if joinID > 0 {
		if b, err := h.Businesses.GetByID(ctx, joinID); err == nil {
			style = qr.Style(b.Style)
		}
	}
	payload := customerScanURL(h.Cfg.PublicBaseURL, cust.Token, joinID)
	png, err := qr.RenderPNG(payload, style, qr.DefaultSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render failed"})
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// History handles GET /v1/customers/:token/memberships/:membership_id/events:
// the recent point ledger of one membership, newest first.  The membership
// must belong to the customer named in the path.
func (h *CustomerHandler) History(c echo.Context) error {
	res := token.Resolve(c.Param("token"))
	if res.Kind != token.KindCustomer {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}
	mid, err := strconv.ParseUint(c.Param("membership_id"), 10, 64)
	if err != nil || mid == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid membership id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust, err := h.Customers.GetByToken(ctx, res.Token)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	balances, err := h.Memberships.ListByCustomer(ctx, cust.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	owned := false
	for _, b := range balances {
		if b.MembershipID == mid {
			owned = true
			break
		}
	}
	if !owned {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "membership not found"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	events, err := h.Memberships.ListEvents(ctx, mid, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]echo.Map, 0, len(events))
	for _, e := range events {
		out = append(out, echo.Map{
			"delta":      e.Delta,
			"reason":     e.Reason,
			"created_at": e.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// ListDiscounts handles GET /v1/customers/:token/discounts: global
// promotions plus those of businesses the customer belongs to.
func (h *CustomerHandler) ListDiscounts(c echo.Context) error {
	res := token.Resolve(c.Param("token"))
	if res.Kind != token.KindCustomer {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust, err := h.Customers.GetByToken(ctx, res.Token)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	discounts, err := h.Discounts.ListActiveForCustomer(ctx, cust.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if discounts == nil {
		discounts = []model.Discount{}
	}
	return c.JSON(http.StatusOK, echo.Map{"discounts": discounts})
}
