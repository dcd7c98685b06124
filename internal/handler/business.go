package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelora/qr-loyalty/internal/config"
	"github.com/avelora/qr-loyalty/internal/model"
	"github.com/avelora/qr-loyalty/internal/qr"
	"github.com/avelora/qr-loyalty/internal/repository"
	"github.com/avelora/qr-loyalty/internal/token"
)

// BusinessHandler serves the authenticated business dashboard: profile and
// loyalty-program settings, the member list, and issuing QR-coded customer
// identities at the terminal.
type BusinessHandler struct {
	Cfg        config.Config
	Businesses *repository.BusinessRepo
	Customers  *repository.CustomerRepo
}

func NewBusinessHandler(cfg config.Config, b *repository.BusinessRepo, c *repository.CustomerRepo) *BusinessHandler {
	if b == nil || c == nil {
		panic("nil repository passed to NewBusinessHandler")
	}
	return &BusinessHandler{Cfg: cfg, Businesses: b, Customers: c}
}

type businessProfileResp struct {
	ID              uint64 `json:"id"`
	Token           string `json:"token"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	PointsPerScan   int    `json:"points_per_scan"`
	RewardThreshold int    `json:"reward_threshold"`
	RewardMessage   string `json:"reward_message"`
	LogoURL         string `json:"logo_url"`
	ForegroundColor string `json:"foreground_color"`
	CornerShape     string `json:"corner_shape"`
	DotShape        string `json:"dot_shape"`
}

func profileRespFrom(b model.Business) businessProfileResp {
	return businessProfileResp{
		ID:              b.ID,
		Token:           b.Token,
		Email:           b.Email,
		Name:            b.Name,
		Description:     b.Description,
		PointsPerScan:   b.PointsPerScan,
		RewardThreshold: b.RewardThreshold,
		RewardMessage:   b.RewardMessage,
		LogoURL:         b.Style.LogoURL,
		ForegroundColor: b.Style.ForegroundColor,
		CornerShape:     b.Style.CornerShape,
		DotShape:        b.Style.DotShape,
	}
}

// GetProfile handles GET /v1/business/profile.
func (h *BusinessHandler) GetProfile(c echo.Context) error {
	bid, err := getBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Businesses.GetByID(ctx, bid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, profileRespFrom(b))
}

type updateProfileReq struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	PointsPerScan   int    `json:"points_per_scan"`
	RewardThreshold int    `json:"reward_threshold"`
	RewardMessage   string `json:"reward_message"`
	LogoURL         string `json:"logo_url"`
	ForegroundColor string `json:"foreground_color"`
	CornerShape     string `json:"corner_shape"`
	DotShape        string `json:"dot_shape"`
}

// UpdateProfile handles PUT /v1/business/profile.  Program settings are
// validated against the configured bounds; zero means "use the default".
func (h *BusinessHandler) UpdateProfile(c echo.Context) error {
	bid, err := getBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if req.PointsPerScan < 0 || req.RewardThreshold < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "points settings must not be negative"})
	}
	if h.Cfg.MaxPointsPerScan > 0 && req.PointsPerScan > h.Cfg.MaxPointsPerScan {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("points_per_scan exceeds limit of %d", h.Cfg.MaxPointsPerScan)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Businesses.GetByID(ctx, bid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	b.Name = req.Name
	b.Description = strings.TrimSpace(req.Description)
	b.PointsPerScan = req.PointsPerScan
	b.RewardThreshold = req.RewardThreshold
	b.RewardMessage = strings.TrimSpace(req.RewardMessage)
	b.Style = model.QRStyle{
		LogoURL:         strings.TrimSpace(req.LogoURL),
		ForegroundColor: strings.TrimSpace(req.ForegroundColor),
		CornerShape:     strings.TrimSpace(req.CornerShape),
		DotShape:        strings.TrimSpace(req.DotShape),
	}
	if err := h.Businesses.UpdateProfile(ctx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, profileRespFrom(b))
}

// ListMembers handles GET /v1/business/customers: every customer holding a
// membership with this business and their balances.
func (h *BusinessHandler) ListMembers(c echo.Context) error {
	bid, err := getBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	members, err := h.Customers.ListByBusiness(ctx, bid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if members == nil {
		members = []repository.MemberRow{}
	}
	return c.JSON(http.StatusOK, echo.Map{"members": members})
}

type issueCustomerReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// IssueCustomer handles POST /v1/business/customers.  The terminal issues a
// provisional customer identity on the spot: a placeholder record plus a
// QR payload that auto-joins this business on first scan.  The customer
// completes the record later through the setup flow.
func (h *BusinessHandler) IssueCustomer(c echo.Context) error {
	bid, err := getBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req issueCustomerReq
	_ = c.Bind(&req) // empty body is fine; the placeholder name applies

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tok := token.NewCustomerToken()
	if _, err := h.Customers.Create(ctx, tok, req.Name, req.Phone, true); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create customer failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"token":    tok,
		"scan_url": customerScanURL(h.Cfg.PublicBaseURL, tok, bid),
		"qr_url":   fmt.Sprintf("/v1/customers/%s/qr", tok),
	})
}

// QRCode handles GET /v1/business/qr: the business's own identity code as
// a styled PNG, suitable for printing at the counter.
func (h *BusinessHandler) QRCode(c echo.Context) error {
	bid, err := getBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Businesses.GetByID(ctx, bid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	payload := h.Cfg.PublicBaseURL + "/b?" + url.Values{"token": {b.Token}}.Encode()
	png, err := qr.RenderPNG(payload, qr.Style(b.Style), qr.DefaultSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render failed"})
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// customerScanURL builds the URL embedded in a customer QR code.  The join
// parameter makes the first scan at the issuing business create the
// membership even before the customer finishes setup.
func customerScanURL(base, tok string, joinBusinessID uint64) string {
	v := url.Values{"token": {tok}}
	if joinBusinessID != 0 {
		v.Set("join", fmt.Sprintf("%d", joinBusinessID))
	}
	return base + "/c?" + v.Encode()
}
