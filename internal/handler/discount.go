package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelora/qr-loyalty/internal/model"
	"github.com/avelora/qr-loyalty/internal/repository"
	"github.com/avelora/qr-loyalty/internal/token"
)

// DiscountHandler serves business-owned discount management plus the public
// promotion listings shown on customer displays.
type DiscountHandler struct {
	Discounts  *repository.DiscountRepo
	Businesses *repository.BusinessRepo
}

func NewDiscountHandler(d *repository.DiscountRepo, b *repository.BusinessRepo) *DiscountHandler {
	if d == nil || b == nil {
		panic("nil repository passed to NewDiscountHandler")
	}
	return &DiscountHandler{Discounts: d, Businesses: b}
}

type discountReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// Create handles POST /v1/business/discounts.
func (h *DiscountHandler) Create(c echo.Context) error {
	bid, err := getBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req discountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Discounts.Create(ctx, &bid, req.Title, strings.TrimSpace(req.Description))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create discount failed"})
	}
	d, err := h.Discounts.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, d)
}

// List handles GET /v1/business/discounts: the business's own discounts,
// active or not.
func (h *DiscountHandler) List(c echo.Context) error {
	bid, err := getBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	discounts, err := h.Discounts.ListForBusiness(ctx, bid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if discounts == nil {
		discounts = []model.Discount{}
	}
	return c.JSON(http.StatusOK, echo.Map{"discounts": discounts})
}

// Update handles PUT /v1/business/discounts/:id.  Ownership is enforced in
// the repository; touching a global or foreign discount yields 403.
func (h *DiscountHandler) Update(c echo.Context) error {
	bid, err := getBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid discount id"})
	}
	var req discountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Discounts.Update(ctx, id, bid, req.Title, strings.TrimSpace(req.Description), active); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "discount not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your discount"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	d, err := h.Discounts.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, d)
}

// Delete handles DELETE /v1/business/discounts/:id.
func (h *DiscountHandler) Delete(c echo.Context) error {
	bid, err := getBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid discount id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Discounts.Delete(ctx, id, bid); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "discount not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your discount"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// ListPublic handles GET /v1/discounts: every active promotion, global ones
// first.  No authentication; displays in setup mode use this before any
// membership exists.
func (h *DiscountHandler) ListPublic(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	discounts, err := h.Discounts.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if discounts == nil {
		discounts = []model.Discount{}
	}
	return c.JSON(http.StatusOK, echo.Map{"discounts": discounts})
}

// PublicBusiness handles GET /v1/businesses/:token: the public face of a
// business resolved from a scanned biz_ code.  Only presentation fields are
// exposed, never credentials or program internals.
func (h *DiscountHandler) PublicBusiness(c echo.Context) error {
	res := token.Resolve(c.Param("token"))
	if res.Kind != token.KindBusiness {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Businesses.GetByToken(ctx, res.Token)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !b.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
	}

	discounts, err := h.Discounts.ListForBusiness(ctx, b.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	active := make([]model.Discount, 0, len(discounts))
	for _, d := range discounts {
		if d.IsActive {
			active = append(active, d)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":               b.ID,
		"name":             b.Name,
		"description":      b.Description,
		"reward_threshold": b.RewardThreshold,
		"logo_url":         b.Style.LogoURL,
		"discounts":        active,
	})
}
