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
	"github.com/avelora/qr-loyalty/internal/repository"
	"github.com/avelora/qr-loyalty/internal/token"
)

// AdminHandler serves the platform operator's business management screens.
// Every route behind it requires the ADMIN role.
type AdminHandler struct {
	Cfg        config.Config
	Businesses *repository.BusinessRepo
}

func NewAdminHandler(cfg config.Config, b *repository.BusinessRepo) *AdminHandler {
	if b == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Cfg: cfg, Businesses: b}
}

type adminCreateBusinessReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// CreateBusiness handles POST /v1/admin/businesses: operator-side
// enrollment, used when onboarding a business over the phone.  The business
// logs in afterwards with the credentials chosen here.
func (h *AdminHandler) CreateBusiness(c echo.Context) error {
	var req adminCreateBusinessReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password/name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	identity := token.NewBusinessToken()
	bid, err := h.Businesses.Create(ctx, identity, req.Email, req.Password, req.Name, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create business failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":             bid,
		"email":          req.Email,
		"name":           req.Name,
		"identity_token": identity,
	})
}

// ListBusinesses handles GET /v1/admin/businesses.
func (h *AdminHandler) ListBusinesses(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	businesses, err := h.Businesses.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]businessProfileResp, 0, len(businesses))
	for _, b := range businesses {
		out = append(out, profileRespFrom(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"businesses": out})
}

// DeleteBusiness handles DELETE /v1/admin/businesses/:id.  Memberships and
// discounts of the business cascade away with it.
func (h *AdminHandler) DeleteBusiness(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid business id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Businesses.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
