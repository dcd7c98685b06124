package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/avelora/qr-loyalty/internal/award"
	"github.com/avelora/qr-loyalty/internal/config"
	"github.com/avelora/qr-loyalty/internal/i18n"
	"github.com/avelora/qr-loyalty/internal/queue"
	queue_publisher "github.com/avelora/qr-loyalty/internal/service"
	"github.com/avelora/qr-loyalty/internal/token"
)

// AwardProcessor is the slice of the award package the scan handler needs.
// It exists so tests can substitute a processor over an in-memory store.
type AwardProcessor interface {
	Process(ctx context.Context, businessID uint64, customerToken string) (award.Result, error)
}

// ScanHandler turns a POST from a scan terminal into an award.  The body
// carries the raw scanned string, which may be a bare cust_ token or a full
// URL; classification is delegated to the token resolver.  The optional
// Redis replay guard rejects a second scan of the same customer within a
// short window when enabled; by default it is off and every scan awards.
type ScanHandler struct {
	Cfg       config.Config
	Processor AwardProcessor
	Tr        *i18n.Translator
	Redis     *redis.Client                                        // may be nil
	Publish   func(ctx context.Context, ev queue.RewardWonEvent) error // nil disables event publishing
}

func NewScanHandler(cfg config.Config, p AwardProcessor, tr *i18n.Translator, rdb *redis.Client) *ScanHandler {
	if p == nil || tr == nil {
		panic("nil dependency passed to NewScanHandler")
	}
	return &ScanHandler{Cfg: cfg, Processor: p, Tr: tr, Redis: rdb, Publish: queue_publisher.PublishRewardWon}
}

type scanReq struct {
	Code string `json:"code"`
}

type scanCustomerPart struct {
	Token       string `json:"token"`
	Name        string `json:"name"`
	Provisional bool   `json:"provisional"`
}

type scanResp struct {
	Customer      scanCustomerPart `json:"customer"`
	PointsAwarded int              `json:"points_awarded"`
	Total         int              `json:"total"`
	NewMember     bool             `json:"new_member"`
	RewardWon     bool             `json:"reward_won"`
	RewardMessage string           `json:"reward_message,omitempty"`
}

// Scan handles POST /v1/business/scan.
func (h *ScanHandler) Scan(c echo.Context) error {
	bid, err := getBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	lang := requestLang(c)

	var req scanReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	// Classify the scanned string.  Only customer codes can be awarded;
	// business codes and unrecognized strings are rejected without any
	// lookup.  The URL path of a scanned link is deliberately ignored.
	res := token.Resolve(req.Code)
	if res.Kind != token.KindCustomer {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": h.Tr.Translate(lang, "scan.invalid_code")})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if h.Cfg.ReplayGuardEnabled && h.Redis != nil {
		ok, gerr := h.Redis.SetNX(ctx, replayKey(bid, res.Token), 1, h.Cfg.ReplayGuardTTL).Result()
		if gerr == nil && !ok {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": h.Tr.Translate(lang, "scan.replay")})
		}
		// A guard error is ignored: losing the guard must never block scans.
	}

	result, err := h.Processor.Process(ctx, bid, res.Token)
	if err != nil {
		switch {
		case errors.Is(err, award.ErrCustomerNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": h.Tr.Translate(lang, "scan.customer_not_found")})
		case errors.Is(err, award.ErrBusinessNotFound):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.Tr.Translate(lang, "error.unexpected")})
		}
	}

	resp := scanResp{
		Customer: scanCustomerPart{
			Token:       result.Customer.Token,
			Name:        result.Customer.Name,
			Provisional: result.Customer.Provisional,
		},
		PointsAwarded: result.PointsAwarded,
		Total:         result.Total,
		NewMember:     result.NewMember,
		RewardWon:     result.RewardWon,
	}
	if result.RewardWon {
		resp.RewardMessage = result.RewardMessage
		if resp.RewardMessage == "" {
			resp.RewardMessage = h.Tr.Translate(lang, "reward.default_message")
		}
		h.publishReward(result, resp.RewardMessage)
	}
	return c.JSON(http.StatusOK, resp)
}

// publishReward emits the reward.won event without blocking the response;
// a broker outage only costs the event, never the scan.
func (h *ScanHandler) publishReward(result award.Result, message string) {
	if h.Publish == nil {
		return
	}
	ev := queue.RewardWonEvent{
		MembershipID:  result.MembershipID,
		CustomerID:    result.Customer.ID,
		CustomerName:  result.Customer.Name,
		BusinessID:    result.Business.ID,
		BusinessName:  result.Business.Name,
		PointsAwarded: result.PointsAwarded,
		TotalAfter:    result.Total,
		RewardMessage: message,
		WonAt:         time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.Publish(ctx, ev); err != nil {
			log.Printf("scan: publish reward event failed: %v", err)
		}
	}()
}

func replayKey(businessID uint64, customerToken string) string {
	return "scanguard:" + strconv.FormatUint(businessID, 10) + ":" + customerToken
}
