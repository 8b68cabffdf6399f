package handlers

import (
	"errors"
	"net/http"
	"time"

	"auction-platform/internal/domain"
	"auction-platform/internal/services"
	"auction-platform/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type AuctionHandler struct {
	manager *services.AuctionManager
	log     logger.Logger
}

func NewAuctionHandler(manager *services.AuctionManager, log logger.Logger) *AuctionHandler {
	return &AuctionHandler{
		manager: manager,
		log:     log,
	}
}

type CreateAuctionRequest struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	CategoryID       string          `json:"category_id"`
	StartingPrice    decimal.Decimal `json:"starting_price"`
	MinimumIncrement decimal.Decimal `json:"minimum_increment"`
	StartTime        time.Time       `json:"start_time"`
	EndTime          time.Time       `json:"end_time"`
}

func (h *AuctionHandler) CreateAuction(c echo.Context) error {
	sellerID := callerID(c)
	if sellerID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "caller identity required"})
	}

	var req CreateAuctionRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Title is required"})
	}

	auction, err := h.manager.CreateAuction(c.Request().Context(), services.CreateAuctionInput{
		Title:            req.Title,
		Description:      req.Description,
		SellerID:         sellerID,
		CategoryID:       req.CategoryID,
		StartingPrice:    req.StartingPrice,
		MinimumIncrement: req.MinimumIncrement,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
	})
	if err != nil {
		h.log.Error("Failed to create auction", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, auction)
}

func (h *AuctionHandler) GetAuction(c echo.Context) error {
	auctionID := c.Param("id")

	auction, err := h.manager.GetAuction(c.Request().Context(), auctionID)
	if errors.Is(err, domain.ErrAuctionNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Auction not found"})
	}
	if err != nil {
		h.log.Error("Failed to load auction", "auction_id", auctionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load auction"})
	}

	return c.JSON(http.StatusOK, auction)
}

func (h *AuctionHandler) ScheduleAuction(c echo.Context) error {
	auctionID := c.Param("id")

	auction, err := h.manager.ScheduleAuction(c.Request().Context(), auctionID)
	if errors.Is(err, domain.ErrAuctionNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Auction not found"})
	}
	if err != nil {
		h.log.Error("Failed to schedule auction", "auction_id", auctionID, "error", err)
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, auction)
}

func (h *AuctionHandler) CancelAuction(c echo.Context) error {
	auctionID := c.Param("id")

	err := h.manager.CancelAuction(c.Request().Context(), auctionID)
	if errors.Is(err, domain.ErrAuctionNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Auction not found"})
	}
	if err != nil {
		h.log.Error("Failed to cancel auction", "auction_id", auctionID, "error", err)
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

// callerID is the authenticated identity injected by the auth layer in
// front of the gateway. Authentication itself is out of scope here.
func callerID(c echo.Context) string {
	return c.Request().Header.Get("X-User-ID")
}
