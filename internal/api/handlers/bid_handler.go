package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"auction-platform/internal/bidding"
	"auction-platform/internal/domain"
	"auction-platform/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type BidHandler struct {
	engine *bidding.Engine
	reader *bidding.Reader
	bids   domain.BidStore
	log    logger.Logger
}

func NewBidHandler(engine *bidding.Engine, reader *bidding.Reader, bids domain.BidStore, log logger.Logger) *BidHandler {
	return &BidHandler{
		engine: engine,
		reader: reader,
		bids:   bids,
		log:    log,
	}
}

type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *BidHandler) PlaceBid(c echo.Context) error {
	bidderID := callerID(c)
	if bidderID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "caller identity required"})
	}

	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Bid amount must be positive"})
	}

	result, err := h.engine.PlaceBid(c.Request().Context(), bidding.PlaceBidRequest{
		AuctionID: c.Param("id"),
		BidderID:  bidderID,
		Amount:    req.Amount,
	})
	if err != nil {
		var bidErr *domain.BidError
		if errors.As(err, &bidErr) {
			return c.JSON(bidErrorStatus(bidErr), map[string]string{
				"error": bidErr.Reason,
				"kind":  string(bidErr.Kind),
			})
		}
		h.log.Error("Failed to place bid", "auction_id", c.Param("id"), "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to place bid"})
	}

	return c.JSON(http.StatusCreated, result)
}

func (h *BidHandler) GetHighestBid(c echo.Context) error {
	auctionID := c.Param("id")

	bid, err := h.reader.GetHighestBid(c.Request().Context(), auctionID)
	if err != nil {
		h.log.Error("Failed to load highest bid", "auction_id", auctionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load highest bid"})
	}
	if bid == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No bids placed yet"})
	}

	return c.JSON(http.StatusOK, bid)
}

func (h *BidHandler) GetBids(c echo.Context) error {
	auctionID := c.Param("id")

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid limit"})
		}
		limit = parsed
	}

	bids, err := h.bids.GetBidHistory(c.Request().Context(), auctionID, limit)
	if err != nil {
		h.log.Error("Failed to load bid history", "auction_id", auctionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load bids"})
	}

	return c.JSON(http.StatusOK, bids)
}

func bidErrorStatus(err *domain.BidError) int {
	switch err.Kind {
	case domain.KindAuctionNotFound:
		return http.StatusNotFound
	case domain.KindBusy, domain.KindConcurrentUpdate:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
