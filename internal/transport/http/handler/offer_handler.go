package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bidmarket/internal/domain"
	"bidmarket/internal/service"
	"bidmarket/internal/transport/http/middleware"
	resp "bidmarket/internal/transport/http/response"
)

type OfferHandler struct {
	offers *service.OfferService
}

func NewOfferHandler(offers *service.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil {
		resp.Error(c, http.StatusBadRequest, "Invalid offer id.")
		return 0, false
	}
	return uint(id), true
}

// List GET|POST /api/offers/
func (h *OfferHandler) List(c *gin.Context) {
	rows, err := h.offers.ListOffers(c.Request.Context())
	if err != nil {
		resp.Error(c, http.StatusInternalServerError, resp.MsgInternal)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// MyOffers GET|POST /api/offers/myoffers（仅 supplier）
func (h *OfferHandler) MyOffers(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		resp.Error(c, http.StatusUnauthorized, resp.MsgInvalidCredentials)
		return
	}
	rows, err := h.offers.MyOffers(c.Request.Context(), p.ID)
	if err != nil {
		resp.Error(c, http.StatusInternalServerError, resp.MsgInternal)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Detail GET|POST /api/offers/offerdetails/:id
func (h *OfferHandler) Detail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	d, err := h.offers.OfferDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrOfferNotFound) {
			resp.Error(c, http.StatusNotFound, "Offer not found.")
			return
		}
		resp.Error(c, http.StatusInternalServerError, resp.MsgInternal)
		return
	}
	c.JSON(http.StatusOK, d)
}

type createOfferReq struct {
	Product   string  `json:"product" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required"`
	StartDate string  `json:"start_date" binding:"required"`
	EndDate   string  `json:"end_date" binding:"required"`
	Price     float64 `json:"price" binding:"required"`
	Batches   int     `json:"batches" binding:"required"`
}

// Create POST /api/offers/offercreate（仅 supplier）
func (h *OfferHandler) Create(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		resp.Error(c, http.StatusUnauthorized, resp.MsgInvalidCredentials)
		return
	}

	var req createOfferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "All fields are required.")
		return
	}

	o, err := h.offers.CreateOffer(c.Request.Context(), p.ID, service.CreateOfferInput{
		Product:   req.Product,
		Quantity:  req.Quantity,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Price:     req.Price,
		Batches:   req.Batches,
	})
	if err != nil {
		resp.Error(c, http.StatusInternalServerError, resp.MsgInternal)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Offer created successfully.",
		"offer":   o,
	})
}

type placeBidReq struct {
	OfferID  uint    `json:"offerId" binding:"required"`
	BidPrice float64 `json:"bidPrice" binding:"required"`
}

// PlaceBid POST /api/offers/offerbid（仅 buyer）
func (h *OfferHandler) PlaceBid(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		resp.Error(c, http.StatusUnauthorized, resp.MsgInvalidCredentials)
		return
	}

	var req placeBidReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "Offer ID and bid price are required.")
		return
	}

	b, err := h.offers.PlaceBid(c.Request.Context(), p.ID, req.OfferID, req.BidPrice)
	if err != nil {
		if errors.Is(err, domain.ErrOfferNotFound) {
			resp.Error(c, http.StatusNotFound, "Offer not found.")
			return
		}
		resp.Error(c, http.StatusInternalServerError, resp.MsgInternal)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Bid placed successfully.",
		"bid":     b,
	})
}

// Bids GET|POST /api/offers/offerbid/:offerId
func (h *OfferHandler) Bids(c *gin.Context) {
	offerID, ok := parseID(c, "offerId")
	if !ok {
		return
	}
	rows, err := h.offers.ListBids(c.Request.Context(), offerID)
	if err != nil {
		resp.Error(c, http.StatusInternalServerError, resp.MsgInternal)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"offerId":   offerID,
		"totalBids": len(rows),
		"bids":      rows,
	})
}

type deleteOfferReq struct {
	Username string `json:"username" binding:"required"`
}

// Delete DELETE /api/offers/:id（仅 supplier，且须为报盘创建者）
func (h *OfferHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req deleteOfferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "Username is required.")
		return
	}

	err := h.offers.DeleteOffer(c.Request.Context(), id, req.Username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		resp.Error(c, http.StatusNotFound, "User not found.")
	case errors.Is(err, domain.ErrNotOfferOwner):
		// 故意模糊：不向非属主确认报盘是否存在
		resp.Error(c, http.StatusForbidden, "Unauthorized or offer not found.")
	case err != nil:
		resp.Error(c, http.StatusInternalServerError, resp.MsgInternal)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Offer deleted successfully."})
	}
}
