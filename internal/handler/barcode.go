package handler

import (
	"net/http"

	"makepri/internal/apierror"
	"makepri/internal/service"

	"github.com/gin-gonic/gin"
)

// BarcodeHandler serves the scanner lookup used by the POS front end on every
// beep. No auth — price check terminals hit it too.
type BarcodeHandler struct{ svc service.ProductService }

func NewBarcodeHandler(svc service.ProductService) *BarcodeHandler {
	return &BarcodeHandler{svc: svc}
}

// Lookup godoc
// @Summary Resolve a barcode to name, price and stock
// @Tags products
// @Produce json
// @Param barcode path string true "EAN/UPC barcode"
// @Success 200 {object} dto.BarcodeLookupResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/barcode/{barcode} [get]
func (h *BarcodeHandler) Lookup(c *gin.Context) {
	barcode := c.Param("barcode")
	if len(barcode) < 8 {
		c.JSON(http.StatusBadRequest, apierror.New("invalid barcode"))
		return
	}
	resp, err := h.svc.LookupBarcode(c.Request.Context(), barcode)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
