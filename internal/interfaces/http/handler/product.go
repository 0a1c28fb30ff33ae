package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erp/console/internal/application/screen"
	"github.com/erp/console/internal/application/view"
	"github.com/erp/console/internal/infrastructure/apiclient"
	"github.com/erp/console/internal/interfaces/http/dto"
	"github.com/erp/console/internal/interfaces/http/middleware"
)

// ProductHandler serves the dependent unit fields of the product form
type ProductHandler struct {
	BaseHandler
	products *screen.ProductScreen
}

// NewProductHandler creates a product handler
func NewProductHandler(products *screen.ProductScreen) *ProductHandler {
	return &ProductHandler{products: products}
}

// PackingUnits lists the packing units of ?quantity_unit=
func (h *ProductHandler) PackingUnits(c *gin.Context) {
	units, err := h.products.PackingUnits(c.Request.Context(), c.Query("quantity_unit"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, units)
}

// Pouches lists the pouches of ?packing_unit=
func (h *ProductHandler) Pouches(c *gin.Context) {
	pouches, err := h.products.Pouches(c.Request.Context(), c.Query("packing_unit"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pouches)
}

// Select applies one field change to a posted product draft. Clearing a
// quantity or packing unit resets the fields below it. When refreshing the
// dependent options fails the updated form is still returned with the
// error so the stale selections do not linger.
func (h *ProductHandler) Select(c *gin.Context) {
	var sel screen.ProductSelection
	if err := c.ShouldBindJSON(&sel); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid selection")
		return
	}

	fv, err := h.products.Select(c.Request.Context(), sel)
	switch {
	case errors.Is(err, screen.ErrUnknownField):
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, err.Error())
	case err != nil:
		msg := apiclient.MessageOr(err, "Failed to load unit options")
		c.JSON(http.StatusBadGateway, dto.Response{
			Data:  fv,
			Error: &dto.ErrorInfo{Code: dto.ErrCodeUpstream, Message: msg, RequestID: middleware.GetRequestID(c)},
			Toast: view.Warning(msg),
		})
	default:
		h.Success(c, fv)
	}
}
