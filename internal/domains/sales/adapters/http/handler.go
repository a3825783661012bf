// Package saleshttp exposes the sales use cases over a gin HTTP transport.
package saleshttp

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devstore/sales-api/internal/domains/sales/adapters/http/mapper"
	salesapp "github.com/devstore/sales-api/internal/domains/sales/application"
	saletypes "github.com/devstore/sales-api/internal/domains/sales/application/types"
	"github.com/devstore/sales-api/internal/domains/sales/ports"
	sharederrors "github.com/devstore/sales-api/internal/shared/errors"
)

// SalesAPI wires HTTP transport with the sales bounded context service.
type SalesAPI struct {
	service   ports.Service
	responder *sharederrors.ChainedResponder
}

// NewSalesAPI creates a SalesAPI backed by the provided service.
func NewSalesAPI(service ports.Service) *SalesAPI {
	return &SalesAPI{
		service:   service,
		responder: sharederrors.NewChainedResponder("", mapServiceError),
	}
}

// Post /v1/sales
// Open a new sale
func (api *SalesAPI) CreateSale(c *gin.Context) {
	var payload mapper.CreateSaleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.respondBadRequest(c, err)
		return
	}
	sale, err := api.service.CreateSale(c.Request.Context(), mapper.ToCreateSaleInput(payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromDomainSale(sale))
}

// Get /v1/sales/:saleId
// Fetch a sale by identifier
func (api *SalesAPI) GetSale(c *gin.Context) {
	id, ok := api.parseUUIDParam(c, "saleId")
	if !ok {
		return
	}
	sale, err := api.service.GetSale(c.Request.Context(), saletypes.SaleIdentifier{ID: id})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainSale(sale))
}

// Get /v1/sales
// List sales filtered by customer, branch and date range. A `number` query
// parameter short-circuits the listing and looks up that single sale.
func (api *SalesAPI) ListSales(c *gin.Context) {
	if number := c.Query("number"); number != "" {
		sale, err := api.service.GetSaleByNumber(c.Request.Context(), number)
		if err != nil {
			api.responder.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, mapper.SalePage{
			Items: []mapper.Sale{mapper.FromDomainSale(sale)},
			Total: 1,
			Page:  1,
			Size:  1,
		})
		return
	}

	input := saletypes.ListSalesInput{
		Customer: c.Query("customer"),
		Branch:   c.Query("branch"),
	}
	from, ok := api.parseTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := api.parseTimeQuery(c, "to")
	if !ok {
		return
	}
	input.From, input.To = from, to

	page, ok := api.parseIntQuery(c, "page", 1)
	if !ok {
		return
	}
	size, ok := api.parseIntQuery(c, "size", 20)
	if !ok {
		return
	}
	input.Page, input.Size = page, size

	result, err := api.service.ListSales(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromPage(result, page, size))
}

// Put /v1/sales/:saleId
// Replace the desired item set of a sale
func (api *SalesAPI) UpdateSale(c *gin.Context) {
	id, ok := api.parseUUIDParam(c, "saleId")
	if !ok {
		return
	}
	var payload mapper.UpdateSaleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.respondBadRequest(c, err)
		return
	}
	sale, err := api.service.UpdateSale(c.Request.Context(), mapper.ToUpdateSaleInput(id, payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainSale(sale))
}

// Delete /v1/sales/:saleId
// Physically remove a sale
func (api *SalesAPI) DeleteSale(c *gin.Context) {
	id, ok := api.parseUUIDParam(c, "saleId")
	if !ok {
		return
	}
	if err := api.service.DeleteSale(c.Request.Context(), saletypes.SaleIdentifier{ID: id}); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /v1/sales/:saleId/cancel
// Cancel a sale (terminal, items retained)
func (api *SalesAPI) CancelSale(c *gin.Context) {
	id, ok := api.parseUUIDParam(c, "saleId")
	if !ok {
		return
	}
	sale, err := api.service.CancelSale(c.Request.Context(), saletypes.SaleIdentifier{ID: id})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainSale(sale))
}

// Patch /v1/sales/:saleId/items/:itemId
// Set an item's quantity; zero or negative cancels the item
func (api *SalesAPI) UpdateItemQuantity(c *gin.Context) {
	saleID, ok := api.parseUUIDParam(c, "saleId")
	if !ok {
		return
	}
	itemID, ok := api.parseUUIDParam(c, "itemId")
	if !ok {
		return
	}
	var payload mapper.UpdateItemQuantityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.respondBadRequest(c, err)
		return
	}
	input := saletypes.UpdateItemQuantityInput{SaleID: saleID, ItemID: itemID, Quantity: *payload.Quantity}
	sale, err := api.service.UpdateItemQuantity(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainSale(sale))
}

// Post /v1/sales/:saleId/items/:itemId/cancel
// Flag an item as cancelled, retaining it as historical record
func (api *SalesAPI) CancelItem(c *gin.Context) {
	saleID, ok := api.parseUUIDParam(c, "saleId")
	if !ok {
		return
	}
	itemID, ok := api.parseUUIDParam(c, "itemId")
	if !ok {
		return
	}
	input := saletypes.ItemIdentifier{SaleID: saleID, ItemID: itemID}
	sale, err := api.service.CancelItem(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainSale(sale))
}

func (api *SalesAPI) parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		api.respondBadRequest(c, err)
		return uuid.Nil, false
	}
	return id, true
}

func (api *SalesAPI) parseTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, true
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		api.respondBadRequest(c, err)
		return nil, false
	}
	return &ts, true
}

func (api *SalesAPI) parseIntQuery(c *gin.Context, name string, fallback int) (int, bool) {
	value := c.Query(name)
	if value == "" {
		return fallback, true
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		api.respondBadRequest(c, errors.New(name+" must be a positive integer"))
		return 0, false
	}
	return parsed, true
}

func (api *SalesAPI) respondBadRequest(c *gin.Context, err error) {
	api.responder.Respond(c, sharederrors.ErrBadRequest.WithDetail(err.Error()))
}

func mapServiceError(err error) (sharederrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return sharederrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, salesapp.ErrDuplicateSaleNumber), errors.Is(err, ports.ErrConcurrentUpdate):
		return sharederrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, salesapp.ErrInvalidInput):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	default:
		return sharederrors.ProblemDetail{}, false
	}
}
