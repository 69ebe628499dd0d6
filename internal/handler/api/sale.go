package api

import (
	"net/http"

	reqdto "bakery-flashsale/internal/handler/dto/request"
	resdto "bakery-flashsale/internal/handler/dto/response"
	"bakery-flashsale/internal/usecase/commands"
	"bakery-flashsale/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SaleHandler struct {
	cmds  commands.SaleCommands
	q     queries.SaleQueries
	stock queries.StockQueries
}

func NewSaleHandler(cmds commands.SaleCommands, q queries.SaleQueries, stock queries.StockQueries) *SaleHandler {
	return &SaleHandler{cmds: cmds, q: q, stock: stock}
}

// @Summary Create flash sale
// @Description Create a sale window with its items. Operators only.
// @Tags sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateSaleRequest true "Create sale request"
// @Success 201 {object} resdto.CreateSaleResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	var req reqdto.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err, "Invalid request format")
		return
	}

	result, err := h.cmds.CreateSale(c.Request.Context(), req.ToCommand())
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.Header("Location", "/api/sales/"+result.SaleID.String())
	c.JSON(http.StatusCreated, resdto.FromCreateSaleResult(result))
}

// @Summary Get flash sale
// @Description Get a sale with its items and current status
// @Tags sales
// @Produce json
// @Param saleId path string true "Sale ID"
// @Success 200 {object} resdto.SaleResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /sales/{saleId} [get]
func (h *SaleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("saleId"))
	if err != nil {
		abortBadRequest(c, err, "Invalid sale ID format")
		return
	}

	view, err := h.q.GetSale(c.Request.Context(), id)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSaleView(view))
}

// @Summary Cancel flash sale
// @Description Close a scheduled or running sale. Pending holds stay committable until they expire.
// @Tags sales
// @Security BearerAuth
// @Param saleId path string true "Sale ID"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /sales/{saleId}/cancel [post]
func (h *SaleHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("saleId"))
	if err != nil {
		abortBadRequest(c, err, "Invalid sale ID format")
		return
	}

	if err := h.cmds.CancelSale(c.Request.Context(), id); err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Sale stock listing
// @Description Stock of every item in a sale. Served from a short-lived cache.
// @Tags stock
// @Produce json
// @Param saleId path string true "Sale ID"
// @Success 200 {object} resdto.SaleStockResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /sales/{saleId}/stock [get]
func (h *SaleHandler) Stock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("saleId"))
	if err != nil {
		abortBadRequest(c, err, "Invalid sale ID format")
		return
	}

	view, err := h.stock.GetSaleStock(c.Request.Context(), id)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSaleStockView(view))
}

// @Summary Item stock
// @Description Live stock of one item after releasing its due holds. Never cached.
// @Tags stock
// @Produce json
// @Param saleId path string true "Sale ID"
// @Param productId path string true "Product ID"
// @Success 200 {object} resdto.StockResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /sales/{saleId}/items/{productId}/stock [get]
func (h *SaleHandler) ItemStock(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("saleId"))
	if err != nil {
		abortBadRequest(c, err, "Invalid sale ID format")
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		abortBadRequest(c, err, "Invalid product ID format")
		return
	}

	view, err := h.stock.GetAvailableStock(c.Request.Context(), saleID, productID)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, resdto.FromStockView(*view))
}
