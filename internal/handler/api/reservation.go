package api

import (
	"net/http"

	"bakery-flashsale/internal/domain/reservation"
	reqdto "bakery-flashsale/internal/handler/dto/request"
	resdto "bakery-flashsale/internal/handler/dto/response"
	"bakery-flashsale/internal/handler/middleware"
	"bakery-flashsale/internal/pkg/errs"
	"bakery-flashsale/internal/usecase/commands"
	"bakery-flashsale/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerIdempotencyKey = "Idempotency-Key"

var errInvalidIdempotencyKey = errs.New("invalid idempotency key format")

type ReservationHandler struct {
	cmds   commands.ReservationCommands
	expiry commands.ExpiryCommands
	q      queries.ReservationQueries
}

func NewReservationHandler(cmds commands.ReservationCommands, expiry commands.ExpiryCommands, q queries.ReservationQueries) *ReservationHandler {
	return &ReservationHandler{cmds: cmds, expiry: expiry, q: q}
}

// @Summary Reserve flash sale stock
// @Description Place a time-limited hold on sale stock. A retried request with the same Idempotency-Key returns the original hold.
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "UUID identifying the request"
// @Param request body reqdto.ReserveRequest true "Reserve request"
// @Success 201 {object} resdto.ReserveResponse
// @Success 200 {object} resdto.ReserveResponse "replayed"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /reservations [post]
func (h *ReservationHandler) Reserve(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	idempotencyKey, err := parseIdempotencyKey(c)
	if err != nil {
		abortBadRequest(c, err, "Idempotency-Key must be a UUID")
		return
	}

	var req reqdto.ReserveRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		abortBadRequest(c, bindErr, "Invalid request format")
		return
	}

	result, err := h.cmds.Reserve(c.Request.Context(), req.ToCommand(actor.UserID, idempotencyKey))
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.Header("Location", "/api/reservations/"+result.Reservation.ID.String())
	c.JSON(status, resdto.FromReserveResult(result))
}

// @Summary Get reservation
// @Description Get one hold. Visible to its owner and to the checkout service.
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, err, "Invalid reservation ID format")
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	view, err := h.q.GetReservation(c.Request.Context(), id, actor)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Cancel reservation
// @Description Release an own pending hold. A hold that already expired answers 200 with already_released=true.
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.CancelResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, err, "Invalid reservation ID format")
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	result, err := h.cmds.Cancel(c.Request.Context(), id, actor)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCancelResult(result))
}

// @Summary Confirm purchase
// @Description Commit a pending hold into sold stock. Called by the checkout service after payment.
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /reservations/{id}/confirm [post]
func (h *ReservationHandler) Confirm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, err, "Invalid reservation ID format")
		return
	}

	summary, err := h.cmds.ConfirmPurchase(c.Request.Context(), id)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationSummary(*summary))
}

// @Summary Release reservation
// @Description Return any pending hold to stock on behalf of its owner, e.g. for a stuck checkout.
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /reservations/{id}/release [post]
func (h *ReservationHandler) Release(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, err, "Invalid reservation ID format")
		return
	}

	summary, err := h.expiry.ReleaseHold(c.Request.Context(), id, reservation.ReasonCancelled)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationSummary(*summary))
}

// @Summary List own holds on an item
// @Description List the caller's pending holds on one sale item that have not passed their deadline.
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param saleId path string true "Sale ID"
// @Param productId path string true "Product ID"
// @Success 200 {object} resdto.ReservationListResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /sales/{saleId}/items/{productId}/reservations [get]
func (h *ReservationHandler) ListOutstanding(c *gin.Context) {
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
	actor, ok := middleware.GetActor(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	views, err := h.q.ListOutstanding(c.Request.Context(), saleID, productID, actor)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, resdto.FromReservationViews(views))
}

// parseIdempotencyKey returns nil when the header is absent.
func parseIdempotencyKey(c *gin.Context) (*uuid.UUID, error) {
	keyStr := c.GetHeader(headerIdempotencyKey)
	if keyStr == "" {
		return nil, nil
	}

	key, err := uuid.Parse(keyStr)
	if err != nil || key == uuid.Nil {
		return nil, errInvalidIdempotencyKey
	}
	return &key, nil
}
