package handler

import (
	"errors"
	"net/http"
	"strconv"

	"makepri/internal/apierror"
	"makepri/internal/dto"
	"makepri/internal/middleware"
	"makepri/internal/model"
	"makepri/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CashHandler struct{ svc service.CashService }

func NewCashHandler(svc service.CashService) *CashHandler { return &CashHandler{svc: svc} }

// cashErrorStatus maps the cash error taxonomy to HTTP statuses so clients
// can distinguish "fix your input" from "your view is stale".
func cashErrorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrSessionAlreadyOpen),
		errors.Is(err, model.ErrSessionClosed),
		errors.Is(err, model.ErrWithdrawalExceedsBalance):
		return http.StatusConflict
	case errors.Is(err, model.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrMissingDescription):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// Open godoc
// @Summary Open a cash session for a drawer
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Opening data"
// @Success 201 {object} dto.CashSessionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cash/open [post]
func (h *CashHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Open(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(cashErrorStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegisterMovement godoc
// @Summary Register a manual withdrawal or supply
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CashMovementRequest true "Movement data"
// @Success 200 {object} dto.CashSessionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cash/movements [post]
func (h *CashHandler) RegisterMovement(c *gin.Context) {
	var req dto.CashMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.RegisterMovement(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(cashErrorStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Close godoc
// @Summary Close a session with the counted amount
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CloseSessionRequest true "Counted amount"
// @Success 200 {object} dto.CashSessionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cash/close [post]
func (h *CashHandler) Close(c *gin.Context) {
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Close(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(cashErrorStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSession returns the full report of one session, ledger included.
func (h *CashHandler) GetSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.GetSession(c.Request.Context(), id)
	if err != nil {
		c.JSON(cashErrorStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Active returns the open session for a drawer.
func (h *CashHandler) Active(c *gin.Context) {
	drawer, err := strconv.Atoi(c.Param("drawer"))
	if err != nil || drawer < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("invalid drawer"))
		return
	}
	resp, err := h.svc.Active(c.Request.Context(), drawer)
	if err != nil {
		c.JSON(cashErrorStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SuggestedFloat returns the advisory opening float for a drawer.
func (h *CashHandler) SuggestedFloat(c *gin.Context) {
	drawer, err := strconv.Atoi(c.Param("drawer"))
	if err != nil || drawer < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("invalid drawer"))
		return
	}
	resp, err := h.svc.SuggestedFloat(c.Request.Context(), drawer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History returns a paginated list of sessions.
func (h *CashHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.svc.ListSessions(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
