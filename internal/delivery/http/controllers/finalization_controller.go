package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"contestdraw/internal/delivery/http/helpers"
	"contestdraw/internal/delivery/http/middleware"
	"contestdraw/internal/domain"
)

// CloseEventResponse is the data payload for POST /events/{eventID}/close (200).
type CloseEventResponse struct {
	Closed bool `json:"closed"`
}

// CloseEventSuccessResponse is the success response envelope for POST /events/{eventID}/close (200).
type CloseEventSuccessResponse struct {
	Data  CloseEventResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// FinalizeEventSuccessResponse is the success response envelope for POST /events/{eventID}/finalize (200).
type FinalizeEventSuccessResponse struct {
	Data  *domain.FinalizationResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// ListAuditActionsResponse is the data payload for GET /events/{eventID}/audit (200).
type ListAuditActionsResponse struct {
	Items      []*domain.AuditAction  `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListAuditActionsSuccessResponse is the success response envelope for GET /events/{eventID}/audit (200).
type ListAuditActionsSuccessResponse struct {
	Data  ListAuditActionsResponse `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// ReplayAuditActionSuccessResponse is the success response envelope for GET /audit/actions/{actionID}/replay (200).
type ReplayAuditActionSuccessResponse struct {
	Data  *domain.ReplayResult `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

type FinalizationController struct {
	Logger  *slog.Logger
	Service domain.FinalizationService
}

func NewFinalizationController(logger *slog.Logger, svc domain.FinalizationService) *FinalizationController {
	return &FinalizationController{
		Logger:  logger,
		Service: svc,
	}
}

// CloseEvent godoc
// @Summary Close an open event
// @Description Moves an OPEN event to CLOSED and notifies its creator. Closing an event that is not OPEN is a no-op and returns closed=false.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.CloseEventSuccessResponse "data.closed reports whether the event was closed by this call"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (malformed id)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/close [post]
func (c *FinalizationController) CloseEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	closed, err := c.Service.Close(r.Context(), eventID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CloseEventResponse{Closed: closed})
}

// FinalizeEvent godoc
// @Summary Select winners and finalize an event
// @Description Runs the winner selection for a CLOSED event, stores positions, records an audit action and moves the event to FINALIZED. Winners are notified asynchronously.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.FinalizeEventSuccessResponse "data contains the finalized event, seed, winners and audit action id"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (malformed id)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (wrong status, empty roster or concurrent finalization)"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_event (negative winners count)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/finalize [post]
func (c *FinalizationController) FinalizeEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	operatorID, ok := middleware.OperatorIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	result, err := c.Service.Finalize(r.Context(), eventID, operatorID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ListAuditActions godoc
// @Summary List the audit trail of an event
// @Description Returns the audit actions recorded for the event, oldest first, each with its participant snapshot. Use page and page_size query params.
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListAuditActionsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (malformed id)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/audit [get]
func (c *FinalizationController) ListAuditActions(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.AuditTrail(r.Context(), eventID, params)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []*domain.AuditAction{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListAuditActionsResponse{Items: list, Pagination: meta})
}

// ReplayAuditAction godoc
// @Summary Re-run a recorded selection
// @Description Re-runs the selection recorded by an audit action from its stored seed and participant snapshot and reports whether the recorded ranking is reproduced. Only randomized event kinds can be replayed.
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Param actionID path string true "Audit action ID (UUID)"
// @Success 200 {object} controllers.ReplayAuditActionSuccessResponse "data contains the recorded and reproduced rankings"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (malformed id)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (kind cannot be replayed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /audit/actions/{actionID}/replay [get]
func (c *FinalizationController) ReplayAuditAction(w http.ResponseWriter, r *http.Request) {
	actionID, ok := pathUUID(w, r, "actionID")
	if !ok {
		return
	}
	result, err := c.Service.Replay(r.Context(), actionID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// writeServiceError maps domain errors to status codes. Anything unknown is a 500 and is logged.
func (c *FinalizationController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrEmptyRoster),
		errors.Is(err, domain.ErrConcurrentModification):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidWinnersCount):
		helpers.WriteJSONError(w, http.StatusUnprocessableEntity, helpers.ErrCodeInvalidEvent, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
	}
}

// pathUUID reads a UUID path value in canonical form. On a missing or malformed value it
// writes a 400 and reports false; every id column is a Postgres UUID.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing "+name)
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid "+name+": must be a UUID")
		return "", false
	}
	return id.String(), true
}
