package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/travel-planner/internal/domain/planner"
	apperrors "github.com/yanqian/travel-planner/pkg/errors"
	"github.com/yanqian/travel-planner/pkg/metrics"
)

// Handler wires the HTTP transport to the planner.
type Handler struct {
	plannerSvc planner.Service
	counters   *metrics.Counters
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(plannerSvc planner.Service, counters *metrics.Counters, logger *slog.Logger) *Handler {
	return &Handler{
		plannerSvc: plannerSvc,
		counters:   counters,
		logger:     logger.With("component", "http.handler"),
	}
}

// Search accepts the query either as URL parameters (GET) or a JSON body (POST).
func (h *Handler) Search(c *gin.Context) {
	var (
		req planner.Request
		err error
	)
	if c.Request.Method == http.MethodGet {
		err = c.ShouldBindQuery(&req)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.plannerSvc.Search(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, searchError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Metrics returns a snapshot of the process counters.
func (h *Handler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"counters": h.counters.Snapshot()})
}

func searchError(err error) *HTTPError {
	switch {
	case apperrors.IsKind(err, apperrors.KindValidation):
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.IsCode(err, "location_lookup_failed"):
		return NewHTTPError(http.StatusBadGateway, "location_lookup_failed", "unable to look up locations", err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "search_failed", "search failed", err)
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
