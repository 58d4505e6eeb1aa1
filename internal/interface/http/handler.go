package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/smart-wardrobe/internal/domain/outfit"
	apperrors "github.com/yanqian/smart-wardrobe/pkg/errors"
)

// BreakerReporter exposes the gateway circuit breaker position.
type BreakerReporter interface {
	BreakerState() string
}

// Handler wires the HTTP transport to the outfit controller session.
type Handler struct {
	controller *outfit.Controller
	breaker    BreakerReporter
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(controller *outfit.Controller, breaker BreakerReporter, logger *slog.Logger) *Handler {
	return &Handler{
		controller: controller,
		breaker:    breaker,
		logger:     logger.With("component", "http.handler"),
	}
}

type cityRequest struct {
	City *string `json:"city" binding:"required"`
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=basic smart"`
}

type submitRequest struct {
	City *string `json:"city"`
	Mode *string `json:"mode" binding:"omitempty,oneof=basic smart"`
}

// SetCity replaces the city text held by the session.
func (h *Handler) SetCity(c *gin.Context) {
	var req cityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	h.controller.SetCity(*req.City)
	c.JSON(http.StatusOK, gin.H{"input": h.controller.Input()})
}

// SetMode toggles basic/smart. The held outcome is re-derived, nothing is fetched.
func (h *Handler) SetMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if err := h.controller.SetMode(outfit.Mode(req.Mode)); err != nil {
		abortWithError(c, fromAppError(err, "set_mode_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"input": h.controller.Input(), "view": h.controller.View()})
}

// Submit starts a request cycle from the current input. A body may override
// the city and mode; the overrides are kept only when the query is accepted.
// With ?wait=true the call blocks until the cycle
// settles and answers with the view.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
	}
	query := h.controller.Input()
	if req.Mode != nil {
		query.Mode = outfit.Mode(*req.Mode)
	}
	if req.City != nil {
		query.City = *req.City
	}

	ticket, err := h.controller.SubmitInput(query)
	if err != nil {
		abortWithError(c, fromAppError(err, "submit_failed"))
		return
	}

	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		if _, err := h.controller.Wait(c.Request.Context(), ticket.Seq); err != nil {
			abortWithError(c, NewHTTPError(http.StatusGatewayTimeout, "wait_aborted", "request ended before the cycle settled", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"ticket": ticket, "view": h.controller.View()})
		return
	}

	c.JSON(http.StatusAccepted, ticket)
}

// View renders the current view model.
func (h *Handler) View(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.View())
}

// StreamView pushes the view as Server-Sent Events on every change. The
// stream ends once a settled view has been sent unless ?follow=true.
func (h *Handler) StreamView(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}
	follow, _ := strconv.ParseBool(c.Query("follow"))
	// A followed stream outlives the server WriteTimeout.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("stream write deadline not cleared", "error", err)
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ctx := c.Request.Context()
	for {
		view, changed := h.controller.Observe()
		payload, err := json.Marshal(view)
		if err != nil {
			h.logger.Error("marshal view failed", "error", err)
			return
		}
		c.Writer.Write([]byte("data: "))
		c.Writer.Write(payload)
		c.Writer.Write([]byte("\n\n"))
		flusher.Flush()

		if !follow && view.Phase == outfit.PhaseSettled {
			return
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return
		}
	}
}

// State returns the raw controller snapshot for diagnostics.
func (h *Handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"input": h.controller.Input(), "state": h.controller.Snapshot()})
}

// Healthz reports liveness with breaker position and cycle tallies.
func (h *Handler) Healthz(c *gin.Context) {
	counters := h.controller.Counters()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"breaker":  h.breaker.BreakerState(),
		"cycles":   counters,
		"inFlight": counters.InFlight(),
	})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := apperrors.As(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
