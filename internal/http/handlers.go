package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quantumauth-io/token-session-client/internal/operations"
	"github.com/quantumauth-io/token-session-client/internal/session"
	"github.com/quantumauth-io/token-session-client/internal/tokenerr"
)

// Operations are the workflows a trigger can start.
type Operations interface {
	Connect(ctx context.Context) operations.Outcome
	FetchAddress(ctx context.Context) operations.Outcome
	FetchBalance(ctx context.Context) operations.Outcome
	Mint(ctx context.Context) operations.Outcome
	Transfer(ctx context.Context) operations.Outcome
	State() session.Snapshot
}

type Handler struct {
	ops     Operations
	version string
}

func NewHandler(ops Operations, version string) *Handler {
	return &Handler{ops: ops, version: version}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

func (h *Handler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, h.ops.State())
}

func (h *Handler) Connect(c *gin.Context) {
	respond(c, h.ops.Connect(c.Request.Context()))
}

func (h *Handler) FetchAddress(c *gin.Context) {
	respond(c, h.ops.FetchAddress(c.Request.Context()))
}

func (h *Handler) FetchBalance(c *gin.Context) {
	respond(c, h.ops.FetchBalance(c.Request.Context()))
}

func (h *Handler) Mint(c *gin.Context) {
	respond(c, h.ops.Mint(c.Request.Context()))
}

func (h *Handler) Transfer(c *gin.Context) {
	respond(c, h.ops.Transfer(c.Request.Context()))
}

func respond(c *gin.Context, out operations.Outcome) {
	c.JSON(statusFor(out), out)
}

func statusFor(out operations.Outcome) int {
	if out.Success {
		return http.StatusOK
	}
	switch out.Kind {
	case tokenerr.KindPrecondition:
		return http.StatusConflict
	case tokenerr.KindValidation, tokenerr.KindConversion:
		return http.StatusUnprocessableEntity
	case tokenerr.KindAssetNotFound:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
