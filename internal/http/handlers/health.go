package handlers

import "github.com/gin-gonic/gin"

type HealthHandler struct {
	pingDB    func() error
	pingRedis func() error
}

// pings may be nil when the backing service is not configured.
func NewHealthHandler(pingDB, pingRedis func() error) *HealthHandler {
	return &HealthHandler{pingDB: pingDB, pingRedis: pingRedis}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	deps := gin.H{}
	ready := true

	if h.pingDB != nil {
		if err := h.pingDB(); err != nil {
			deps["db"] = "down"
			ready = false
		} else {
			deps["db"] = "ok"
		}
	}

	if h.pingRedis != nil {
		if err := h.pingRedis(); err != nil {
			deps["redis"] = "down"
			ready = false
		} else {
			deps["redis"] = "ok"
		}
	}

	if !ready {
		ctx.JSON(503, gin.H{"status": "not_ready", "deps": deps})
		return
	}

	ctx.JSON(200, gin.H{"status": "ready", "deps": deps})
}
