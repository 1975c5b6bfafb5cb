package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	log "github.com/sirupsen/logrus"
)

// Health reports database liveness plus host CPU and memory usage and the
// number of registered models.
func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	if h.pinger != nil {
		if err := h.pinger.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}

	count, err := h.registry.CountModels(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}

	var cpuUsage float64
	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		cpuUsage = percents[0]
	} else if err != nil {
		log.WithError(err).Warn("cpu usage unavailable")
	}

	var memUsage float64
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		memUsage = vm.UsedPercent
	} else {
		log.WithError(err).Warn("memory usage unavailable")
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"cpu_usage":        cpuUsage,
		"memory_usage":     memUsage,
		"number_of_models": count,
	})
}
