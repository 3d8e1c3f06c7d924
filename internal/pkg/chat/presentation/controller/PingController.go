package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PingController answers liveness probes.
type PingController struct{}

func NewPingController() *PingController { return &PingController{} }

func (h *PingController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
