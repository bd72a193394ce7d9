package booking

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SweepHandler exposes one sweep as an invokable function endpoint.
type SweepHandler struct {
	sweeper *Sweeper
	now     func() time.Time
}

func NewSweepHandler(sweeper *Sweeper) *SweepHandler {
	return &SweepHandler{sweeper: sweeper, now: time.Now}
}

// Handle serves any method on /functions/v1/booking-sweeper.
func (h *SweepHandler) Handle(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusOK)
		return
	}

	deleted, err := h.sweeper.Sweep(c.Request.Context(), h.now())
	if err != nil {
		log.Printf("booking_sweep_error err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"deleted": deleted,
		"message": fmt.Sprintf("Deleted %d expired bookings", deleted),
	})
}

func RegisterFunctionRoutes(functions *gin.RouterGroup, handler *SweepHandler) {
	functions.Any("/booking-sweeper", handler.Handle)
}
