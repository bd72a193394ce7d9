package notification

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the caller-scoped notification endpoints on an authenticated group.
func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	notifGroup := protected.Group("/notifications")
	{
		notifGroup.GET("", handler.GetNotifications)
		notifGroup.GET("/unread-count", handler.GetUnreadCount)
		notifGroup.PATCH("/:id/read", handler.MarkAsRead)
		notifGroup.POST("/read-all", handler.MarkAllAsRead)
	}
}

// RegisterAdminRoutes mounts producer endpoints on an admin-only group.
func RegisterAdminRoutes(admin *gin.RouterGroup, handler *Handler) {
	admin.POST("/notifications", handler.Create)
	admin.POST("/notifications/broadcast", handler.Broadcast)
}
