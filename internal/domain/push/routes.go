package push

import "github.com/gin-gonic/gin"

func RegisterRoutes(public, protected *gin.RouterGroup, handler *SubscriptionHandler) {
	public.GET("/push/vapid-public-key", handler.VAPIDPublicKey)

	subs := protected.Group("/push/subscriptions")
	{
		subs.GET("", handler.List)
		subs.POST("", handler.Register)
		subs.DELETE("", handler.Unregister)
	}
}

// RegisterFunctionRoutes mounts the fanout function on a group that already applies CORS and service auth.
func RegisterFunctionRoutes(functions *gin.RouterGroup, handler *FunctionHandler) {
	functions.POST("/push-fanout", handler.Handle)
	functions.OPTIONS("/push-fanout", func(c *gin.Context) {})
}
