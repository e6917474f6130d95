package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/famhubid/famhub/internal/payments"
)

func GatewayMiddleware(registry *payments.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("gateways", registry)
		c.Next()
	}
}

func GetGatewayRegistry(c *gin.Context) *payments.Registry {
	registry, exists := c.Get("gateways")
	if !exists {
		return nil
	}
	return registry.(*payments.Registry)
}

func NotifierMiddleware(notifier payments.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("notifier", notifier)
		c.Next()
	}
}

func GetNotifier(c *gin.Context) payments.Notifier {
	notifier, exists := c.Get("notifier")
	if !exists {
		return nil
	}
	return notifier.(payments.Notifier)
}
