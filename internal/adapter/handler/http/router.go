package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/verdora/ordercore/internal/adapter/config"
	"github.com/verdora/ordercore/internal/adapter/metrics"
	"github.com/verdora/ordercore/internal/core/port"
)

type Router struct {
	*gin.Engine
}

func NewRouter(
	conf *config.HTTP,
	tokenService port.TokenService,
	m *metrics.Metrics,
	orderHandler *OrderHandler,
	paymentHandler *PaymentHandler,
	adminHandler *AdminHandler) (*Router, error) {

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(m.RequestTimer())

	// Swagger
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ping", func(ctx *gin.Context) { ctx.String(200, "pong") })

	api := router.Group("/api")
	{
		payments := api.Group("/payments")
		{
			payments.Use(authCheck(tokenService))
			payments.POST("/order", paymentHandler.CreatePaymentOrder)
			payments.POST("/verify", paymentHandler.VerifyPayment)
		}

		orders := api.Group("/orders")
		{
			orders.Use(authCheck(tokenService))
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id/cancel", orderHandler.CancelOrder)
		}

		admin := api.Group("/admin")
		{
			admin.Use(authCheck(tokenService), adminCheck())
			admin.GET("/orders", adminHandler.ListOrders)
			admin.PUT("/orders/:id", adminHandler.UpdateOrderStatus)
			admin.GET("/dashboard", adminHandler.Dashboard)
		}
	}

	return &Router{router}, nil
}

// Serve starts the HTTP server
func (r *Router) Serve(listenAddr string) error {
	return r.Run(listenAddr)
}
