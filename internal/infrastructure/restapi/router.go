package restapi

import (
	"net/http"

	"donation_portal/internal/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter настраивает и возвращает экземпляр Gin роутера.
func SetupRouter(h *Handler, allowOrigins []string, zapLogger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(allowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))
	router.Use(ZapLoggerMiddleware(zapLogger.Named("http")))
	router.Use(gin.Recovery())

	// Группа для API v1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/networks", h.ListNetworks)
		v1.GET("/networks/:chainId", h.GetNetwork)
		v1.GET("/networks/:chainId/quote", h.Quote)
		v1.GET("/networks/:chainId/wallets/:account/tokens", h.WalletTokens)
		v1.GET("/networks/:chainId/donations", h.DonationHistory)

		v1.POST("/donations", h.SubmitDonation)
		v1.GET("/donations/confirmation", h.Confirmation)
		v1.GET("/transactions/:hash", h.Transaction)

		v1.GET("/claims/eligibility", h.Eligibility)
		v1.POST("/claims", h.Claim)
	}

	router.GET("/metrics", gin.WrapH(metrics.NewHandler()))
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	return router
}
