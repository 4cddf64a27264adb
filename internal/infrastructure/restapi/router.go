package restapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter wires every handler group onto a gin engine with the standard
// Logger and Recovery middleware plus permissive CORS.
func SetupRouter(
	resolutionHandler *ResolutionHandler,
	nameHandler *NameHandler,
	registrarHandler *RegistrarHandler,
) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/resolve/:name", resolutionHandler.ResolveHandler)
		v1.POST("/resolve/batch", resolutionHandler.BatchResolveHandler)
		v1.GET("/resolutions/:name", resolutionHandler.ResolveGloballyHandler)
		v1.GET("/reverse/:address", resolutionHandler.ReverseResolveHandler)
		v1.POST("/reverse/batch", resolutionHandler.BatchReverseResolveHandler)
		v1.GET("/verify/:name", resolutionHandler.VerifyResolutionHandler)

		v1.GET("/networks", nameHandler.NetworksHandler)
		v1.PUT("/networks/current", nameHandler.SetNetworkHandler)

		v1.GET("/gas-estimates", registrarHandler.GasEstimatesHandler)
		v1.POST("/names/batch/availability", registrarHandler.BatchAvailabilityHandler)
		v1.POST("/names/batch/cost", registrarHandler.BatchCostsHandler)
		v1.POST("/names/batch/register", registrarHandler.BulkRegisterHandler)
		v1.POST("/names/batch/renew", registrarHandler.BulkRenewHandler)

		names := v1.Group("/names/:name")
		{
			names.GET("", nameHandler.DetailsHandler)
			names.GET("/status", nameHandler.StatusHandler)
			names.GET("/validate", nameHandler.ValidateHandler)
			names.GET("/history", nameHandler.HistoryHandler)
			names.GET("/subdomains", nameHandler.SubdomainsHandler)
			names.GET("/activity", nameHandler.ActivityHandler)

			names.GET("/availability", registrarHandler.AvailabilityHandler)
			names.GET("/cost", registrarHandler.CostHandler)
			names.POST("/register", registrarHandler.RegisterHandler)
			names.POST("/renew", registrarHandler.RenewHandler)
			names.POST("/transfer", registrarHandler.TransferHandler)
			names.POST("/address", registrarHandler.SetAddressHandler)
			names.POST("/text", registrarHandler.SetTextHandler)
			names.POST("/contenthash", registrarHandler.SetContenthashHandler)
			names.POST("/subdomains", registrarHandler.CreateSubdomainHandler)
		}

		v1.GET("/watch", nameHandler.WatchedHandler)
		v1.POST("/watch/:name", nameHandler.WatchHandler)
		v1.DELETE("/watch/:name", nameHandler.UnwatchHandler)
	}

	return router
}
