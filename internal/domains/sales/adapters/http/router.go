package saleshttp

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the sales endpoints under /v1/sales.
func RegisterRoutes(router gin.IRouter, api *SalesAPI) {
	sales := router.Group("/v1/sales")
	sales.POST("", api.CreateSale)
	sales.GET("", api.ListSales)
	sales.GET("/:saleId", api.GetSale)
	sales.PUT("/:saleId", api.UpdateSale)
	sales.DELETE("/:saleId", api.DeleteSale)
	sales.POST("/:saleId/cancel", api.CancelSale)
	sales.PATCH("/:saleId/items/:itemId", api.UpdateItemQuantity)
	sales.POST("/:saleId/items/:itemId/cancel", api.CancelItem)
}
