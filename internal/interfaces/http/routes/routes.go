// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/config"
	"github.com/your-org/mesa-pedidos/internal/domain/catalog"
	"github.com/your-org/mesa-pedidos/internal/domain/order"
	"github.com/your-org/mesa-pedidos/internal/domain/popularity"
	"github.com/your-org/mesa-pedidos/internal/domain/visit"
	"github.com/your-org/mesa-pedidos/internal/interfaces/http/handlers"
)

// Dependencies holds what the handlers are built from
type Dependencies struct {
	Config   *config.Config
	Log      logrus.FieldLogger
	Visits   *visit.Factory
	Catalog  catalog.Source
	Ranking  *popularity.Ranking
	Sink     order.Sink
	Receipts handlers.Receipts
}

// SetupTableLinkRoutes sets up the QR code entry point outside the API
func SetupTableLinkRoutes(rg *gin.RouterGroup, deps Dependencies) {
	tableHandler := handlers.NewTableHandler(deps.Visits, deps.Config.Restaurant.MaxTable, deps.Log)

	rg.GET("/mesa/:id", tableHandler.Acquire)
}

// SetupTableRoutes sets up the table binding routes
func SetupTableRoutes(rg *gin.RouterGroup, deps Dependencies) {
	tableHandler := handlers.NewTableHandler(deps.Visits, deps.Config.Restaurant.MaxTable, deps.Log)

	tables := rg.Group("/table")
	{
		tables.GET("", tableHandler.GetTable)
		tables.PUT("", tableHandler.SetTable)
		tables.DELETE("", tableHandler.ClearTable)
	}
}

// SetupCatalogRoutes sets up the menu routes
func SetupCatalogRoutes(rg *gin.RouterGroup, deps Dependencies) {
	catalogHandler := handlers.NewCatalogHandler(deps.Catalog, deps.Log)
	popularHandler := handlers.NewPopularHandler(deps.Ranking, deps.Config.Restaurant.PopularCount, deps.Log)

	menu := rg.Group("/catalog")
	{
		menu.GET("", catalogHandler.GetMenu)
		menu.GET("/products/:id", catalogHandler.GetProduct)
	}
	rg.GET("/popular", popularHandler.GetPopular)
}

// SetupCartRoutes sets up the cart routes
func SetupCartRoutes(rg *gin.RouterGroup, deps Dependencies) {
	cartHandler := handlers.NewCartHandler(deps.Visits, deps.Catalog, deps.Log)

	cart := rg.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/items", cartHandler.AddItem)
		cart.PUT("/items/:id", cartHandler.UpdateItem)
		cart.DELETE("/items/:id", cartHandler.RemoveItem)
		cart.POST("/selections", cartHandler.AddSelection)
	}
}

// SetupOrderRoutes sets up checkout and order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, deps Dependencies) {
	orderHandler := handlers.NewOrderHandler(deps.Visits, deps.Sink, deps.Receipts, deps.Log)

	rg.POST("/checkout", orderHandler.Checkout)

	orders := rg.Group("/orders")
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:id/receipt", orderHandler.GetReceipt)
	}
}

// SetupRoutes sets up every API route
func SetupRoutes(rg *gin.RouterGroup, deps Dependencies) {
	SetupTableRoutes(rg, deps)
	SetupCatalogRoutes(rg, deps)
	SetupCartRoutes(rg, deps)
	SetupOrderRoutes(rg, deps)
}
