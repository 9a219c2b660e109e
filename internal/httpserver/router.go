package httpserver

import (
	"io"
	"log"

	"storefront/internal/feed"
	"storefront/internal/notify"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	customersvc "storefront/internal/service/customer"
	productsvc "storefront/internal/service/product"
	ticketsvc "storefront/internal/service/ticket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries the services the handlers dispatch to.
type Deps struct {
	ProductSvc  *productsvc.Service
	CartSvc     *cartsvc.Service
	CheckoutSvc *checkoutsvc.Service
	TicketSvc   *ticketsvc.Service
	CustomerSvc *customersvc.Service
	Feed        *feed.Hub
	Mailer      *notify.Mailer
}

type api struct {
	Deps
	logger *log.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(corsOrigins) == 1 && corsOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = corsOrigins
		corsCfg.AllowCredentials = true
	}
	corsCfg.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	a := &api{Deps: deps, logger: logger}

	sessions := router.Group("/api/sessions")
	{
		sessions.POST("/register", a.register)
		sessions.POST("/login", a.login)
		sessions.POST("/logout", a.authenticate(), a.logout)
		sessions.GET("/current", a.authenticate(), a.current)
	}

	products := router.Group("/api/products")
	{
		products.GET("", a.listProducts)
		products.GET("/stream", a.streamProducts)
		products.GET("/:pid", a.getProduct)
		products.POST("", a.authenticate(), a.requireAdmin(), a.createProduct)
		products.PUT("/:pid", a.authenticate(), a.requireAdmin(), a.updateProduct)
		products.DELETE("/:pid", a.authenticate(), a.requireAdmin(), a.deleteProduct)
	}

	carts := router.Group("/api/carts")
	{
		carts.POST("", a.createCart)
		carts.GET("/:cid", a.getCart)
		owned := carts.Group("/:cid", a.authenticate(), a.requireUser(), a.requireCartOwner())
		{
			owned.POST("/products/:pid", a.addCartLine)
			owned.PUT("/products/:pid", a.setCartLineQuantity)
			owned.DELETE("/products/:pid", a.removeCartLine)
			owned.PUT("", a.replaceCartLines)
			owned.DELETE("", a.clearCart)
			owned.POST("/purchase", a.purchaseCart)
		}
	}

	tickets := router.Group("/api/tickets", a.authenticate())
	{
		tickets.GET("", a.listOwnTickets)
		tickets.GET("/:tid", a.getTicket)
		tickets.GET("/code/:code", a.getTicketByCode)
		tickets.DELETE("/:tid", a.requireAdmin(), a.deleteTicket)
	}

	return router
}
