package handlers

import (
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/plantsforlife/storefront/internal/auth"
	"github.com/plantsforlife/storefront/internal/aws"
	"github.com/plantsforlife/storefront/internal/cart"
	"github.com/plantsforlife/storefront/internal/catalog"
	"github.com/plantsforlife/storefront/internal/live"
	"github.com/plantsforlife/storefront/internal/orders"
	"github.com/plantsforlife/storefront/internal/profile"
	"github.com/plantsforlife/storefront/internal/validation"
)

// HandlerConfig groups dependencies for the API handlers.
type HandlerConfig struct {
	DynamoDBClient  aws.DynamoDBAPI
	SQSClient       aws.SQSAPI
	Metrics         *aws.Metrics
	ProductsTable   string
	OrdersTable     string
	ProfilesTable   string
	QueueURL        string
	JWTSecret       string
	RestockOnCancel bool
}

// deps is the wired-up dependency set shared by the route groups.
type deps struct {
	cfg       HandlerConfig
	validate  *validatorv10.Validate
	catalog   *catalog.Store
	orders    *orders.Store
	profiles  *profile.Store
	carts     *cart.Registry
	hub       *live.Hub
	publisher *aws.Publisher
}

// RegisterRoutes wires stores, the live hub and the auth middleware, and
// registers every route group on the engine.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) *live.Hub {
	d := &deps{
		cfg:       cfg,
		validate:  validation.New(),
		catalog:   catalog.NewStore(cfg.DynamoDBClient, cfg.ProductsTable),
		orders:    orders.NewStore(cfg.DynamoDBClient, cfg.OrdersTable, cfg.ProductsTable),
		profiles:  profile.NewStore(cfg.DynamoDBClient, cfg.ProfilesTable),
		carts:     cart.NewRegistry(),
		hub:       live.NewHub(),
		publisher: aws.NewPublisher(cfg.SQSClient, cfg.QueueURL),
	}

	verifier := &auth.Verifier{Secret: cfg.JWTSecret}

	r.GET("/products", d.listProducts)

	authed := r.Group("/", auth.Middleware(verifier))
	{
		authed.GET("/cart", d.getCart)
		authed.POST("/cart/items", d.addCartItem)
		authed.PATCH("/cart/items/:id", d.setCartItemQuantity)
		authed.DELETE("/cart/items/:id", d.removeCartItem)
		authed.DELETE("/cart", d.clearCart)

		authed.POST("/orders", d.placeOrder)
		authed.GET("/orders", d.listMyOrders)
		authed.POST("/orders/:id/cancel", d.cancelOrder)
		authed.GET("/orders/stream", d.streamOrders)

		authed.GET("/profile", d.getProfile)
		authed.PUT("/profile", d.saveProfile)
	}

	admin := r.Group("/", auth.Middleware(verifier), auth.RequireAdmin())
	{
		admin.POST("/products", d.createProduct)
		admin.PUT("/products/:id", d.updateProduct)
		admin.DELETE("/products/:id", d.deleteProduct)
		admin.GET("/orders/all", d.listAllOrders)
		admin.PUT("/orders/:id/status", d.updateOrderStatus)
	}

	return d.hub
}
