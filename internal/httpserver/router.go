package httpserver

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/service/auth"
	productsvc "storefront/internal/service/product"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProductService interface {
	List(ctx context.Context, q productsvc.ListQuery) (productsvc.ListResult, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in productsvc.CreateInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.UpdateInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CartService interface {
	GetCart(ctx context.Context, subjectID string) domain.Cart
	AddItem(ctx context.Context, subjectID, productID string, quantity int) (domain.Cart, error)
	UpdateItem(ctx context.Context, subjectID, productID string, quantity int) (domain.Cart, error)
	RemoveItem(ctx context.Context, subjectID, productID string) (domain.Cart, domain.CartItem, error)
}

type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Pinger reports whether the cart snapshot backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	ProductSvc ProductService
	CartSvc    CartService
	Verifier   TokenVerifier
	Snapshots  Pinger
}

// Options tunes the edge middleware. A zero RateLimitRPS disables rate
// limiting.
type Options struct {
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// buildRouter wires routes for the API.
func buildRouter(logger *logrus.Logger, deps Deps, opts Options) (*gin.Engine, error) {
	if deps.ProductSvc == nil || deps.CartSvc == nil || deps.Verifier == nil {
		return nil, errors.New("product service, cart service and verifier are required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		gin.LoggerWithWriter(logger.Writer()),
		gin.Recovery(),
		requestIDMiddleware(),
		bodyLimitMiddleware(maxBodyBytes),
		metrics.Middleware(),
		cors.New(corsConfig(opts.CORSAllowedOrigins)),
	)
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		router.Use(newRateLimiter(opts.RateLimitRPS, burst, logger).Handler())
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Snapshots))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	requireAuth := authMiddleware(deps.Verifier, logger)

	products := router.Group("/products")
	products.GET("", listProductsHandler(deps.ProductSvc, logger))
	products.GET("/:id", getProductHandler(deps.ProductSvc, logger))
	products.POST("", requireAuth, createProductHandler(deps.ProductSvc, logger))
	products.PUT("/:id", requireAuth, updateProductHandler(deps.ProductSvc, logger))
	products.DELETE("/:id", requireAuth, deleteProductHandler(deps.ProductSvc, logger))

	cart := router.Group("/cart", requireAuth)
	cart.GET("", getCartHandler(deps.CartSvc, logger))
	cart.POST("", addCartItemHandler(deps.CartSvc, logger))
	cart.PUT("", updateCartItemHandler(deps.CartSvc, logger))
	cart.DELETE("", removeCartItemHandler(deps.CartSvc, logger))

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	cfg.ExposeHeaders = []string{"X-Total-Count", "X-Cart-Items", requestIDHeader}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
