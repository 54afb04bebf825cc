package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/plantsforlife/storefront/internal/aws"
	"github.com/plantsforlife/storefront/internal/catalog"
	"github.com/plantsforlife/storefront/internal/handlers"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(r, cfg)

	return r
}

func main() {
	ctx := context.Background()
	clients, err := aws.NewAWSClients(ctx)

	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	cfg := handlers.HandlerConfig{
		DynamoDBClient:  clients.DynamoDB,
		SQSClient:       clients.SQS,
		Metrics:         aws.NewMetrics(clients.CloudWatch, os.Getenv("APP_ID")),
		ProductsTable:   os.Getenv("PRODUCTS_TABLE"),
		OrdersTable:     os.Getenv("ORDERS_TABLE"),
		ProfilesTable:   os.Getenv("PROFILES_TABLE"),
		QueueURL:        os.Getenv("ORDERS_QUEUE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		RestockOnCancel: os.Getenv("RESTOCK_ON_CANCEL") == "true",
	}

	// one-time starter catalog; the sentinel write makes this safe to run
	// on every cold start
	catalogStore := catalog.NewStore(cfg.DynamoDBClient, cfg.ProductsTable)
	seeded, err := catalogStore.SeedIfEmpty(ctx)
	if err != nil {
		log.Printf("catalog seeding failed: %v", err)
	} else if seeded {
		log.Printf("seeded starter catalog")
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		// the adapter handles proxying; use adapter.ProxyWithContext for proper context propagation
		return adapter.ProxyWithContext(ctx, req)
	})
}
