package server

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/cardrail/cardrail-api/docs" // This will be generated
	"github.com/cardrail/cardrail-api/internal/auth"
	"github.com/cardrail/cardrail-api/internal/chain"
	"github.com/cardrail/cardrail-api/internal/client/bundler"
	"github.com/cardrail/cardrail-api/internal/client/prices"
	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/handlers"
	"github.com/cardrail/cardrail-api/internal/logger"
	"github.com/cardrail/cardrail-api/internal/services"
	"github.com/cardrail/cardrail-api/internal/venues"
	"github.com/cardrail/cardrail-api/internal/venues/uniswapv2"
	"github.com/cardrail/cardrail-api/internal/venues/uniswapv3"
	"github.com/cardrail/cardrail-api/internal/workers"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handler Definitions
var (
	cardHandler      *handlers.CardHandler
	cardStackHandler *handlers.CardStackHandler
	executionHandler *handlers.ExecutionHandler
	accountHandler   *handlers.AccountHandler
	networkHandler   *handlers.NetworkHandler
	tokenHandler     *handlers.TokenHandler
	healthHandler    *handlers.HealthHandler

	executionProcessor *workers.ExecutionProcessor
	bundlerClient      bundler.Submitter

	executionService *services.ExecutionService
	stackService     *services.CardStackService

	// Database
	dbQueries *db.Queries
)

// uniswapV2Routers are the canonical V2 router deployments per chain.
var uniswapV2Routers = map[int64]common.Address{
	1:     common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"),
	8453:  common.HexToAddress("0x4752ba5DBc23f44D87826276BF6Fd6b1C372aD24"),
	42161: common.HexToAddress("0x4752ba5DBc23f44D87826276BF6Fd6b1C372aD24"),
}

// uniswapV3Deployments are the canonical V3 router + quoter pairs per chain.
var uniswapV3Deployments = map[int64]uniswapv3.Deployment{
	1: {
		Router: common.HexToAddress("0xE592427A0AEce92De3Edee1F18E0157C05861564"),
		Quoter: common.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e"),
	},
	8453: {
		Router: common.HexToAddress("0x2626664c2603336E57B271c5C0b26F421741e481"),
		Quoter: common.HexToAddress("0x3d4e44Eb1374240CE5F1B871ab261CD16335B76a"),
	},
	42161: {
		Router: common.HexToAddress("0xE592427A0AEce92De3Edee1F18E0157C05861564"),
		Quoter: common.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e"),
	},
}

func InitializeHandlers() {
	// Get database connection string from environment
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL environment variable is required")
	}

	// Create a connection pool using pgxpool
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		logger.Fatal("Unable to parse database connection string", zap.Error(err))
	}

	// Configure the connection pool
	poolConfig.MaxConns = 20
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	// Create the connection pool
	connPool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Fatal("Unable to create connection pool", zap.Error(err))
	}

	// Create queries instance with the connection pool
	dbQueries = db.New(connPool)

	agentSmartWalletAddress := os.Getenv("AGENT_SMART_WALLET_ADDRESS")
	if agentSmartWalletAddress == "" {
		logger.Fatal("AGENT_SMART_WALLET_ADDRESS environment variable is required")
	}
	if !handlers.IsAddressValid(agentSmartWalletAddress) {
		logger.Fatal("AGENT_SMART_WALLET_ADDRESS is not a valid address")
	}

	// Initialize the bundler client; every execution goes through it.
	bundlerURL := os.Getenv("BUNDLER_URL")
	if bundlerURL == "" {
		logger.Fatal("BUNDLER_URL environment variable is required")
	}
	bundlerClient, err = bundler.NewClient(bundler.Config{
		BaseURL: bundlerURL,
		APIKey:  os.Getenv("BUNDLER_API_KEY"),
	})
	if err != nil {
		logger.Fatal("Unable to create bundler client", zap.Error(err))
	}

	// Chain reader multiplexes RPC connections from the networks table.
	chainReader := chain.NewRPCClient(dbQueries)

	// Swap venues. Routers are canonical deployments; the registry order
	// decides which venue wins a quote tie.
	registry := venues.NewRegistry(
		uniswapv3.New(chainReader, uniswapV3Deployments),
		uniswapv2.New(chainReader, uniswapV2Routers),
	)

	// Smart account factory, shared across supported chains.
	factoryAddr := os.Getenv("SMART_ACCOUNT_FACTORY_ADDRESS")
	initCodeHash := os.Getenv("SMART_ACCOUNT_INIT_CODE_HASH")
	if factoryAddr == "" || initCodeHash == "" {
		logger.Fatal("SMART_ACCOUNT_FACTORY_ADDRESS and SMART_ACCOUNT_INIT_CODE_HASH environment variables are required")
	}
	if !handlers.IsAddressValid(factoryAddr) {
		logger.Fatal("SMART_ACCOUNT_FACTORY_ADDRESS is not a valid address")
	}
	factories := make(map[int64]services.AccountFactory, len(uniswapV3Deployments))
	for chainID := range uniswapV3Deployments {
		factories[chainID] = services.AccountFactory{
			Factory:      common.HexToAddress(factoryAddr),
			InitCodeHash: common.HexToHash(initCodeHash),
		}
	}

	// Activity events also fan out to SQS when a queue is configured.
	var sqsClient services.SQSPublisher
	activityQueueURL := os.Getenv("ACTIVITY_QUEUE_URL")
	if activityQueueURL != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			logger.Fatal("Unable to load AWS config", zap.Error(err))
		}
		sqsClient = sqs.NewFromConfig(awsCfg)
	}
	activityService := services.NewActivityService(dbQueries, sqsClient, activityQueueURL)

	// Partial execution notices go out by email when Resend is configured.
	notificationService := services.NewNotificationService(
		os.Getenv("RESEND_API_KEY"),
		os.Getenv("NOTIFY_FROM_EMAIL"),
		os.Getenv("NOTIFY_FROM_NAME"),
		os.Getenv("SUPPORT_URL"),
	)

	delegationService := services.NewDelegationService(dbQueries, registry)
	limitService := services.NewSpendingLimitService(dbQueries)
	quoteService := services.NewQuoteService(dbQueries, registry, chainReader)
	cardService := services.NewCardService(dbQueries, delegationService, activityService)
	stackService = services.NewCardStackService(dbQueries, activityService)
	accountService := services.NewAccountService(dbQueries, chainReader, factories)
	executionService = services.NewExecutionService(
		dbQueries,
		limitService,
		quoteService,
		bundlerClient,
		activityService,
		notificationService,
		prices.NewClient(),
	)

	commonServices := handlers.NewCommonServices(
		dbQueries,
		cardService,
		stackService,
		executionService,
		quoteService,
		accountService,
		limitService,
		agentSmartWalletAddress,
	)

	// API Handler initialization
	cardHandler = handlers.NewCardHandler(commonServices)
	cardStackHandler = handlers.NewCardStackHandler(commonServices)
	executionHandler = handlers.NewExecutionHandler(commonServices)
	accountHandler = handlers.NewAccountHandler(commonServices)
	networkHandler = handlers.NewNetworkHandler(commonServices)
	tokenHandler = handlers.NewTokenHandler(commonServices)
	healthHandler = handlers.NewHealthHandler()
}

func InitializeRoutes(router *gin.Engine) {
	// Initialize logger first
	logger.InitLogger()

	// Configure and apply CORS middleware
	router.Use(configureCORS())

	// Add Swagger endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", healthHandler.Health)

	// Initialize and start the execution processor with 3 workers and a buffer size of 100
	executionProcessor = workers.NewExecutionProcessor(dbQueries, executionService, stackService, bundlerClient, 3, 100)
	executionProcessor.Start()

	// Ensure we gracefully stop the execution processor when the server shuts down
	router.GET("/shutdown", func(c *gin.Context) {
		go func() {
			time.Sleep(1 * time.Second)
			executionProcessor.Stop()
			logger.Info("Server is shutting down...")
			os.Exit(0)
		}()
		c.JSON(http.StatusOK, gin.H{"message": "Server is shutting down..."})
	})

	// if we are not in production, log the request body
	if os.Getenv("GIN_MODE") != "release" {
		router.Use(handlers.LogRequest())
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// No Public routes for now

		// Protected routes (authentication required)
		protected := v1.Group("/")
		protected.Use(auth.EnsureValidAPIKey())
		{
			// Cards
			cards := protected.Group("/cards")
			{
				cards.POST("", cardHandler.CreateCard)
				cards.GET("/:card_id", cardHandler.GetCard)
				cards.POST("/:card_id/sign", cardHandler.SignCard)
				cards.DELETE("/:card_id", cardHandler.RevokeCard)
				cards.GET("/:card_id/spending", cardHandler.GetSpendingStatus)
				cards.GET("/:card_id/transactions", cardHandler.ListTransactions)
			}

			// Card stacks
			stacks := protected.Group("/card-stacks")
			{
				stacks.POST("", cardStackHandler.CreateCardStack)
				stacks.GET("/:stack_id", cardStackHandler.GetCardStack)
			}

			// Per-user listings
			users := protected.Group("/users")
			{
				users.GET("/:user_id/cards", cardHandler.ListCards)
				users.GET("/:user_id/card-stacks", cardStackHandler.ListCardStacks)
			}

			// Execution
			protected.POST("/execute", executionHandler.Execute)
			protected.POST("/quote", executionHandler.GetQuote)

			// Smart accounts
			protected.GET("/accounts/:owner/resolve", accountHandler.ResolveAccount)

			// Networks
			networks := protected.Group("/networks")
			{
				networks.GET("", networkHandler.ListActiveNetworks)
				networks.GET("/chain/:chain_id", networkHandler.GetNetworkByChainID)
			}

			// Tokens
			tokens := protected.Group("/tokens")
			{
				tokens.GET("/chain/:chain_id", tokenHandler.ListTokensByChain)
				tokens.GET("/chain/:chain_id/address/:address", tokenHandler.GetTokenByAddress)
			}
		}
	}
}

// configureCORS returns a configured CORS middleware
func configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		// Default to localhost if not set
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		// Split and trim the origins
		origins := strings.Split(originsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		corsConfig.AllowOrigins = origins
	}

	// Get allowed methods from environment variable
	methodsEnv := os.Getenv("CORS_ALLOWED_METHODS")
	if methodsEnv == "" {
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	} else {
		methods := strings.Split(methodsEnv, ",")
		for i, method := range methods {
			methods[i] = strings.TrimSpace(method)
		}
		corsConfig.AllowMethods = methods
	}

	// Get allowed headers from environment variable
	headersEnv := os.Getenv("CORS_ALLOWED_HEADERS")
	if headersEnv == "" {
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key", "X-User-ID"}
	} else {
		headers := strings.Split(headersEnv, ",")
		for i, header := range headers {
			headers[i] = strings.TrimSpace(header)
		}
		corsConfig.AllowHeaders = headers
	}

	// Get exposed headers from environment variable
	exposedHeadersEnv := os.Getenv("CORS_EXPOSED_HEADERS")
	if exposedHeadersEnv != "" {
		exposedHeaders := strings.Split(exposedHeadersEnv, ",")
		for i, header := range exposedHeaders {
			exposedHeaders[i] = strings.TrimSpace(header)
		}
		corsConfig.ExposeHeaders = exposedHeaders
	}

	// Set credentials allowed
	corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(corsConfig)
}
