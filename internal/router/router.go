// Package router assembles the HTTP API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "finova/internal/docs" // swagger docs
	"finova/internal/events"
	"finova/internal/handlers"
	"finova/internal/middleware"
	"finova/internal/services"
)

// Deps are the services the API is built on. Queue may be nil, in which case
// pipeline jobs run inline.
type Deps struct {
	Sessions     services.SessionServicer
	Tokens       middleware.TokenParser
	Transactions services.TransactionServicer
	Categories   services.CategoryServicer
	Budgets      services.BudgetServicer
	Goals        services.SavingsGoalServicer
	Investments  services.InvestmentServicer
	Dashboard    services.DashboardServicer
	Advice       services.AdviceServicer
	Export       services.ExportServicer
	Jobs         services.JobRunner
	Queue        events.JobQueue

	PipelineAPIKey string
}

// New builds the gin engine with every route registered.
func New(d Deps) *gin.Engine {
	authHandler := handlers.NewAuthHandler(d.Sessions)
	transactionHandler := handlers.NewTransactionHandler(d.Transactions)
	exportHandler := handlers.NewExportHandler(d.Export)
	categoryHandler := handlers.NewCategoryHandler(d.Categories)
	budgetHandler := handlers.NewBudgetHandler(d.Budgets)
	goalHandler := handlers.NewSavingsGoalHandler(d.Goals)
	investmentHandler := handlers.NewInvestmentHandler(d.Investments)
	dashboardHandler := handlers.NewDashboardHandler(d.Dashboard)
	adviceHandler := handlers.NewAdviceHandler(d.Advice)
	pipelineHandler := handlers.NewPipelineHandler(d.Jobs, d.Queue)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	v1.POST("/auth/login", authHandler.Login)

	// Pipeline routes (API key auth, not session)
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(d.PipelineAPIKey))
	pipeline.POST("/reconcile", pipelineHandler.Reconcile)
	pipeline.POST("/advice", pipelineHandler.WeeklyAdvice)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.SessionAuthMiddleware(d.Tokens))

	protected.GET("/session", authHandler.GetSession)
	protected.PUT("/session", authHandler.UpdateSession)

	protected.GET("/dashboard", dashboardHandler.GetDashboard)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/export", exportHandler.ExportCSV)
	transactions.POST("/export/sheets", exportHandler.ExportSheets)
	transactions.POST("/reconcile", transactionHandler.ReconcileMonth)
	transactions.POST("/suggest", adviceHandler.Suggest)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/:id/toggle-status", transactionHandler.ToggleStatus)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/orphans", categoryHandler.FindOrphans)
	categories.POST("/restore-defaults", categoryHandler.RestoreDefaults)
	categories.PUT("/:id", categoryHandler.RenameCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	categories.POST("/:id/toggle-essential", categoryHandler.ToggleEssential)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.GET("", budgetHandler.ListBudgets)
	budgets.PUT("", budgetHandler.SetBudget)

	// Savings goal routes
	goals := protected.Group("/goals")
	goals.GET("", goalHandler.ListGoals)
	goals.PUT("", goalHandler.UpsertGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	// Investment routes
	investments := protected.Group("/investments")
	investments.POST("", investmentHandler.CreateInvestment)
	investments.GET("", investmentHandler.ListInvestments)
	investments.GET("/evolution", investmentHandler.GetEvolution)
	investments.GET("/:id", investmentHandler.GetInvestment)
	investments.POST("/:id/operations", investmentHandler.RecordOperation)
	investments.DELETE("/:id", investmentHandler.DeleteInvestment)

	// Advice routes
	advice := protected.Group("/advice")
	advice.GET("", adviceHandler.ListHistory)
	advice.GET("/current", adviceHandler.CurrentReport)
	advice.POST("/regenerate", adviceHandler.Regenerate)
	advice.GET("/:week", adviceHandler.GetByWeek)

	return router
}
