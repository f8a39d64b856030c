package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/skyaboveme/yourgency/internal/handlers"
	"github.com/skyaboveme/yourgency/internal/middleware"
	"github.com/skyaboveme/yourgency/internal/models"
)

// Handlers: всё, что монтируется на роутер.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Opportunities *handlers.OpportunityHandler
	Accounts      *handlers.AccountHandler
	Activities    *handlers.ActivityHandler
	Config        *handlers.ConfigHandler
	AI            *handlers.AIHandler
	Reports       *handlers.ReportHandler
}

func SetupRoutes(r *gin.Engine, h Handlers, tokens middleware.TokenParser, metrics gin.HandlerFunc) *gin.Engine {
	// ---- public
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if metrics != nil {
		r.GET("/metrics", metrics)
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.POST("/login", h.Auth.Login)

	// ---- protected
	api.Use(middleware.AuthMiddleware(tokens))

	// USERS
	api.GET("/users", h.Users.ListUsers)
	api.GET("/users/me", h.Users.Me)
	api.POST("/users", middleware.RequireRoles(models.RoleAdmin), h.Users.CreateUser)

	// OPPORTUNITIES (Sync Gateway); DELETE намеренно нет
	api.GET("/opportunities", h.Opportunities.List)
	api.PUT("/opportunities", h.Opportunities.BulkUpsert)
	api.POST("/opportunities", h.Opportunities.Create)
	api.GET("/opportunities/:id", h.Opportunities.GetByID)
	api.POST("/prospects", h.Opportunities.Create)

	// ACCOUNTS / CONTACTS
	api.GET("/accounts", h.Accounts.List)
	api.POST("/accounts", h.Accounts.Create)
	api.GET("/accounts/:id", h.Accounts.GetByID)
	api.GET("/contacts", h.Accounts.ListContacts)
	api.POST("/contacts", h.Accounts.CreateContact)

	// ACTIVITIES
	api.GET("/activities", h.Activities.List)
	api.POST("/activities", h.Activities.Create)

	// CONFIG
	api.GET("/config", h.Config.Get)
	api.POST("/config", h.Config.Save)

	// AI
	ai := api.Group("/ai")
	{
		ai.POST("/score", h.AI.Score)
		ai.POST("/analysis", h.AI.Analysis)
		ai.POST("/chat", h.AI.Chat)
		ai.POST("/outreach", h.AI.DraftOutreach)
		ai.POST("/outreach/send", h.AI.SendOutreach)
		ai.GET("/brief", h.AI.Brief)
	}

	// REPORTS
	reports := api.Group("/reports")
	{
		reports.GET("/summary", h.Reports.GetSummary)
		reports.GET("/pipeline.pdf", h.Reports.PipelinePDF)
	}

	return r
}
