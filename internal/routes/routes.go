package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/archive"
	"github.com/BruksfildServices01/agent-crm/internal/audit"
	"github.com/BruksfildServices01/agent-crm/internal/auth"
	"github.com/BruksfildServices01/agent-crm/internal/config"
	"github.com/BruksfildServices01/agent-crm/internal/handlers"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/importer"
	infraRepo "github.com/BruksfildServices01/agent-crm/internal/infra/repository"
	"github.com/BruksfildServices01/agent-crm/internal/metrics"
	"github.com/BruksfildServices01/agent-crm/internal/middleware"
	"github.com/BruksfildServices01/agent-crm/internal/session"
	ucAgent "github.com/BruksfildServices01/agent-crm/internal/usecase/agent"
	ucClient "github.com/BruksfildServices01/agent-crm/internal/usecase/client"
)

// Deps are the process-wide singletons the routes are built from.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Sessions session.Store
	Audit    audit.Sink
	Archiver archive.Archiver
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middleware.Sessions(middleware.SessionOptions{
		Store:  d.Sessions,
		MaxAge: int(cfg.SessionTTL.Seconds()),
		Secure: cfg.CookieSecure,
		Log:    d.Logger,
	}))

	r.NoRoute(func(c *gin.Context) {
		httperr.NotFound(c, httperr.CodeNotFound, "Route not found.")
	})

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	repo := infraRepo.NewCRMGormRepository(d.DB)

	policy := access.Policy{
		AgentSeesAll:           cfg.Access.AgentSeesAll,
		ImportAnyAuthenticated: cfg.Import.AnyAuthenticated,
	}

	authn := auth.NewAuthenticator(repo, auth.Superuser{
		Username: cfg.Superuser.Username,
		Password: cfg.Superuser.Password,
	})
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	clientImporter := importer.New(importer.Deps{
		Store:    repo,
		Archiver: d.Archiver,
		Audit:    d.Audit,
		Metrics:  d.Metrics,
		Logger:   d.Logger,
	}, importer.OptionsFromConfig(cfg))

	// ======================================================
	// USE CASES
	// ======================================================
	listAgentsUC := ucAgent.NewListAgents(repo, policy)
	createAgentUC := ucAgent.NewCreateAgent(repo, d.Audit, policy)

	clientUC := handlers.ClientUseCases{
		Create:  ucClient.NewCreateClient(repo, d.Audit, policy),
		Update:  ucClient.NewUpdateClient(repo, d.Audit, policy),
		Delete:  ucClient.NewDeleteClient(repo, d.Audit, policy),
		Clear:   ucClient.NewClearClients(repo, d.Audit, policy),
		Assign:  ucClient.NewAssignClient(repo, d.Audit, policy),
		Comment: ucClient.NewAddComment(repo, d.Audit, policy),
		Call:    ucClient.NewRecordCall(repo, d.Audit, policy, cfg.Timezone),
		Get:     ucClient.NewGetClient(repo, policy),
		List:    ucClient.NewListClients(repo, policy),
		Agents:  listAgentsUC,
	}
	exportUC := ucClient.NewExportClients(repo, policy)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(authn, tokens, d.Audit, d.Metrics, d.Logger)
	meHandler := handlers.NewMeHandler(repo)
	dashboardHandler := handlers.NewDashboardHandler(clientUC.List, listAgentsUC)
	clientHandler := handlers.NewClientHandler(clientUC)
	importHandler := handlers.NewImportHandler(clientImporter)
	agentHandler := handlers.NewAgentHandler(createAgentUC, listAgentsUC)
	exportHandler := handlers.NewExportHandler(exportUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB, policy, cfg.Timezone)
	healthHandler := handlers.NewHealthHandler(d.DB)

	// ======================================================
	// OPERATIONS
	// ======================================================
	r.GET("/ping", healthHandler.Ping)
	r.GET("/health", healthHandler.Health)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// ======================================================
	// BROWSER (SESSION COOKIE)
	// ======================================================
	r.GET("/", authHandler.Index)
	r.GET("/login", authHandler.LoginPage)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	web := r.Group("/")
	web.Use(middleware.RequireLogin())
	{
		web.GET("/dashboard", dashboardHandler.Dashboard)
		web.GET("/admin_dashboard", middleware.RequireAdmin(), dashboardHandler.Admin)
		web.GET("/agent_dashboard", middleware.RequireAgent(), dashboardHandler.Agent)

		web.POST("/add_client", clientHandler.Add)
		web.GET("/edit_client/:id", clientHandler.EditPage)
		web.POST("/edit_client/:id", clientHandler.Edit)
		web.POST("/delete_client/:id", clientHandler.Remove)
		web.POST("/clear_clients", clientHandler.ClearAll)

		web.GET("/client/:id", clientHandler.Show)
		web.POST("/client/:id", clientHandler.Edit)
		web.POST("/client/:id/comment", clientHandler.Comment)
		web.POST("/client/:id/assign", clientHandler.Assign)
		web.POST("/call/:id", clientHandler.Call)

		web.POST("/import_clients", importHandler.Upload)
		web.POST("/upload", importHandler.Upload)
		web.GET("/export", exportHandler.Download)

		web.POST("/create_agent", agentHandler.Create)
		web.POST("/add_agent", agentHandler.Create)
	}

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		api.POST("/auth/login", authHandler.APILogin)

		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(tokens))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/clients", clientHandler.APIList)
			secured.POST("/clients", clientHandler.APICreate)
			secured.POST("/clients/import", importHandler.APIImport)
			secured.GET("/clients/export", exportHandler.APIDownload)
			secured.GET("/clients/:id", clientHandler.APIGet)
			secured.PATCH("/clients/:id", clientHandler.APIPatch)
			secured.DELETE("/clients/:id", clientHandler.APIDelete)
			secured.POST("/clients/:id/comments", clientHandler.APIComment)
			secured.POST("/clients/:id/call", clientHandler.APICall)

			secured.GET("/agents", agentHandler.APIList)
			secured.POST("/agents", agentHandler.APICreate)

			secured.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
