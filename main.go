package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/redis/v3"
	"github.com/sentrasec/sentra/internal/assets"
	"github.com/sentrasec/sentra/internal/audit"
	"github.com/sentrasec/sentra/internal/common"
	"github.com/sentrasec/sentra/internal/config"
	"github.com/sentrasec/sentra/internal/events"
	"github.com/sentrasec/sentra/internal/handlers/api"
	"github.com/sentrasec/sentra/internal/knowledge"
	"github.com/sentrasec/sentra/internal/middlewares"
	"github.com/sentrasec/sentra/internal/ollama"
	"github.com/sentrasec/sentra/internal/rag"
	"github.com/sentrasec/sentra/internal/rbac"
	"github.com/sentrasec/sentra/internal/store"
	"github.com/sentrasec/sentra/internal/tenants"
	"github.com/sentrasec/sentra/internal/users"
	"github.com/sentrasec/sentra/model"
	"github.com/sentrasec/sentra/params"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "sentra - multi-tenant SOC administration backend"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitDatabase(dbConfig config.PostgresConfig) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dbConfig.Dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if dbConfig.MaxIdleConns > 0 || dbConfig.MaxOpenConns > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			slog.Error("Failed to access database pool", "error", err)
			os.Exit(1)
		}
		if dbConfig.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
		}
		if dbConfig.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
		}
	}

	// vector type must exist before the knowledge_entry migration runs
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		slog.Error("Failed to enable pgvector extension", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(model.Models...); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	return db
}

func mustInitRedisStorage(redisCfg config.RedisConfig) *redis.Storage {
	return redis.New(redis.Config{
		URL:           redisCfg.URL,
		PoolSize:      redisCfg.PoolSize,
		IsClusterMode: redisCfg.ClusterMode,
	})
}

func setupAPIRoutes(
	router fiber.Router,
	cfg *config.Config,
	profileService *users.ProfileService,
	rbacService *rbac.Service,
	companyService *tenants.CompanyService,
	clientService *tenants.ClientService,
	assetService *assets.AssetService,
	vulnSync *assets.VulnSync,
	eventService *events.EventService,
	ingestor *knowledge.Ingestor,
	knowledgeStore *knowledge.Store,
	orchestrator *rag.Orchestrator,
	auditRepo audit.AuditEventRepository) {

	// handlers
	var (
		companyHandler   = api.NewCompanyHandler(companyService)
		clientHandler    = api.NewClientHandler(clientService)
		userHandler      = api.NewUserHandler(profileService, rbacService)
		roleHandler      = api.NewRoleHandler(rbacService)
		assetHandler     = api.NewAssetHandler(assetService, vulnSync)
		eventHandler     = api.NewEventHandler(eventService)
		knowledgeHandler = api.NewKnowledgeHandler(ingestor, knowledgeStore)
		chatHandler      = api.NewChatHandler(orchestrator)
		auditHandler     = api.NewAuditHandler(auditRepo)
		webhookHandler   = api.NewWebhookHandler(profileService, cfg.Auth.WebhookSecret)
	)

	// access gates
	var (
		viewClients   = middlewares.RequireAny(rbacService, rbac.PermViewAllClients, rbac.PermManageClients)
		manageClients = middlewares.RequireAny(rbacService, rbac.PermManageClients)
		manageUsers   = middlewares.RequireAny(rbacService, rbac.PermManageUsers)
		manageRoles   = middlewares.RequireAny(rbacService, rbac.PermManageRoles)
		viewAssets    = middlewares.RequireAny(rbacService, rbac.PermViewAssets, rbac.PermManageAssets)
		manageAssets  = middlewares.RequireAny(rbacService, rbac.PermManageAssets)
		viewLogs      = middlewares.RequireAny(rbacService, rbac.PermViewLogs, rbac.PermManageLogs)
		manageLogs    = middlewares.RequireAny(rbacService, rbac.PermManageLogs)
		viewReports   = middlewares.RequireAny(rbacService, rbac.PermViewReports, rbac.PermManageReports)
		superAdmin    = middlewares.RequireSuperAdmin(rbacService)
	)

	router.Post("/api/hooks/identity", webhookHandler.PostIdentityHook)

	// machine ingest, authenticated by tenant API key
	ingest := router.Group("/api/ingest", middlewares.AuthenticateClient(clientService))
	ingest.Post("/events", eventHandler.PostClientEvent)
	ingest.Post("/events/batch", eventHandler.PostClientEventBatch)

	authed := router.Group("/api", middlewares.Authenticate(cfg.Auth.TokenSecret, profileService))
	authed.Get("/me", userHandler.GetMe)

	authed.Get("/companies", viewClients, companyHandler.GetCompanies)
	authed.Get("/companies/:id", viewClients, companyHandler.GetCompany)
	authed.Post("/companies", manageClients, companyHandler.PostCompany)
	authed.Put("/companies/:id", manageClients, companyHandler.PutCompany)
	authed.Delete("/companies/:id", manageClients, companyHandler.DeleteCompany)

	authed.Get("/clients", viewClients, clientHandler.GetClients)
	authed.Get("/clients/:id", viewClients, clientHandler.GetClient)
	authed.Post("/clients", manageClients, clientHandler.PostClient)
	authed.Put("/clients/:id", manageClients, clientHandler.PutClient)
	authed.Delete("/clients/:id", manageClients, clientHandler.DeleteClient)
	authed.Post("/clients/:id/rotate-key", manageClients, clientHandler.PostRotateAPIKey)
	authed.Post("/clients/:id/vulnerabilities/sync", manageClients, assetHandler.PostSyncVulnerabilities)

	authed.Get("/users", manageUsers, userHandler.GetUsers)
	authed.Get("/users/:id", manageUsers, userHandler.GetUser)
	authed.Put("/users/:id", manageUsers, userHandler.PutUser)
	authed.Delete("/users/:id", manageUsers, userHandler.DeleteUser)
	authed.Get("/users/:id/roles", manageRoles, userHandler.GetUserRoles)
	authed.Post("/users/:id/roles", manageRoles, userHandler.PostUserRole)
	authed.Delete("/users/:id/roles/:roleId", manageRoles, userHandler.DeleteUserRole)

	authed.Get("/roles", manageRoles, roleHandler.GetRoles)
	authed.Get("/roles/:id", manageRoles, roleHandler.GetRole)
	authed.Post("/roles", manageRoles, roleHandler.PostRole)
	authed.Put("/roles/:id", manageRoles, roleHandler.PutRole)
	authed.Delete("/roles/:id", manageRoles, roleHandler.DeleteRole)

	authed.Get("/assets", viewAssets, assetHandler.GetAssets)
	authed.Get("/assets/:id", viewAssets, assetHandler.GetAsset)
	authed.Post("/assets", manageAssets, assetHandler.PostAsset)
	authed.Put("/assets/:id", manageAssets, assetHandler.PutAsset)
	authed.Delete("/assets/:id", manageAssets, assetHandler.DeleteAsset)

	authed.Get("/events", viewLogs, eventHandler.GetEvents)
	authed.Get("/events/:eventId", viewLogs, eventHandler.GetEvent)
	authed.Post("/events", manageLogs, eventHandler.PostEvent)
	authed.Post("/events/batch", manageLogs, eventHandler.PostEventBatch)
	authed.Put("/events/:eventId/status", manageLogs, eventHandler.PutEventStatus)
	authed.Get("/reports/severity", viewReports, eventHandler.GetSeverityReport)

	authed.Post("/knowledge/ingest", manageClients, knowledgeHandler.PostIngest)
	authed.Delete("/knowledge/:clientId", manageClients, knowledgeHandler.DeleteClientKnowledge)
	authed.Get("/knowledge/count", manageClients, knowledgeHandler.GetCount)

	authed.Post("/chat", viewReports, chatHandler.PostChat)

	authed.Get("/audit", superAdmin, auditHandler.GetAuditEvents)
}

func run(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	db := mustInitDatabase(cfg.Postgres)
	redisStorage := mustInitRedisStorage(cfg.Redis)
	cacheStorage := store.NewRedisStorage(redisStorage.Conn())

	// repositories
	var (
		profileRepo  = users.NewProfileRepository(db)
		companyRepo  = tenants.NewCompanyRepository(db)
		clientRepo   = tenants.NewClientRepository(db)
		roleRepo     = rbac.NewRoleRepository(db)
		userRoleRepo = rbac.NewUserRoleRepository(db)
		assetRepo    = assets.NewAssetRepository(db)
		eventRepo    = events.NewEventRepository(db)
		auditRepo    = audit.NewAuditEventRepository(db)
	)

	audit.Initialize(auditRepo)
	if err := rbac.SeedRoles(ctx.Context, roleRepo); err != nil {
		slog.Error("Failed to seed built-in roles", "error", err)
		return err
	}

	ollamaClient := ollama.NewClient(ollama.Config{
		BaseURL:    cfg.Ollama.URL,
		EmbedModel: cfg.Ollama.EmbedModel,
		ChatModel:  cfg.Ollama.ChatModel,
	})

	// services
	var (
		profileService = users.NewProfileService(profileRepo)
		companyService = tenants.NewCompanyService(companyRepo)
		clientService  = tenants.NewClientService(clientRepo, companyRepo)
		rbacService    = rbac.NewService(roleRepo, userRoleRepo, cacheStorage)
		assetService   = assets.NewAssetService(assetRepo)
		eventService   = events.NewEventService(eventRepo)
		knowledgeStore = knowledge.NewStore(db)
		ingestor       = knowledge.NewIngestor(knowledgeStore, ollamaClient, cfg.Ollama.EmbeddingDim)
		vulnSync       = assets.NewVulnSync(assetRepo, ingestor)
		orchestrator   = rag.NewOrchestrator(ollamaClient, knowledgeStore, ollamaClient)
	)

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.ErrorHandler,
	})

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	setupAPIRoutes(
		router,
		cfg,
		profileService,
		rbacService,
		companyService,
		clientService,
		assetService,
		vulnSync,
		eventService,
		ingestor,
		knowledgeStore,
		orchestrator,
		auditRepo,
	)

	healthCheckCtx, term := context.WithCancel(ctx.Context)
	done := make(chan struct{})
	go common.StartHealthCheckServer(healthCheckCtx, done, redisStorage.Conn(), db)
	defer func() {
		term()
		<-done
	}()
	return router.Listen(cfg.ListenAddr)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
