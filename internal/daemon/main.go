package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/newstrnt/admin-authz/internal/audit"
	"github.com/newstrnt/admin-authz/internal/auth"
	"github.com/newstrnt/admin-authz/internal/clientsession"
	"github.com/newstrnt/admin-authz/internal/config"
	"github.com/newstrnt/admin-authz/internal/db/dsn"
	"github.com/newstrnt/admin-authz/internal/db/models"
	"github.com/newstrnt/admin-authz/internal/logger"
	"github.com/newstrnt/admin-authz/internal/rbac"
	"github.com/newstrnt/admin-authz/internal/token"
	"github.com/newstrnt/admin-authz/internal/web"
	"github.com/newstrnt/admin-authz/internal/web/handler"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	trail      *audit.Trail
	storage    fiber.Storage
	webService *web.Service
}

// Start prunes the audit trail in the background and serves the api until
// SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go d.pruneLoop(ctx)
	go d.webService.WaitShutdown()

	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)
	log.Info().Str("addr", addr).Str("prefix", d.cfg.Webserver.APIPrefix).Msg("starting web service")

	err := d.webService.Start(addr)

	d.close()

	return err
}

func (d *Daemon) close() {
	if err := d.storage.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close session storage")
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		log.Warn().Err(err).Msg("failed to get database handle")
		return
	}

	if err = sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close database")
	}
}

func (d *Daemon) pruneLoop(ctx context.Context) {
	if d.cfg.Audit.PruneInterval <= 0 {
		return
	}

	ticker := time.NewTicker(d.cfg.Audit.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := d.trail.Prune(ctx)
			if err != nil {
				log.Error().Err(err).Msg("failed to prune audit trail")
				continue
			}

			log.Info().Int("deleted", n).Int("retention_days", d.cfg.Audit.RetentionDays).Msg("audit trail pruned")
		}
	}
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil, nil
	}

	if err := logger.Init(cfg.Log); err != nil {
		return nil, errors.Wrap(err, "failed to init logger")
	}

	db, err := openDB(cfg.DB)
	if err != nil {
		return nil, err
	}

	if err = db.AutoMigrate(models.All()...); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	if err = seed(cfg, db); err != nil {
		return nil, err
	}

	registry := rbac.Default()

	var parser *token.Parser
	if cfg.Auth.JWTSecret != "" {
		if parser, err = token.NewParser([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTIssuer, cfg.Auth.JWTLeeway); err != nil {
			return nil, errors.Wrap(err, "failed to create token parser")
		}
	} else {
		log.Warn().Msg("no jwt secret configured: structured tokens are rejected")
	}

	verifier := auth.NewVerifier(registry, parser, auth.NewGormIdentityStore(db),
		auth.WithLookupTimeout(cfg.Auth.LookupTimeout))

	trail, err := audit.NewTrail(auditStore(cfg.Audit, db), audit.WithRetention(cfg.Audit.RetentionDays))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create audit trail")
	}

	tracker := auth.NewFailureTracker(cfg.Auth.FailureTrackerSize, cfg.Auth.FailureWindow, cfg.Auth.FailureThreshold)

	storage, err := sessionStorage(cfg)
	if err != nil {
		return nil, err
	}

	sessions, err := clientsession.NewManager(storage, clientsession.WithIdleTimeout(cfg.Session.IdleTimeout))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session manager")
	}

	deps := &handler.Deps{
		Cfg:      cfg,
		Registry: registry,
		Guard:    auth.NewMiddleware(verifier, trail, tracker),
		Roles:    auth.NewService(db, registry),
		Trail:    trail,
		Sessions: sessions,
	}

	return &Daemon{
		cfg:        cfg,
		db:         db,
		trail:      trail,
		storage:    storage,
		webService: web.New(deps),
	}, nil
}

func openDB(cfg config.DB) (*gorm.DB, error) {
	source, err := dsn.Create(cfg)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector

	switch cfg.GormEngine {
	case config.EngineMySQL:
		dialector = gormmysql.Open(source)
	case config.EnginePostgres:
		dialector = gormpostgres.Open(source)
	default:
		dialector = sqlite.Open(source)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	return db, nil
}

func auditStore(cfg config.Audit, db *gorm.DB) audit.Store {
	if cfg.Store == config.AuditStoreMemory {
		log.Warn().Int("capacity", cfg.MemoryCapacity).Msg("audit trail is kept in memory only")

		return audit.NewMemoryStore(cfg.MemoryCapacity)
	}

	return audit.NewSQLStore(db)
}

// sessionStorage returns the fiber storage backing client sessions. The db
// storage uses the configured engine; sqlite has no fiber storage and falls
// back to memory.
func sessionStorage(cfg *config.Config) (fiber.Storage, error) {
	if cfg.Session.Storage != config.SessionStorageDB {
		return session.New().Storage, nil
	}

	source, err := dsn.Create(cfg.DB)
	if err != nil {
		return nil, err
	}

	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: source,
			Table:         cfg.Session.Table,
		}), nil
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: source,
			Table:         cfg.Session.Table,
		}), nil
	default:
		log.Warn().Str("engine", cfg.DB.GormEngine).Msg("no session storage for engine, using memory")

		return session.New().Storage, nil
	}
}
