package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/votables/backend/internal/config"
	applog "github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/models"
)

// Service owns the gorm handle for the votables schema.
type Service interface {
	// Health pings the pool and reports whether every migrated table is
	// present, plus pool counters. "status" is "up" or "down".
	Health() map[string]string
	Close() error
	GetDB() *gorm.DB
}

type service struct {
	db  *gorm.DB
	log *applog.Logger
}

// New connects to Postgres through the pgx stdlib driver, migrates the schema
// and configures the connection pool.
func New(cfg config.DBConfig, log *applog.Logger) (Service, error) {
	sqlDB, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	s, err := Open(postgres.New(postgres.Config{Conn: sqlDB}), log)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("Database connected", "host", cfg.Host, "name", cfg.Name)
	return s, nil
}

// Open wraps an arbitrary gorm dialector and migrates the schema.
func Open(dialector gorm.Dialector, log *applog.Logger) (Service, error) {
	gormLogger := logger.New(
		log.StdLog(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error opening gorm: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Database migrations completed")

	return &service{db: db, log: log.With("service", "Database")}, nil
}

// schemaModels are the tables AutoMigrate manages, in dependency order.
var schemaModels = []interface{}{
	&models.User{},
	&models.Votable{},
	&models.Vote{},
}

// Migrate creates or updates the users, votables and votes tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(schemaModels...); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}
	return nil
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health := map[string]string{"status": "down"}

	sqlDB, err := s.db.DB()
	if err != nil {
		health["error"] = fmt.Sprintf("db handle: %v", err)
		return health
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		health["error"] = fmt.Sprintf("db ping: %v", err)
		return health
	}

	migrator := s.db.WithContext(ctx).Migrator()
	var missing []string
	for _, m := range schemaModels {
		if !migrator.HasTable(m) {
			stmt := &gorm.Statement{DB: s.db}
			if err := stmt.Parse(m); err == nil {
				missing = append(missing, stmt.Schema.Table)
			}
		}
	}
	if len(missing) > 0 {
		health["error"] = "missing tables: " + strings.Join(missing, ",")
		return health
	}

	pool := sqlDB.Stats()
	health["status"] = "up"
	health["schema"] = "users,votables,votes"
	health["open_connections"] = strconv.Itoa(pool.OpenConnections)
	health["in_use"] = strconv.Itoa(pool.InUse)
	health["idle"] = strconv.Itoa(pool.Idle)
	return health
}

func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("db handle: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	s.log.Info("Database pool closed")
	return nil
}
