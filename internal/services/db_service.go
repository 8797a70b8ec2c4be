package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/hashnipe/internal/logging"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBService handles database connection and lifecycle management
type DBService interface {
	GetDB() *gorm.DB
	Close() error
}

type dbService struct {
	db *gorm.DB
}

type DBOption func(*dbOptions)

type dbOptions struct {
	logger *zap.Logger
}

// WithDBLogger routes gorm's error and slow query log through logger
func WithDBLogger(l *zap.Logger) DBOption {
	return func(o *dbOptions) {
		o.logger = logging.OrNop(l)
	}
}

// NewSqliteDBService creates a new DBService with SQLite connection
func NewSqliteDBService(dbPath string, opts ...DBOption) (DBService, error) {
	if dbPath != ":memory:" {
		// Create directory if it doesn't exist
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), gormConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite serializes writes, and every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return newDBService(db)
}

// NewPostgresDBService creates a new DBService with a PostgreSQL connection
func NewPostgresDBService(dsn string, opts ...DBOption) (DBService, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres connection string is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return newDBService(db)
}

func newDBService(db *gorm.DB) (DBService, error) {
	service := &dbService{db: db}
	if err := service.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return service, nil
}

func gormConfig(opts []DBOption) *gorm.Config {
	o := &dbOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	// Only log errors and slow queries
	gormLogger := logger.New(
		zap.NewStdLog(o.logger.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      false,
			Colorful:                  false,
		},
	)
	return &gorm.Config{Logger: gormLogger}
}

// GetDB returns the underlying GORM database instance
func (s *dbService) GetDB() *gorm.DB {
	return s.db
}

// migrate runs database migrations
func (s *dbService) migrate() error {
	return s.db.AutoMigrate(
		&models.TokenomicsCache{},
		&models.SnipeOrder{},
		&models.TradeRecord{},
	)
}

// Close closes the database connection
func (s *dbService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
