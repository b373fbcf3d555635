package database

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/models"
)

type Database struct {
	db          *gorm.DB
	skillRepo   *SkillRepo
	projectRepo *ProjectRepo
	adminRepo   *AdminRepo
	sessionRepo *SessionRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:          db,
		skillRepo:   NewSkillRepo(db),
		projectRepo: NewProjectRepo(db),
		adminRepo:   NewAdminRepo(db),
		sessionRepo: NewSessionRepo(db),
	}
}

// Open connects to the configured engine, applies migrations and returns the repositories.
func Open(ctx context.Context, s config.Settings) (Database, error) {
	gormConfig := &gorm.Config{
		PrepareStmt: false,
		Logger:      newGormLogger(s.DBLogQueries),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch s.DBType {
	case "postgres":
		log.Info().Msg("Connecting to Postgres database...")
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  s.DSN,
			PreferSimpleProtocol: true,
		}), gormConfig)
		if err == nil && s.ReplicaDSN != "" {
			err = db.Use(dbresolver.Register(dbresolver.Config{
				Replicas: []gorm.Dialector{postgres.New(postgres.Config{
					DSN:                  s.ReplicaDSN,
					PreferSimpleProtocol: true,
				})},
				Policy: dbresolver.RandomPolicy{},
			}))
		}
	case "sqlite":
		log.Info().Str("path", s.SQLitePath).Msg("Opening SQLite database...")
		db, err = OpenSQLite(s.SQLitePath, gormConfig)
	default:
		return Database{}, fmt.Errorf("unsupported database type %q", s.DBType)
	}
	if err != nil {
		return Database{}, fmt.Errorf("connect to database: %w", err)
	}

	// Test database connection
	var result int
	if err := db.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error; err != nil {
		return Database{}, fmt.Errorf("test database connection: %w", err)
	}

	d := New(db)
	if err := d.Migrate(ctx); err != nil {
		return Database{}, err
	}
	return d, nil
}

// OpenSQLite opens a single-connection SQLite database at path.
func OpenSQLite(path string, gormConfig *gorm.Config) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if gormConfig == nil {
		gormConfig = &gorm.Config{Logger: newGormLogger(false)}
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	return db, nil
}

// Migrate creates or updates every table the application owns.
func (d Database) Migrate(ctx context.Context) error {
	err := d.db.WithContext(ctx).AutoMigrate(
		&models.Skill{},
		&models.Project{},
		&models.Admin{},
		&models.Session{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Accessor methods for each repository

func (d Database) SkillRepo() *SkillRepo {
	return d.skillRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) AdminRepo() *AdminRepo {
	return d.adminRepo
}

func (d Database) SessionRepo() *SessionRepo {
	return d.sessionRepo
}

// gormLogWriter routes gorm's printf-style logger into zerolog.
type gormLogWriter struct {
	logger zerolog.Logger
}

func (w gormLogWriter) Printf(format string, args ...interface{}) {
	w.logger.Info().Msgf(format, args...)
}

func newGormLogger(verbose bool) logger.Interface {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	return logger.New(
		gormLogWriter{logger: log.With().Str("component", "gorm").Logger()},
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
