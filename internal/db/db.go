package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kairos/internal/model"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Models lists every persisted model, parents first.
var Models = []interface{}{
	&model.User{},
	&model.Stress{},
	&model.StrengthReading{},
}

// Open returns a connected GORM DB instance for the named driver. GORM's
// own warnings (slow queries, failed statements) go to log.
func Open(driver, dsn string, log *zap.Logger) (*gorm.DB, error) {
	switch driver {
	case DriverMySQL, "":
		return NewMySQL(dsn, log)
	case DriverPostgres:
		return NewPostgres(dsn, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return configurePool(db)
}

// NewPostgres returns a connected GORM DB instance backed by pgx.
func NewPostgres(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return configurePool(db)
}

// AutoMigrate creates missing tables, columns and indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// DropAll drops every table, children first. Missing tables are skipped.
func DropAll(db *gorm.DB) error {
	for i := len(Models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(Models[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}

func gormConfig(log *zap.Logger) *gorm.Config {
	return &gorm.Config{
		Logger:         newGormLogger(log),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// newGormLogger writes GORM's log lines to zap at warn level.
// Record-not-found results are not logged.
func newGormLogger(log *zap.Logger) logger.Interface {
	if log == nil {
		log = zap.NewNop()
	}
	std, err := zap.NewStdLogAt(log.Named("gorm"), zap.WarnLevel)
	if err != nil {
		std = zap.NewStdLog(log.Named("gorm"))
	}
	return logger.New(std, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func configurePool(db *gorm.DB) (*gorm.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
