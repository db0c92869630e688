package database

import (
	"fmt"
	"recruit_backend/internal/config"
	"recruit_backend/internal/model"
	"recruit_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local&clientFoundRows=true",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("database driver %q has no SQL dialect", cfg.Driver)
	}
}

// InitDB opens the SQL connection. TranslateError maps unique violations to
// gorm.ErrDuplicatedKey, which the attempt store relies on.
func InitDB(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := gormlogger.Info
	if mode == "release" {
		logLevel = gormlogger.Warn
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Database connection established", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate creates or updates the assessment schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.AssessmentCategory{},
		&model.AssessmentTemplate{},
		&model.AssessmentQuestion{},
		&model.AssessmentAttempt{},
		&model.AssessmentAnswer{},
		&model.Job{},
		&model.Application{},
		&model.JobAssessment{},
	)
	if err != nil {
		return err
	}

	logger.Log.Info("Database migration completed")
	return nil
}
