package postgres

import (
	"log"

	"github.com/LavaJover/wolf-checkout-service/internal/config"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/migrate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func MustInitDB(cfg *config.CheckoutConfig) *gorm.DB {
	dsn := cfg.OrderDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if err := migrate.RunMigrations(db, cfg.OrderDB.MigrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v\n", err)
	}

	return db
}
