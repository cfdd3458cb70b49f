package configs

import (
	"time"

	"anneta.link/configs/configslog"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB opens the Postgres connection pool. Call once at startup,
// before anything asks for GetDB.
func InitDB(dsn string) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	db = gormDB
	configslog.SLog.Info("database connection established")
	return db, nil
}

// GetDB returns the shared connection. Panics when InitDB was not called;
// that is a wiring bug, not a runtime condition.
func GetDB() *gorm.DB {
	if db == nil {
		panic("configs.GetDB called before configs.InitDB")
	}
	return db
}

// SetDB swaps the shared connection. Used by tests with an in-memory store.
func SetDB(conn *gorm.DB) {
	db = conn
}

// CloseDB closes the underlying pool.
func CloseDB() {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		configslog.Log.Error("could not obtain sql.DB for close", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		configslog.Log.Error("database close failed", zap.Error(err))
	}
}
