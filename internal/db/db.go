package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/edunest/school-back/internal/logger"
	"github.com/edunest/school-back/internal/models"
)

// Init opens the postgres connection and migrates the schema.
// AutoMigrate keeps the tables in step with the model structs.
func Init(dsn string) (*gorm.DB, error) {
	log := logger.With("db")

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = conn.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Teacher{},
		&models.Class{},
		&models.Subject{},
		&models.Exam{},
		&models.LibraryResource{},
		&models.Event{},
		&models.ActivityLog{},
	)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("database connected and migrated")
	return conn, nil
}

func Ping(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
