package database

import (
	"fmt"
	"os"

	"docflow-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Unique violations must come back as gorm.ErrDuplicatedKey so
		// registration-number collisions are detectable at commit time.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	DB = db
	logrus.Info("database connected")
	return db, nil
}

func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("database connection not initialized")
	}

	if os.Getenv("RESET_DB") == "true" {
		logrus.Warn("RESET_DB=true, dropping all tables")
		if err := DB.Migrator().DropTable(
			&models.Registration{},
			&models.DocumentFile{},
			&models.Document{},
			&models.DocumentType{},
			&models.Category{},
			&models.User{},
		); err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
	}

	err := DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.DocumentType{},
		&models.Document{},
		&models.DocumentFile{},
		&models.Registration{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	if err := seedDefaults(DB); err != nil {
		return fmt.Errorf("failed to seed defaults: %w", err)
	}

	return nil
}

// seedDefaults creates the stock categories and document types on first run.
func seedDefaults(db *gorm.DB) error {
	defaultCategories := []string{
		"Contract",
		"Factura",
		"Raport financiar",
		"Cerere angajat",
		"Document legal",
	}
	for _, name := range defaultCategories {
		var existing models.Category
		if err := db.Where("name = ?", name).First(&existing).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			if err := db.Create(&models.Category{Name: name}).Error; err != nil {
				return err
			}
		}
	}

	defaultTypes := []string{"Intern", "Extern", "Administrativ", "Diverse"}
	for _, name := range defaultTypes {
		var existing models.DocumentType
		if err := db.Where("name = ?", name).First(&existing).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			if err := db.Create(&models.DocumentType{Name: name}).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
