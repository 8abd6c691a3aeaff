package database

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard/models"
)

var DB *gorm.DB

// Init opens the database, migrates the schema and seeds the default admin.
func Init(driver, dsn, adminPassword string) error {
	db, err := Open(driver, dsn, logger.Info)
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return err
	}
	if err := SeedAdmin(db, adminPassword); err != nil {
		return err
	}
	DB = db
	return nil
}

// Open connects with the named driver: "postgres" or "sqlite".
func Open(driver, dsn string, level logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres", "":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	return db, nil
}

// Migrate auto-migrates the schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Employee{},
		&models.Team{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.ChecklistItem{},
		&models.AssigneeStatus{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// SeedAdmin creates the default admin account if it does not exist.
func SeedAdmin(db *gorm.DB, password string) error {
	var count int64
	if err := db.Model(&models.Employee{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return fmt.Errorf("count admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.Employee{
		Username:     "admin",
		Name:         "Administrator",
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Println("Default admin user created (username: admin)")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
