package database

import (
	"database/sql"
	"errors"
	"log"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/fftopup/internal/catalog"
	"github.com/example/fftopup/internal/models"
	"github.com/example/fftopup/internal/security"
)

// Connect opens the postgres database, creating it when missing, and runs
// migrations and the offer seed.
func Connect(dsn string) *gorm.DB {
	if err := ensureDatabase(dsn); err != nil {
		log.Fatalf("failed to ensure database: %v", err)
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	if err := SeedOffers(conn); err != nil {
		log.Fatalf("offer seed failed: %v", err)
	}

	return conn
}

// Migrate creates or updates every table.
func Migrate(conn *gorm.DB) error {
	migrations := []interface{}{
		&models.Profile{},
		&models.Offer{},
		&models.Order{},
		&models.OfferOrder{},
	}

	for _, migration := range migrations {
		if err := conn.AutoMigrate(migration); err != nil {
			return err
		}
	}

	return nil
}

// SeedOffers inserts the launch passes that are not present yet, matched by
// slug. Existing rows are left as operators edited them.
func SeedOffers(conn *gorm.DB) error {
	for _, seed := range catalog.DefaultOffers() {
		offer := models.Offer{
			Slug:          seed.Slug,
			Name:          seed.Name,
			Price:         seed.Price,
			OriginalPrice: seed.OriginalPrice,
			Duration:      seed.Duration,
			Features:      seed.Features,
			Badge:         seed.Badge,
			Popular:       seed.Popular,
			Active:        true,
		}
		var existing int64
		if err := conn.Model(&models.Offer{}).Where("slug = ?", seed.Slug).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			continue
		}
		if err := conn.Create(&offer).Error; err != nil {
			return err
		}
		log.Printf("[Database] seeded offer %s", seed.Slug)
	}
	return nil
}

// BootstrapAdmin makes sure a profile with email exists and holds the admin
// role. It does nothing when email or password is empty. An existing
// profile keeps its password.
func BootstrapAdmin(conn *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	var profile models.Profile
	err := conn.Where("email = ?", email).First(&profile).Error
	if err == nil {
		if profile.Role == models.RoleAdmin {
			return nil
		}
		log.Printf("[Database] promoting %s to admin", email)
		return conn.Model(&profile).Update("role", models.RoleAdmin).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	profile = models.Profile{
		DisplayName:  "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	log.Printf("[Database] creating admin profile %s", email)
	return conn.Create(&profile).Error
}

func ensureDatabase(dsn string) error {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return err
	}

	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" {
		return nil
	}

	parsed.Path = "/postgres"
	masterDSN := parsed.String()

	sqlDB, err := sql.Open("postgres", masterDSN)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	var exists bool
	if err := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return nil
	}

	log.Printf("[Database] creating database %s", dbName)
	_, err = sqlDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	return err
}
