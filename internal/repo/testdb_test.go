package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-salon-backend/internal/domain"
)

// newRepoDB opens a private in-memory database with foreign keys enforced.
// Pass migrate=false to get an empty schema for error-path tests.
func newRepoDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid schema leakage across tests.
	dsn := SQLiteDSN(fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	// A single connection keeps the shared-cache database alive and avoids table locks.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if migrate {
		if err := AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func mustUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u, err := CreateUser(context.Background(), db, domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Name:         username,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func mustSalon(t *testing.T, db *gorm.DB, ownerID, name string) *domain.Salon {
	t.Helper()
	s, err := CreateSalon(context.Background(), db, domain.Salon{
		OwnerID:    ownerID,
		Name:       name,
		Location:   "Athens",
		Categories: domain.StringList{"Hair"},
	})
	if err != nil {
		t.Fatalf("CreateSalon(%s): %v", name, err)
	}
	return s
}

func mustService(t *testing.T, db *gorm.DB, salonID string, price int, discounted *int) *domain.Service {
	t.Helper()
	s, err := CreateService(context.Background(), db, domain.Service{
		SalonID:         salonID,
		Name:            "Cut",
		Price:           price,
		Duration:        45,
		Category:        "Hair",
		DiscountedPrice: discounted,
	})
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	return s
}

func mustBooking(t *testing.T, db *gorm.DB, userID string, svc *domain.Service) *domain.Booking {
	t.Helper()
	b, err := CreateBooking(context.Background(), db, domain.Booking{
		UserID:     userID,
		SalonID:    svc.SalonID,
		ServiceID:  svc.ID,
		Date:       time.Now().UTC().Add(24 * time.Hour),
		TotalPrice: svc.EffectivePrice(),
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	return b
}

func intPtr(v int) *int { return &v }
