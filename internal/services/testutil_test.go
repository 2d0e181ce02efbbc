package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-salon-backend/internal/domain"
	"github.com/tbourn/go-salon-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := repo.SQLiteDSN(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString()))

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
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// newFileTestDB opens a migrated SQLite file through the production pool
// (several connections, WAL) so concurrent writers really interleave.
func newFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "svc.db"))
	if err != nil {
		t.Fatalf("open sqlite file: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// plainHasher stores passwords with a fixed prefix; enough to test flows
// without bcrypt's cost.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "plain:" + p, nil }

func (plainHasher) Compare(hash, p string) error {
	if hash != "plain:"+p {
		return errors.New("mismatch")
	}
	return nil
}

func seedUser(t *testing.T, db *gorm.DB, username string, owner bool) Caller {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), db, domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "plain:secret1",
		Name:         username,
		IsSalonOwner: owner,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return Caller{ID: u.ID, IsSalonOwner: owner}
}

func seedSalon(t *testing.T, db *gorm.DB, owner Caller, name string) *domain.Salon {
	t.Helper()
	s, err := NewSalonService(db).Create(context.Background(), owner, SalonInput{Name: name, Location: "Athens"})
	if err != nil {
		t.Fatalf("seed salon %s: %v", name, err)
	}
	return s
}

func seedService(t *testing.T, db *gorm.DB, owner Caller, salonID string, price int, discounted *int) *domain.Service {
	t.Helper()
	s, err := NewCatalogService(db).Create(context.Background(), owner, ServiceInput{
		SalonID: salonID, Name: "Cut", Price: price, Duration: 30, DiscountedPrice: discounted,
	})
	if err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return s
}

func salonAggregate(t *testing.T, db *gorm.DB, salonID string) (float64, int) {
	t.Helper()
	s, err := repo.GetSalon(context.Background(), db, salonID)
	if err != nil {
		t.Fatalf("GetSalon: %v", err)
	}
	return s.Rating, s.ReviewCount
}

func tomorrow() time.Time { return time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second) }

func ptr[T any](v T) *T { return &v }
