package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/internal/domain"
	"github.com/tbourn/go-salon-backend/internal/repo"
)

// demoPassword is the password of both demo accounts.
const demoPassword = "password123"

// SeedDemo fills an empty database with two accounts (a customer and a
// salon owner), two salons and four services. It does nothing when any
// user exists. Seeded salons start without reviews, so their rating is 0.
func SeedDemo(ctx context.Context, db *gorm.DB, h PasswordHasher) error {
	n, err := repo.CountUsers(ctx, db)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info().Msg("seed: database already populated, skipping")
		return nil
	}

	users := NewUserService(db, h)
	salons := NewSalonService(db)
	catalog := NewCatalogService(db)

	phone := func(v string) *string { return &v }
	if _, err := users.Register(ctx, RegisterInput{
		Username: "testuser", Email: "test@example.com", Password: demoPassword,
		Name: "Test User", Phone: phone("1234567890"),
	}); err != nil {
		return err
	}
	owner, err := users.Register(ctx, RegisterInput{
		Username: "salonowner", Email: "owner@example.com", Password: demoPassword,
		Name: "Salon Owner", Phone: phone("0987654321"), IsSalonOwner: true,
	})
	if err != nil {
		return err
	}
	oc := Caller{ID: owner.ID, IsSalonOwner: true}

	spa, err := salons.Create(ctx, oc, SalonInput{
		Name:        "Luxury Spa & Salon",
		Description: "A luxury spa and salon offering premium services",
		Location:    "Marrakech",
		Address:     "123 Main Street",
		Phone:       "555-123-4567",
		Email:       "contact@luxuryspa.com",
		Categories:  []string{"Spa", "Hair", "Nails", "Facial"},
		Featured:    true,
		PriceRange:  domain.PriceRange{Min: 200, Max: 1000},
	})
	if err != nil {
		return err
	}
	modern, err := salons.Create(ctx, oc, SalonInput{
		Name:        "Modern Beauty Center",
		Description: "Contemporary beauty center with the latest trends and techniques",
		Location:    "Casablanca",
		Address:     "456 Avenue Mohammed V",
		Phone:       "555-987-6543",
		Email:       "info@modernbeauty.com",
		Categories:  []string{"Hair", "Makeup", "Nails"},
		PriceRange:  domain.PriceRange{Min: 150, Max: 800},
	})
	if err != nil {
		return err
	}

	price := func(v int) *int { return &v }
	for _, in := range []ServiceInput{
		{SalonID: spa.ID, Name: "Luxury Hammam Ritual", Description: "Traditional hammam with full body exfoliation and mask",
			Price: 600, Duration: 90, Category: "Spa", IsPopular: true, DiscountedPrice: price(500)},
		{SalonID: spa.ID, Name: "Signature Facial", Description: "Deep cleansing facial with premium products and massage",
			Price: 450, Duration: 60, Category: "Facial", IsPopular: true},
		{SalonID: modern.ID, Name: "Hair Cut & Style", Description: "Professional haircut and styling",
			Price: 350, Duration: 45, Category: "Hair", IsPopular: true},
		{SalonID: modern.ID, Name: "Gel Manicure", Description: "Long-lasting gel manicure with nail art options",
			Price: 200, Duration: 60, Category: "Nails", DiscountedPrice: price(180)},
	} {
		if _, err := catalog.Create(ctx, oc, in); err != nil {
			return err
		}
	}

	log.Info().Str("owner", owner.Username).Msg("seed: demo data created")
	return nil
}
