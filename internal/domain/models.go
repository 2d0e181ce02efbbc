// Package domain defines the persistence models for the salon marketplace:
// users, salons, the services they offer, reviews, bookings and favorites.
// These types are mapped with GORM and form the core data layer of the
// booking backend.
package domain

import (
	"time"
)

// User is a registered account. Customers and salon owners share the same
// table; IsSalonOwner only gates which dashboards a client shows.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Username / Email: display values as supplied at registration.
//   - UsernameKey / EmailKey: case-folded copies carrying the unique indexes,
//     so "Alice" and "alice" collide at the storage layer.
//   - PasswordHash: bcrypt hash, never serialized.
type User struct {
	ID           string    `json:"id"             gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username"       gorm:"type:varchar(64);not null"`
	UsernameKey  string    `json:"-"              gorm:"type:varchar(64);not null;uniqueIndex:ux_users_username"`
	Email        string    `json:"email"          gorm:"type:varchar(255);not null"`
	EmailKey     string    `json:"-"              gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string    `json:"-"              gorm:"type:varchar(255);not null"`
	Name         string    `json:"name"           gorm:"type:varchar(255);not null"`
	Phone        *string   `json:"phone,omitempty" gorm:"type:varchar(32)"`
	IsSalonOwner bool      `json:"is_salon_owner" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Salon is a listing owned by exactly one user. Rating and ReviewCount are
// derived from the salon's reviews and are only written by the rating
// aggregator.
type Salon struct {
	ID          string      `json:"id"           gorm:"type:char(36);primaryKey"`
	OwnerID     string      `json:"owner_id"     gorm:"type:char(36);not null;index:idx_salons_owner"`
	Name        string      `json:"name"         gorm:"type:varchar(255);not null"`
	Description string      `json:"description"  gorm:"type:text;not null"`
	Location    string      `json:"location"     gorm:"type:varchar(255);not null;index"`
	Address     string      `json:"address"      gorm:"type:varchar(255);not null"`
	Phone       string      `json:"phone"        gorm:"type:varchar(32);not null"`
	Email       string      `json:"email"        gorm:"type:varchar(255);not null"`
	Images      StringList  `json:"images"       gorm:"type:text;not null"`
	Categories  StringList  `json:"categories"   gorm:"type:text;not null"`
	Featured    bool        `json:"featured"     gorm:"not null;default:false;index"`
	PriceRange  PriceRange  `json:"price_range"  gorm:"embedded;embeddedPrefix:price_"`
	Rating      float64     `json:"rating"       gorm:"not null;default:0"`
	ReviewCount int         `json:"review_count" gorm:"not null;default:0"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	Owner User `json:"-" gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Salon.
func (Salon) TableName() string { return "salons" }

// PriceRange is the advertised price band of a salon.
type PriceRange struct {
	Min int `json:"min" gorm:"column:min;not null;default:0"`
	Max int `json:"max" gorm:"column:max;not null;default:0"`
}

// Service is a bookable offering of a salon.
type Service struct {
	ID              string    `json:"id"                         gorm:"type:char(36);primaryKey"`
	SalonID         string    `json:"salon_id"                   gorm:"type:char(36);not null;index:idx_services_salon"`
	Name            string    `json:"name"                       gorm:"type:varchar(255);not null"`
	Description     string    `json:"description"                gorm:"type:text;not null"`
	Price           int       `json:"price"                      gorm:"not null;check:price >= 0"`
	Duration        int       `json:"duration"                   gorm:"not null"` // minutes
	Category        string    `json:"category"                   gorm:"type:varchar(64);not null"`
	Image           *string   `json:"image,omitempty"            gorm:"type:text"`
	IsPopular       bool      `json:"is_popular"                 gorm:"not null;default:false"`
	DiscountedPrice *int      `json:"discounted_price,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Salon Salon `json:"-" gorm:"foreignKey:SalonID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Service.
func (Service) TableName() string { return "services" }

// EffectivePrice is the price a customer pays: the discounted price when one
// is set, the list price otherwise.
func (s Service) EffectivePrice() int {
	if s.DiscountedPrice != nil {
		return *s.DiscountedPrice
	}
	return s.Price
}

// Review is a rating (1–5) with a comment left by a user on a salon.
type Review struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);not null;index:idx_reviews_user"`
	SalonID   string    `json:"salon_id"   gorm:"type:char(36);not null;index:idx_reviews_salon"`
	Rating    int       `json:"rating"     gorm:"not null;check:rating BETWEEN 1 AND 5"`
	Comment   string    `json:"comment"    gorm:"type:text;not null"`
	Date      time.Time `json:"date"       gorm:"not null;index"`
	UpdatedAt time.Time `json:"updated_at"`

	User  User  `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Salon Salon `json:"-" gorm:"foreignKey:SalonID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }

// Booking is an appointment of a customer for a salon service. TotalPrice is
// snapshotted at creation and never follows later price changes.
type Booking struct {
	ID         string        `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID     string        `json:"user_id"     gorm:"type:char(36);not null;index:idx_bookings_user"`
	SalonID    string        `json:"salon_id"    gorm:"type:char(36);not null;index:idx_bookings_salon"`
	ServiceID  string        `json:"service_id"  gorm:"type:char(36);not null"`
	Date       time.Time     `json:"date"        gorm:"not null;index"`
	Status     BookingStatus `json:"status"      gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','confirmed','cancelled','completed')"`
	TotalPrice int           `json:"total_price" gorm:"not null"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	User    User    `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Salon   Salon   `json:"-" gorm:"foreignKey:SalonID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Service Service `json:"-" gorm:"foreignKey:ServiceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Booking.
func (Booking) TableName() string { return "bookings" }

// Favorite marks a salon as favorited by a user. It carries no payload
// beyond the composite key.
type Favorite struct {
	UserID    string    `json:"user_id"    gorm:"type:char(36);primaryKey"`
	SalonID   string    `json:"salon_id"   gorm:"type:char(36);primaryKey;index"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Favorite.
func (Favorite) TableName() string { return "favorites" }
