// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"memberbase/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumOrganizations int
	MembersPerOrg    int
	ShouldClean      bool
}

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "SeededPassw0rd!"

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d organizations with ~%d members each...",
		opts.NumOrganizations, opts.MembersPerOrg)

	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("warning: could not clear all existing data, continuing anyway")
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	orgs, err := createOrganizations(db, opts.NumOrganizations)
	if err != nil {
		return fmt.Errorf("failed to create organizations: %w", err)
	}
	log.Printf("created %d organizations", len(orgs))

	total := 0
	for i := range orgs {
		n, seedErr := createMembers(db, &orgs[i], opts.MembersPerOrg, string(hashedPassword))
		if seedErr != nil {
			return fmt.Errorf("failed to create members for %s: %w", orgs[i].Slug, seedErr)
		}
		total += n

		if adminErr := createAdmin(db, &orgs[i], string(hashedPassword)); adminErr != nil {
			return fmt.Errorf("failed to create admin for %s: %w", orgs[i].Slug, adminErr)
		}
	}
	log.Printf("created %d members and %d admins", total, len(orgs))

	if err := createSuperadmin(db, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to create superadmin: %w", err)
	}

	log.Println("Database seeding completed")
	log.Printf("All seeded accounts use the password: %s", DefaultPassword)
	return nil
}

func clearData(db *gorm.DB) error {
	// Dependents first, soft-delete bypassed.
	for _, model := range []any{
		&models.OTPChallenge{},
		&models.AdminRequest{},
		&models.Principal{},
		&models.Organization{},
	} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func createOrganizations(db *gorm.DB, n int) ([]models.Organization, error) {
	if n <= 0 {
		n = 3
	}
	orgs := make([]models.Organization, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %s Club", gofakeit.City(), gofakeit.HackerNoun())
		org := models.Organization{
			Name:         name,
			Slug:         fmt.Sprintf("%s-%d", slugify(name), i+1),
			Description:  gofakeit.Paragraph(1, 2, 8, " "),
			ContactEmail: gofakeit.Email(),
			Status:       models.OrganizationStatusActive,
		}
		if err := db.Create(&org).Error; err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, nil
}

// createMembers seeds members across the full lifecycle so review queues and
// login flows have material to work with.
func createMembers(db *gorm.DB, org *models.Organization, n int, hashedPassword string) (int, error) {
	if n <= 0 {
		n = 10
	}
	statuses := []models.Status{
		models.StatusPending,
		models.StatusApproved,
		models.StatusActive,
		models.StatusRejected,
		models.StatusDisabled,
	}

	members := make([]models.Principal, 0, n)
	for i := 0; i < n; i++ {
		status := statuses[i%len(statuses)]
		members = append(members, models.Principal{
			FullName:       gofakeit.Name(),
			Email:          fmt.Sprintf("member-%s-%d@%s", org.Slug, i+1, gofakeit.DomainName()),
			Phone:          fmt.Sprintf("+1%d", 2000000000+rand.Int63n(7999999999)),
			Password:       hashedPassword,
			Role:           models.RoleMember,
			Status:         status,
			OrganizationID: &org.ID,
		})
	}
	if err := db.Create(&members).Error; err != nil {
		return 0, err
	}
	return len(members), nil
}

func createAdmin(db *gorm.DB, org *models.Organization, hashedPassword string) error {
	admin := models.Principal{
		FullName:       gofakeit.Name(),
		Email:          fmt.Sprintf("admin@%s.example", org.Slug),
		Password:       hashedPassword,
		Role:           models.RoleAdmin,
		Status:         models.StatusActive,
		OrganizationID: &org.ID,
	}
	return db.Create(&admin).Error
}

func createSuperadmin(db *gorm.DB, hashedPassword string) error {
	super := models.Principal{
		FullName: "Seed Superadmin",
		Email:    "superadmin@memberbase.example",
		Password: hashedPassword,
		Role:     models.RoleSuperadmin,
		Status:   models.StatusActive,
	}
	return db.Create(&super).Error
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
