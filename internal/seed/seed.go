package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/labtrack/internal/asset"
	"github.com/frahmantamala/labtrack/internal/auth"
	assetDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/asset"
	ticketDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/ticket"
	userDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/user"
	"github.com/frahmantamala/labtrack/internal/ticket"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	Username string
	Email    string
	Password string
	Role     auth.Role
}

type seedAsset struct {
	Name        string
	Description string
	QRCode      string
	Status      asset.Status
	Location    string
	Category    string
}

var users = []seedUser{
	{"admin", "admin@labtrack.com", "admin123", auth.RoleAdmin},
	{"engineer", "engineer@labtrack.com", "engineer123", auth.RoleEngineer},
	{"technician", "technician@labtrack.com", "tech123", auth.RoleTechnician},
}

var assets = []seedAsset{
	{"Microscope A1", "High-resolution optical microscope", "ASSET-MICRO001", asset.StatusAvailable, "Lab Room 101", "Equipment"},
	{"Centrifuge B2", "High-speed centrifuge for sample separation", "ASSET-CENTR002", asset.StatusInUse, "Lab Room 102", "Equipment"},
	{"Spectrometer S1", "UV-Vis spectrometer", "ASSET-SPECT003", asset.StatusMaintenance, "Lab Room 103", "Instruments"},
}

// Seeder fills an empty database with demo users, assets and tickets.
type Seeder struct {
	db         *gorm.DB
	bcryptCost int
	logger     *slog.Logger
}

func NewSeeder(db *gorm.DB, bcryptCost int, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, bcryptCost: bcryptCost, logger: logger}
}

// Run seeds only when the users table is empty and reports whether it did.
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&userDatamodel.User{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "seed skipped, users already present", "users", count)
		return false, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		created := make(map[string]*userDatamodel.User, len(users))
		for _, u := range users {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.bcryptCost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", u.Username, err)
			}
			row := &userDatamodel.User{
				Username:     u.Username,
				Email:        u.Email,
				PasswordHash: string(hash),
				Role:         string(u.Role),
				CreatedAt:    now,
			}
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("insert user %s: %w", u.Username, err)
			}
			created[u.Username] = row
		}

		admin := created["admin"]
		rows := make([]*assetDatamodel.Asset, 0, len(assets))
		for _, a := range assets {
			row := &assetDatamodel.Asset{
				Name:        a.Name,
				Description: strPtr(a.Description),
				QRCode:      a.QRCode,
				Status:      string(a.Status),
				Location:    strPtr(a.Location),
				Category:    strPtr(a.Category),
				CreatedBy:   admin.ID,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Omit("Creator").Create(row).Error; err != nil {
				return fmt.Errorf("insert asset %s: %w", a.Name, err)
			}
			rows = append(rows, row)
		}

		engineer := created["engineer"]
		tickets := []*ticketDatamodel.Ticket{
			{
				Title:       "Microscope calibration needed",
				Description: strPtr("The microscope needs to be calibrated for accurate measurements"),
				Status:      string(ticket.StatusOpen),
				Priority:    string(ticket.PriorityMedium),
				AssetID:     &rows[0].ID,
				CreatedBy:   created["technician"].ID,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			{
				Title:       "Centrifuge making unusual noise",
				Description: strPtr("The centrifuge is making a grinding noise during operation"),
				Status:      string(ticket.StatusInProgress),
				Priority:    string(ticket.PriorityHigh),
				AssetID:     &rows[1].ID,
				CreatedBy:   engineer.ID,
				AssignedTo:  &engineer.ID,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
		}
		for _, t := range tickets {
			if err := tx.Omit("Asset", "Creator", "Assignee", "Comments").Create(t).Error; err != nil {
				return fmt.Errorf("insert ticket %q: %w", t.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.logger.InfoContext(ctx, "database seeded",
		"users", len(users),
		"assets", len(assets),
		"tickets", 2)
	return true, nil
}

func strPtr(s string) *string {
	return &s
}
