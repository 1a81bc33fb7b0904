package config

import (
	"log"

	"societygate/internal/adapters/persistence/models"
	"societygate/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if s.cfg.IsDev() {
		if err := s.seedDemoUsers(); err != nil {
			log.Printf("⚠️ Demo seeder skipped: %v", err)
		}
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the default admin account if none exists. Change the
// password immediately in production.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:     "Society Admin",
		Username: "admin",
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedDemoUsers seeds a demo guard and two demo residents for development
func (s *Seeder) seedDemoUsers() error {
	var count int64
	s.db.Model(&models.User{}).Where("role <> ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("demo123456")
	if err != nil {
		return err
	}

	demoUsers := []models.User{
		{Name: "Gate Guard", Username: "guard", Password: hashedPassword, Role: models.RoleSecurity, IsActive: true},
		{Name: "Asha Verma", Username: "asha", Password: hashedPassword, Role: models.RoleResident, Flat: "A-101", Phone: "9800000001", IsActive: true},
		{Name: "Rahul Mehta", Username: "rahul", Password: hashedPassword, Role: models.RoleResident, Flat: "B-204", Phone: "9800000002", IsActive: true},
	}
	for i := range demoUsers {
		if err := s.db.Create(&demoUsers[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Demo users created: guard + %d residents", len(demoUsers)-1)
	return nil
}
