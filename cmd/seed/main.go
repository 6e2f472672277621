// Command seed creates the reference data (roles, therapy types, an admin
// account) and, with -demo, a set of fake patients with therapies in progress.
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/ariebrainware/clinic-therapy/config"
	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/tracker"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	var (
		adminEmail    = flag.String("admin-email", envOr("SEED_ADMIN_EMAIL", "admin@clinic.local"), "admin account email")
		adminPassword = flag.String("admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "admin account password")
		demo          = flag.Bool("demo", false, "also generate fake patients, records, therapies and sessions")
		patients      = flag.Int("patients", 20, "number of demo patients")
		seed          = flag.Uint64("seed", 0, "faker seed, 0 for random")
	)
	flag.Parse()

	cfg := config.LoadConfig()
	logger := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()
	config.SetLogger(logger)

	db, err := config.ConnectMySQL()
	if err != nil {
		logger.Fatal("error connecting to database", zap.Error(err))
	}
	if err := model.Migrate(db); err != nil {
		logger.Fatal("error migrating database", zap.Error(err))
	}

	if *adminPassword == "" {
		logger.Warn("no admin password given, skipping admin account")
	} else if err := ensureAdmin(db, *adminEmail, *adminPassword); err != nil {
		logger.Fatal("error creating admin account", zap.Error(err))
	} else {
		logger.Info("admin account ready", zap.String("email", *adminEmail))
	}

	if !*demo {
		return
	}
	tr := tracker.New(db, tracker.WithLogger(logger))
	stats, err := seedDemo(context.Background(), db, tr, gofakeit.New(*seed), *patients)
	if err != nil {
		logger.Fatal("error seeding demo data", zap.Error(err))
	}
	logger.Info("demo data seeded",
		zap.Int("patients", stats.Patients),
		zap.Int("therapies", stats.Therapies),
		zap.Int("sessions", stats.Sessions),
		zap.Int("completed", stats.Completed))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ensureAdmin creates the admin account unless a user with that email exists.
func ensureAdmin(db *gorm.DB, email, password string) error {
	var existing model.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	salt, err := util.GenerateSalt()
	if err != nil {
		return err
	}
	hashed, err := util.HashPasswordArgon2(password, salt)
	if err != nil {
		return err
	}
	return db.Create(&model.User{
		Name:         "Administrator",
		Email:        email,
		Password:     hashed,
		PasswordSalt: salt,
		RoleID:       model.RoleAdmin,
	}).Error
}
