package database

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/config"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/utils"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log *zap.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: NewGormLogger(log, logLevel),
		// unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)

	log.Info("connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return db, nil
}

// AutoMigrate runs GORM auto-migration for the portal's tables. The
// appointments, doctors and catalog tables are owned by the hospital system
// in production; migrating them here only matters for local databases.
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		// Shared hospital tables
		&entity.Doctor{},
		&entity.Appointment{},
		&entity.Medicine{},
		&entity.LabTest{},
		&entity.RadiologyService{},

		// Portal tables
		&entity.Bill{},
		&entity.MedicalForm{},
		&entity.PrescribedMedicine{},
		&entity.PrescribedTest{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedDefaultData adds a demo doctor and a starter catalog. Rows that
// already exist are left alone.
func SeedDefaultData(db *gorm.DB, log *zap.Logger) error {
	log.Info("seeding default data")

	doctorID := viper.GetInt64("SEED_DOCTOR_ID")
	password := viper.GetString("SEED_DOCTOR_PASSWORD")
	if doctorID > 0 && password != "" {
		hash, err := utils.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		name := viper.GetString("SEED_DOCTOR_NAME")
		if name == "" {
			name = "Demo Doctor"
		}
		doctor := entity.Doctor{
			DoctorID:       doctorID,
			Name:           name,
			Department:     "General Medicine",
			Specialization: "General Physician",
			Password:       &hash,
			RegistrationNo: "DEMO-0001",
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&doctor)
		if res.Error != nil {
			return fmt.Errorf("seed doctor: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			log.Info("demo doctor created", zap.Int64("doctor_id", doctorID))
		}
	}

	medicines := []entity.Medicine{
		{ID: 1, Name: "Paracetamol 500mg", Price: 2.5, Quantity: 1000},
		{ID: 2, Name: "Amoxicillin 250mg", Price: 6, Quantity: 500},
		{ID: 3, Name: "Cetirizine 10mg", Price: 1.8, Quantity: 800},
		{ID: 4, Name: "Pantoprazole 40mg", Price: 7.5, Quantity: 400},
	}
	labTests := []entity.LabTest{
		{ID: 1, Name: "Complete Blood Count", Price: 350},
		{ID: 2, Name: "Lipid Profile", Price: 600},
		{ID: 3, Name: "HbA1c", Price: 450},
	}
	radiology := []entity.RadiologyService{
		{ID: 1, Name: "Chest X-Ray", Price: 800},
		{ID: 2, Name: "Ultrasound Abdomen", Price: 1500},
	}

	for _, rows := range []interface{}{&medicines, &labTests, &radiology} {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error; err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	log.Info("default data seeding completed")
	return nil
}
