package model

import "gorm.io/gorm"

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&Role{},
		&User{},
		&Session{},
		&SecurityLog{},
		&Patient{},
		&PatientCode{},
		&Therapist{},
		&TherapyType{},
		&ClinicalRecord{},
		&Therapy{},
		&TherapySession{},
	}
}

// Migrate creates or updates the schema and seeds roles and therapy types.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return err
	}
	if err := SeedRoles(db); err != nil {
		return err
	}
	return SeedTherapyTypes(db)
}
