package model

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Role IDs match the seeding order below.
const (
	RoleAdmin        uint32 = 1
	RoleTherapist    uint32 = 2
	RoleReceptionist uint32 = 3
)

type Role struct {
	gorm.Model
	ID   uint32 `gorm:"primary_key;auto_increment" json:"id"`
	Name string `gorm:"type:varchar(100);not null" json:"name"`
}

func SeedRoles(db *gorm.DB) error {
	roles := []Role{
		{ID: RoleAdmin, Name: "Admin"},
		{ID: RoleTherapist, Name: "Therapist"},
		{ID: RoleReceptionist, Name: "Receptionist"},
	}

	for _, role := range roles {
		var existingRole Role
		err := db.Where("name = ?", role.Name).First(&existingRole).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
	}
	return nil
}
