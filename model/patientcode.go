package model

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// PatientCode keeps the last number handed out for each initial letter.
type PatientCode struct {
	gorm.Model
	Alphabet string `json:"alphabet" gorm:"size:1;uniqueIndex"`
	Number   int    `json:"number"`
	Code     string `json:"code" gorm:"size:32"`
}

// Initial returns the upper-cased first letter of fullName, or "X" when the
// name does not start with a letter.
func Initial(fullName string) string {
	name := strings.TrimSpace(fullName)
	if name == "" {
		return "X"
	}
	c := strings.ToUpper(name[:1])
	if c < "A" || c > "Z" {
		return "X"
	}
	return c
}

// NextPatientCode reserves the next code for the initial of fullName, e.g. "J13".
// Call it inside a transaction; the counter row is created on first use.
func NextPatientCode(tx *gorm.DB, fullName string) (string, error) {
	initial := Initial(fullName)

	var pc PatientCode
	err := tx.Where("alphabet = ?", initial).First(&pc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pc = PatientCode{Alphabet: initial}
	} else if err != nil {
		return "", fmt.Errorf("load patient code counter %s: %w", initial, err)
	}

	pc.Number++
	pc.Code = fmt.Sprintf("%s%d", initial, pc.Number)
	if err := tx.Save(&pc).Error; err != nil {
		return "", fmt.Errorf("save patient code counter %s: %w", initial, err)
	}
	return pc.Code, nil
}
