package model

import "gorm.io/gorm"

// Patient represents a patient of the clinic
// @Description Patient information
type Patient struct {
	gorm.Model
	FullName       string `json:"full_name" gorm:"type:varchar(191);index" example:"John Doe"`
	Gender         string `json:"gender" example:"Male"`
	Age            int    `json:"age" example:"30"`
	Job            string `json:"job" example:"Engineer"`
	Address        string `json:"address" example:"123 Main St"`
	PhoneNumber    string `json:"phone_number" example:"081234567890,081234567891"`
	HealthHistory  string `json:"health_history" example:"Diabetes,Hypertension"`
	SurgeryHistory string `json:"surgery_history" example:"Appendectomy 2020"`
	PatientCode    string `json:"patient_code" gorm:"type:varchar(32);index" example:"J12"`
	Email          string `json:"email" gorm:"type:varchar(191)" example:"john@example.com"`

	ClinicalRecords []ClinicalRecord `json:"clinical_records,omitempty"`
}

// UpdatePatientRequest represents the patch payload for a patient.
// Empty fields are left untouched.
// @Description Patient update request
type UpdatePatientRequest struct {
	FullName       string   `json:"full_name" example:"John Doe"`
	Gender         string   `json:"gender" example:"Male"`
	Age            int      `json:"age" example:"31"`
	Job            string   `json:"job" example:"Engineer"`
	Address        string   `json:"address" example:"456 Side St"`
	PhoneNumbers   []string `json:"phone_number" example:"081234567890"`
	HealthHistory  string   `json:"health_history" example:"Hypertension"`
	SurgeryHistory string   `json:"surgery_history" example:"None"`
	Email          string   `json:"email" example:"john@example.com"`
}
