package endpoint

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariebrainware/clinic-therapy/middleware"
	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errPatientDuplicate = errors.New("patient already exists with same name and phone number")
	errPatientCodeTaken = errors.New("patient_code already registered")
)

type patientListQuery struct {
	pagination
	Keyword     string
	GroupByDate string
	SortBy      string
	SortDir     string
}

func parsePatientListQuery(c *gin.Context) patientListQuery {
	return patientListQuery{
		pagination:  parsePagination(c),
		Keyword:     c.Query("keyword"),
		GroupByDate: c.Query("group_by_date"),
		SortBy:      c.Query("sort"),
		SortDir:     strings.ToLower(c.Query("sort_dir")),
	}
}

// applyCreatedAtFilter supports "last_2_days", "last_3_months" and "last_6_months".
func applyCreatedAtFilter(c *gin.Context, query *gorm.DB, groupByDate string) *gorm.DB {
	now := time.Now()
	switch groupByDate {
	case "":
	case "last_2_days":
		query = query.Where("patients.created_at >= ?", now.AddDate(0, 0, -2))
	case "last_3_months":
		query = query.Where("patients.created_at >= ?", now.AddDate(0, -3, 0))
	case "last_6_months":
		query = query.Where("patients.created_at >= ?", now.AddDate(0, -6, 0))
	default:
		middleware.Logger(c).Debug("unknown group_by_date value", zap.String("group_by_date", groupByDate))
	}
	return query
}

func patientOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "full_name":
		return "patients.full_name " + dir
	case "patient_code":
		return "patients.patient_code " + dir
	default:
		return "patients.created_at DESC"
	}
}

func fetchPatients(c *gin.Context, db *gorm.DB, q patientListQuery) ([]model.Patient, int64, error) {
	query := db.Model(&model.Patient{})
	if q.Keyword != "" {
		kw := likePattern(q.Keyword)
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(patient_code) LIKE ? OR LOWER(address) LIKE ? OR phone_number LIKE ?", kw, kw, kw, kw)
	}
	query = applyCreatedAtFilter(c, query, q.GroupByDate)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var patients []model.Patient
	if err := q.apply(query.Order(patientOrder(q.SortBy, q.SortDir))).Find(&patients).Error; err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

// ListPatients godoc
// @Summary      List all patients
// @Description  Get a paginated list of patients with optional filtering
// @Tags         Patient
// @Produce      json
// @Security     SessionToken
// @Param        limit query int false "Limit number of results (default 20, max 100)"
// @Param        offset query int false "Offset for pagination"
// @Param        keyword query string false "Case-insensitive search over name, code, address or phone"
// @Param        group_by_date query string false "Filter by date range (last_2_days, last_3_months, last_6_months)"
// @Param        sort query string false "Optional sort field: full_name|patient_code"
// @Param        sort_dir query string false "Optional sort direction: asc|desc"
// @Success      200 {object} util.APIResponse{data=object} "Patients retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patient [get]
func ListPatients(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	patients, total, err := fetchPatients(c, db, parsePatientListQuery(c))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve patients", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patients retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(patients), "patients": patients},
	})
}

type createPatientRequest struct {
	FullName       string   `json:"full_name" binding:"required" example:"John Doe"`
	Gender         string   `json:"gender" binding:"omitempty,oneof=Male Female" example:"Male"`
	Age            int      `json:"age" binding:"gte=0,lte=150" example:"30"`
	Job            string   `json:"job" example:"Engineer"`
	Address        string   `json:"address" example:"123 Main St"`
	PhoneNumber    []string `json:"phone_number" binding:"required,min=1" example:"081234567890"`
	HealthHistory  []string `json:"health_history" example:"Diabetes"`
	SurgeryHistory string   `json:"surgery_history" example:"Appendectomy 2020"`
	PatientCode    string   `json:"patient_code" example:"J1"`
	Email          string   `json:"email,omitempty" binding:"omitempty,email" example:"john@example.com"`
}

func normalizePhoneNumbers(numbers []string) []string {
	result := make([]string, 0, len(numbers))
	seen := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

func hasDuplicatePatientByNameAndPhone(db *gorm.DB, fullName string, phoneNumbers []string) (bool, error) {
	if len(phoneNumbers) == 0 {
		return false, nil
	}
	phoneSet := make(map[string]struct{}, len(phoneNumbers))
	for _, p := range phoneNumbers {
		phoneSet[p] = struct{}{}
	}

	var matches []model.Patient
	if err := db.Where("LOWER(full_name) = ?", strings.ToLower(fullName)).Find(&matches).Error; err != nil {
		return false, err
	}
	for _, m := range matches {
		for _, sp := range strings.Split(m.PhoneNumber, ",") {
			if _, ok := phoneSet[strings.TrimSpace(sp)]; ok {
				return true, nil
			}
		}
	}
	return false, nil
}

func ensurePatientCodeAvailable(tx *gorm.DB, code string, excludeID uint) error {
	var count int64
	if err := tx.Model(&model.Patient{}).Where("patient_code = ? AND id != ?", code, excludeID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errPatientCodeTaken
	}
	return nil
}

func createPatientTx(tx *gorm.DB, req createPatientRequest, phones []string) (model.Patient, error) {
	duplicate, err := hasDuplicatePatientByNameAndPhone(tx, req.FullName, phones)
	if err != nil {
		return model.Patient{}, err
	}
	if duplicate {
		return model.Patient{}, errPatientDuplicate
	}

	code := strings.ToUpper(strings.TrimSpace(req.PatientCode))
	if code == "" {
		if code, err = model.NextPatientCode(tx, req.FullName); err != nil {
			return model.Patient{}, err
		}
	}
	if err := ensurePatientCodeAvailable(tx, code, 0); err != nil {
		return model.Patient{}, err
	}

	patient := model.Patient{
		FullName:       req.FullName,
		Gender:         req.Gender,
		Age:            req.Age,
		Job:            req.Job,
		Address:        req.Address,
		PhoneNumber:    strings.Join(phones, ","),
		HealthHistory:  strings.Join(req.HealthHistory, ","),
		SurgeryHistory: req.SurgeryHistory,
		PatientCode:    code,
		Email:          req.Email,
	}
	return patient, tx.Create(&patient).Error
}

func respondPatientWriteError(c *gin.Context, err error, msg string) {
	if errors.Is(err, errPatientDuplicate) || errors.Is(err, errPatientCodeTaken) {
		util.CallConflictError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}
	util.CallServerError(c, util.APIErrorParams{Msg: msg, Err: err})
}

// CreatePatient godoc
// @Summary      Create a new patient
// @Description  Register a patient. A patient code is allocated from the name's initial unless one is given.
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body createPatientRequest true "Patient information"
// @Success      201 {object} util.APIResponse{data=model.Patient} "Patient created"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      409 {object} util.APIResponse "Patient or patient code already exists"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patient [post]
func CreatePatient(c *gin.Context) {
	var req createPatientRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	req.FullName = util.NormalizeName(req.FullName)
	phones := normalizePhoneNumbers(req.PhoneNumber)
	if req.FullName == "" || len(phones) == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Patient payload is empty or missing required fields",
			Err: fmt.Errorf("invalid payload"),
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var patient model.Patient
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		patient, err = createPatientTx(tx, req, phones)
		return err
	})
	if err != nil {
		respondPatientWriteError(c, err, "Failed to create patient")
		return
	}

	userID, _ := middleware.GetUserID(c)
	util.LogAuditEvent(util.AuditEntry{
		EventType:  "PATIENT_CREATED",
		UserID:     userID,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		EntityType: "patient",
		EntityID:   patient.ID,
		Message:    fmt.Sprintf("patient %s created", patient.PatientCode),
	})
	util.CallCreated(c, util.APISuccessParams{Msg: "Patient created", Data: patient})
}

// GetPatientInfo godoc
// @Summary      Get patient information
// @Description  Get a patient with their clinical records
// @Tags         Patient
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Patient ID"
// @Success      200 {object} util.APIResponse{data=model.Patient} "Patient retrieved"
// @Failure      400 {object} util.APIResponse "Invalid patient id"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patient/{id} [get]
func GetPatientInfo(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "patient")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	var patient model.Patient
	q := db.Preload("ClinicalRecords", func(tx *gorm.DB) *gorm.DB { return tx.Order("opened_at DESC") })
	if !findOrRespond(c, q, &patient, id, "Patient") {
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient retrieved", Data: patient})
}

func mergePatientUpdate(p *model.Patient, req *model.UpdatePatientRequest) {
	if phones := normalizePhoneNumbers(req.PhoneNumbers); len(phones) > 0 {
		p.PhoneNumber = strings.Join(phones, ",")
	}
	if req.FullName != "" {
		p.FullName = util.NormalizeName(req.FullName)
	}
	if req.Gender != "" {
		p.Gender = req.Gender
	}
	if req.Age != 0 {
		p.Age = req.Age
	}
	if req.Job != "" {
		p.Job = req.Job
	}
	if req.Address != "" {
		p.Address = req.Address
	}
	if req.HealthHistory != "" {
		p.HealthHistory = req.HealthHistory
	}
	if req.SurgeryHistory != "" {
		p.SurgeryHistory = req.SurgeryHistory
	}
	if req.Email != "" {
		p.Email = req.Email
	}
}

// UpdatePatient godoc
// @Summary      Update patient information
// @Description  Update an existing patient's information. Empty fields are left untouched.
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Patient ID"
// @Param        request body model.UpdatePatientRequest true "Updated patient information"
// @Success      200 {object} util.APIResponse{data=model.Patient} "Patient updated"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patient/{id} [patch]
func UpdatePatient(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "patient")
	if !ok {
		return
	}
	var req model.UpdatePatientRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var patient model.Patient
	if !findOrRespond(c, db, &patient, id, "Patient") {
		return
	}
	mergePatientUpdate(&patient, &req)
	if err := db.Save(&patient).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update patient", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient updated", Data: patient})
}

// DeletePatient godoc
// @Summary      Delete a patient
// @Description  Soft delete a patient. Patients with an open clinical record cannot be deleted.
// @Tags         Patient
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Patient ID"
// @Success      200 {object} util.APIResponse "Patient deleted"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Failure      409 {object} util.APIResponse "Patient has an active clinical record"
// @Router       /patient/{id} [delete]
func DeletePatient(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "patient")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var patient model.Patient
	if !findOrRespond(c, db, &patient, id, "Patient") {
		return
	}
	var active int64
	if err := db.Model(&model.ClinicalRecord{}).Where("patient_id = ? AND is_active = ?", id, true).Count(&active).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to check clinical records", Err: err})
		return
	}
	if active > 0 {
		util.CallConflictError(c, util.APIErrorParams{
			Msg: "Patient has an active clinical record; close it first",
			Err: fmt.Errorf("patient %d has %d active records", id, active),
		})
		return
	}
	if err := db.Delete(&patient).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete patient", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient deleted"})
}
