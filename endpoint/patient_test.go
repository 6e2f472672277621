package endpoint_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patientPage struct {
	Total        int64           `json:"total"`
	TotalFetched int             `json:"total_fetched"`
	Patients     []model.Patient `json:"patients"`
}

func TestCreatePatient_AllocatesCodePerInitial(t *testing.T) {
	srv, token := setupServerWithAdmin(t)

	first := srv.createPatient(t, token, "  john   doe ", "0811")
	second := srv.createPatient(t, token, "Jane Roe", "0812")
	other := srv.createPatient(t, token, "Mario Rossi", "0813")

	assert.Equal(t, "john doe", first.FullName)
	assert.Equal(t, "J1", first.PatientCode)
	assert.Equal(t, "J2", second.PatientCode)
	assert.Equal(t, "M1", other.PatientCode)
}

func TestCreatePatient_Conflicts(t *testing.T) {
	srv, token := setupServerWithAdmin(t)
	srv.createPatient(t, token, "John Doe", "0811")

	t.Run("same name and phone", func(t *testing.T) {
		rr, _ := srv.do(t, requestParams{method: http.MethodPost, path: "/patient", token: token, body: map[string]interface{}{
			"full_name": "JOHN DOE", "phone_number": []string{"0999", " 0811 "},
		}})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("requested code taken", func(t *testing.T) {
		rr, _ := srv.do(t, requestParams{method: http.MethodPost, path: "/patient", token: token, body: map[string]interface{}{
			"full_name": "Jack Black", "phone_number": []string{"0822"}, "patient_code": "j1",
		}})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("missing phone", func(t *testing.T) {
		rr, _ := srv.do(t, requestParams{method: http.MethodPost, path: "/patient", token: token, body: map[string]interface{}{
			"full_name": "No Phone", "phone_number": []string{"  "},
		}})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	var count int64
	srv.db.Model(&model.Patient{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestListPatients(t *testing.T) {
	srv, token := setupServerWithAdmin(t)
	srv.createPatient(t, token, "Alice Walker", "0811")
	srv.createPatient(t, token, "Bob Stone", "0822")
	srv.createPatient(t, token, "Carla Bruni", "0833")

	var page patientPage
	srv.mustDo(t, requestParams{method: http.MethodGet, path: "/patient?keyword=ALICE", token: token}, http.StatusOK, &page)
	require.Len(t, page.Patients, 1)
	assert.Equal(t, "Alice Walker", page.Patients[0].FullName)
	assert.Equal(t, int64(1), page.Total)

	srv.mustDo(t, requestParams{method: http.MethodGet, path: "/patient?keyword=0822", token: token}, http.StatusOK, &page)
	require.Len(t, page.Patients, 1)
	assert.Equal(t, "B1", page.Patients[0].PatientCode)

	srv.mustDo(t, requestParams{method: http.MethodGet, path: "/patient?sort=full_name&sort_dir=desc&limit=2", token: token}, http.StatusOK, &page)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Patients, 2)
	assert.Equal(t, "Carla Bruni", page.Patients[0].FullName)
	assert.Equal(t, "Bob Stone", page.Patients[1].FullName)

	srv.mustDo(t, requestParams{method: http.MethodGet, path: "/patient?sort=full_name&limit=2&offset=2", token: token}, http.StatusOK, &page)
	require.Len(t, page.Patients, 1)
	assert.Equal(t, "Carla Bruni", page.Patients[0].FullName)
}

func TestGetUpdatePatient(t *testing.T) {
	srv, token := setupServerWithAdmin(t)
	p := srv.createPatient(t, token, "Alice Walker", "0811")
	srv.createRecord(t, token, p.ID)

	var got model.Patient
	srv.mustDo(t, requestParams{method: http.MethodGet, path: fmt.Sprintf("/patient/%d", p.ID), token: token}, http.StatusOK, &got)
	assert.Len(t, got.ClinicalRecords, 1)

	var updated model.Patient
	srv.mustDo(t, requestParams{method: http.MethodPatch, path: fmt.Sprintf("/patient/%d", p.ID), token: token, body: map[string]interface{}{
		"job": "Teacher", "phone_number": []string{"0811", "0899"},
	}}, http.StatusOK, &updated)
	assert.Equal(t, "Teacher", updated.Job)
	assert.Equal(t, "0811,0899", updated.PhoneNumber)
	assert.Equal(t, "Alice Walker", updated.FullName)

	rr, _ := srv.do(t, requestParams{method: http.MethodGet, path: "/patient/999", token: token})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr, _ = srv.do(t, requestParams{method: http.MethodPatch, path: "/patient/0", token: token, body: map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeletePatient(t *testing.T) {
	srv, token := setupServerWithAdmin(t)
	p := srv.createPatient(t, token, "Alice Walker", "0811")
	rec := srv.createRecord(t, token, p.ID)

	rr, _ := srv.do(t, requestParams{method: http.MethodDelete, path: fmt.Sprintf("/patient/%d", p.ID), token: token})
	assert.Equal(t, http.StatusConflict, rr.Code)

	srv.mustDo(t, requestParams{method: http.MethodPost, path: fmt.Sprintf("/record/%d/close", rec.ID), token: token}, http.StatusOK, nil)
	srv.mustDo(t, requestParams{method: http.MethodDelete, path: fmt.Sprintf("/patient/%d", p.ID), token: token}, http.StatusOK, nil)

	rr, _ = srv.do(t, requestParams{method: http.MethodGet, path: fmt.Sprintf("/patient/%d", p.ID), token: token})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
