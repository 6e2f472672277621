package endpoint_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariebrainware/clinic-therapy/config"
	"github.com/ariebrainware/clinic-therapy/endpoint"
	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type apiResp struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// requestParams groups HTTP request parameters to reduce function arguments
type requestParams struct {
	method  string
	path    string
	body    interface{}
	token   string
	headers map[string]string
}

type testServer struct {
	r  *gin.Engine
	db *gorm.DB
}

// setupTestServer opens a private in-memory database, migrates and seeds it,
// and builds the full router with its middleware chain.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := config.ConnectMySQL()
	require.NoError(t, err)
	require.NoError(t, model.Migrate(db))

	util.SetSecurityLoggerDB(db)
	t.Cleanup(func() { util.SetSecurityLoggerDB(nil) })

	return &testServer{r: endpoint.NewRouter(db, zap.NewNop(), "clinic-therapy-test"), db: db}
}

// setupServerWithAdmin returns a server and the session token of a logged-in admin.
func setupServerWithAdmin(t *testing.T) (*testServer, string) {
	t.Helper()
	srv := setupTestServer(t)
	srv.createUser(t, "Admin", "admin@example.com", "admin-password", model.RoleAdmin)
	return srv, srv.login(t, "admin@example.com", "admin-password")
}

func (s *testServer) do(t *testing.T, p requestParams) (*httptest.ResponseRecorder, apiResp) {
	t.Helper()
	var body []byte
	if p.body != nil {
		var err error
		body, err = json.Marshal(p.body)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(p.method, p.path, bytes.NewBuffer(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("session-token", p.token)
	}
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	s.r.ServeHTTP(rr, req)

	var resp apiResp
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	}
	return rr, resp
}

// mustDo performs the request and requires the given status, decoding data into dst.
func (s *testServer) mustDo(t *testing.T, p requestParams, status int, dst interface{}) apiResp {
	t.Helper()
	rr, resp := s.do(t, p)
	require.Equal(t, status, rr.Code, "%s %s: %s", p.method, p.path, rr.Body.String())
	if dst != nil {
		require.NoError(t, json.Unmarshal(resp.Data, dst))
	}
	return resp
}

func (s *testServer) createUser(t *testing.T, name, email, password string, roleID uint32) model.User {
	t.Helper()
	salt, err := util.GenerateSalt()
	require.NoError(t, err)
	hashed, err := util.HashPasswordArgon2(password, salt)
	require.NoError(t, err)
	user := model.User{Name: name, Email: email, Password: hashed, PasswordSalt: salt, RoleID: roleID}
	require.NoError(t, s.db.Create(&user).Error)
	return user
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	var data endpoint.LoginResponse
	s.mustDo(t, requestParams{method: http.MethodPost, path: "/login", body: map[string]string{"email": email, "password": password}}, http.StatusOK, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func (s *testServer) createPatient(t *testing.T, token, name, phone string) model.Patient {
	t.Helper()
	var p model.Patient
	s.mustDo(t, requestParams{
		method: http.MethodPost, path: "/patient", token: token,
		body: map[string]interface{}{"full_name": name, "gender": "Male", "age": 40, "phone_number": []string{phone}},
	}, http.StatusCreated, &p)
	return p
}

func (s *testServer) createRecord(t *testing.T, token string, patientID uint) model.ClinicalRecord {
	t.Helper()
	var rec model.ClinicalRecord
	s.mustDo(t, requestParams{
		method: http.MethodPost, path: "/record", token: token,
		body: map[string]interface{}{"patient_id": patientID, "diagnosis": "Lumbar disc herniation"},
	}, http.StatusCreated, &rec)
	return rec
}

func (s *testServer) therapyType(t *testing.T, code string) model.TherapyType {
	t.Helper()
	var tt model.TherapyType
	require.NoError(t, s.db.Where("code = ?", code).First(&tt).Error)
	return tt
}

func (s *testServer) prescribe(t *testing.T, token string, recordID uint, sessions int) model.Therapy {
	t.Helper()
	var th model.Therapy
	s.mustDo(t, requestParams{
		method: http.MethodPost, path: "/therapy", token: token,
		body: map[string]interface{}{
			"clinical_record_id":  recordID,
			"therapy_type_id":     s.therapyType(t, "TECAR").ID,
			"prescribed_sessions": sessions,
			"frequency":           "2x/week",
		},
	}, http.StatusCreated, &th)
	return th
}

func (s *testServer) schedule(t *testing.T, token string, therapyID uint, count int, start time.Time) []model.TherapySession {
	t.Helper()
	var sessions []model.TherapySession
	s.mustDo(t, requestParams{
		method: http.MethodPost, path: fmt.Sprintf("/therapy/%d/sessions", therapyID), token: token,
		body: map[string]interface{}{"count": count, "start_date": start.Format(time.RFC3339), "cadence_days": 3},
	}, http.StatusCreated, &sessions)
	return sessions
}

func (s *testServer) complete(t *testing.T, token string, sessionID uint, before, after int) model.TherapySession {
	t.Helper()
	var session model.TherapySession
	s.mustDo(t, requestParams{
		method: http.MethodPost, path: fmt.Sprintf("/session/%d/complete", sessionID), token: token,
		body: map[string]interface{}{"vas_score_before": before, "vas_score_after": after},
	}, http.StatusOK, &session)
	return session
}

// therapyFixture is an admin session with one patient, one open record and
// one TECAR therapy prescribed for the given number of sessions.
type therapyFixture struct {
	*testServer
	token   string
	patient model.Patient
	record  model.ClinicalRecord
	therapy model.Therapy
}

func newTherapyFixture(t *testing.T, sessions int) *therapyFixture {
	t.Helper()
	srv, token := setupServerWithAdmin(t)
	p := srv.createPatient(t, token, "Jane Roe", "081200000001")
	rec := srv.createRecord(t, token, p.ID)
	th := srv.prescribe(t, token, rec.ID, sessions)
	return &therapyFixture{testServer: srv, token: token, patient: p, record: rec, therapy: th}
}

func fixedStart() time.Time {
	return time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)
}
