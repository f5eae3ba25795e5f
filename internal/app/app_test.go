package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"scorm_host_backend/internal/config"
	"scorm_host_backend/internal/model"
	"scorm_host_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "test-secret-with-enough-length-for-hs256"

type testServer struct {
	app  *App
	root string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	root := t.TempDir()
	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", Mode: gin.TestMode},
		JWT:    config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour},
		Storage: config.StorageConfig{
			Type:         util.StorageLocal,
			LocalPath:    root,
			PublicPrefix: "/scorm-packages",
		},
		Scorm: config.ScormConfig{DefaultLaunchFile: "index_lms.html"},
	}

	return &testServer{app: New(cfg, db, nil), root: root}
}

func (s *testServer) seedUser(t *testing.T, name string, role model.UserRole) (*model.User, string) {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, s.app.DB.Create(u).Error)
	token, err := util.GenerateJWT(u.ID, u.Email, string(u.Role), testSecret, time.Hour)
	require.NoError(t, err)
	return u, token
}

func (s *testServer) seedCourse(t *testing.T, title string) *model.Course {
	t.Helper()
	c := &model.Course{Title: title, Version: model.ScormVersion12, PackagePath: "courses/" + title}
	require.NoError(t, s.app.DB.Create(c).Error)
	return c
}

func (s *testServer) writeFile(t *testing.T, key, content string) {
	t.Helper()
	full := filepath.Join(s.root, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	components := data["components"].(map[string]interface{})
	assert.Equal(t, "up", components["database"])
	assert.Equal(t, "disabled", components["redis"])
}

func TestRuntimeRequiresToken(t *testing.T) {
	s := newTestServer(t)
	course := s.seedCourse(t, "golf")

	w := s.do(http.MethodPost, "/api/scorm/launch", "", `{"courseId":"`+course.ID+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/scorm/launch", "not-a-jwt", `{"courseId":"`+course.ID+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLearnerSession(t *testing.T) {
	s := newTestServer(t)
	user, token := s.seedUser(t, "alice", model.RoleLearner)
	course := s.seedCourse(t, "golf")
	progressPath := "/api/scorm/users/" + user.ID + "/courses/" + course.ID + "/progress"

	w := s.do(http.MethodGet, progressPath, token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, util.ProgressNotAttempted, decode(t, w)["status"])

	w = s.do(http.MethodPost, "/api/scorm/launch", token, `{"courseId":"`+course.ID+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	launch := decode(t, w)
	attemptID := launch["attemptId"].(string)
	assert.Equal(t, false, launch["isResume"])
	assert.Equal(t, user.ID, launch["userId"])
	assert.True(t, strings.HasPrefix(launch["launchUrl"].(string), "/scorm-packages/courses/golf/index_lms.html?"))

	commitPath := "/api/scorm/attempts/" + attemptID + "/commit"
	w = s.do(http.MethodPost, commitPath, token,
		`{"payload":{"core":{"lesson_status":"incomplete","lesson_location":"p3","score":{"raw":"40","min":"0","max":"100"}}}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["saved"])

	w = s.do(http.MethodGet, progressPath, token, "")
	require.Equal(t, http.StatusOK, w.Code)
	progress := decode(t, w)
	assert.Equal(t, util.ProgressIncomplete, progress["status"])
	assert.Equal(t, "p3", progress["lessonLocation"])
	assert.Equal(t, "40", progress["score"])

	w = s.do(http.MethodPost, "/api/scorm/launch", token, `{"courseId":"`+course.ID+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	resumed := decode(t, w)
	assert.Equal(t, attemptID, resumed["attemptId"])
	assert.Equal(t, true, resumed["isResume"])

	w = s.do(http.MethodPost, "/api/scorm/attempts/"+attemptID+"/finish", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "finished", decode(t, w)["status"])

	w = s.do(http.MethodGet, progressPath, token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, util.ProgressCompleted, decode(t, w)["status"])

	w = s.do(http.MethodPost, "/api/scorm/attempts/"+attemptID+"/resume", token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/scorm/users/"+user.ID+"/courses/"+course.ID+"/attempts", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var attempts []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attempts))
	require.Len(t, attempts, 1)
	assert.Equal(t, attemptID, attempts[0]["attemptId"])
}

func TestCommitErrors(t *testing.T) {
	s := newTestServer(t)
	_, token := s.seedUser(t, "bob", model.RoleLearner)
	course := s.seedCourse(t, "golf")

	w := s.do(http.MethodPost, "/api/scorm/launch", token, `{"courseId":"`+course.ID+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	commitPath := "/api/scorm/attempts/" + decode(t, w)["attemptId"].(string) + "/commit"

	w = s.do(http.MethodPost, commitPath, token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, commitPath, token, `[1,2,3]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, util.ErrMalformedPayload.Error(), decode(t, w)["error"])

	w = s.do(http.MethodPost, "/api/scorm/attempts/"+model.GenerateUUID()+"/commit", token, `{"payload":{}}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/scorm/attempts/not-a-uuid/commit", token, `{"payload":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLearnerCannotTouchOthersAttempts(t *testing.T) {
	s := newTestServer(t)
	owner, ownerToken := s.seedUser(t, "carol", model.RoleLearner)
	_, otherToken := s.seedUser(t, "mallory", model.RoleLearner)
	_, adminToken := s.seedUser(t, "root", model.RoleAdmin)
	course := s.seedCourse(t, "golf")

	w := s.do(http.MethodPost, "/api/scorm/launch", ownerToken, `{"courseId":"`+course.ID+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	attemptID := decode(t, w)["attemptId"].(string)

	w = s.do(http.MethodPost, "/api/scorm/attempts/"+attemptID+"/commit", otherToken, `{"payload":{}}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/scorm/launch", otherToken, `{"userId":"`+owner.ID+`","courseId":"`+course.ID+`"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/scorm/users/"+owner.ID+"/courses/"+course.ID+"/progress", otherToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 管理员可以代为操作
	w = s.do(http.MethodPost, "/api/scorm/attempts/"+attemptID+"/commit", adminToken, `{"payload":{"core":{"lesson_location":"p1"}}}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCourseAdministration(t *testing.T) {
	s := newTestServer(t)
	_, learnerToken := s.seedUser(t, "dave", model.RoleLearner)
	_, adminToken := s.seedUser(t, "admin", model.RoleAdmin)

	body := `{"title":"Photoshop","version":"2004 4th Edition","packagePath":"courses/photoshop","launchScoId":"sco1",` +
		`"scos":[{"identifier":"sco1","title":"Intro","launchFile":"shared/launch.html"}]}`

	w := s.do(http.MethodPost, "/api/courses", learnerToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/courses", adminToken, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.writeFile(t, "courses/photoshop/imsmanifest.xml", "<manifest/>")
	s.writeFile(t, "courses/photoshop/shared/launch.html", "<html>photoshop</html>")
	w = s.do(http.MethodPost, "/api/courses", adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	courseID := decode(t, w)["data"].(map[string]interface{})["id"].(string)

	w = s.do(http.MethodGet, "/api/courses/"+courseID, learnerToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	scos := decode(t, w)["data"].(map[string]interface{})["scos"].([]interface{})
	assert.Len(t, scos, 1)

	w = s.do(http.MethodPost, "/api/scorm/launch", learnerToken, `{"courseId":"`+courseID+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	launchURL := decode(t, w)["launchUrl"].(string)
	assert.True(t, strings.HasPrefix(launchURL, "/scorm-packages/courses/photoshop/shared/launch.html?"))

	// 本地存储的课程包由同一服务托管
	w = s.do(http.MethodGet, "/scorm-packages/courses/photoshop/shared/launch.html", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "photoshop")

	w = s.do(http.MethodDelete, "/api/courses/"+courseID, adminToken, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodDelete, "/api/courses/"+model.GenerateUUID(), adminToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserRegistrationAndDevToken(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.seedUser(t, "admin", model.RoleAdmin)

	w := s.do(http.MethodPost, "/api/users", adminToken, `{"name":"Erin","email":"Erin@Example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/users", adminToken, `{"name":"Erin","email":"erin@example.com"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/auth/token", "", `{"email":"erin@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode(t, w)["data"].(map[string]interface{})["token"].(string)

	course := s.seedCourse(t, "golf")
	w = s.do(http.MethodPost, "/api/scorm/launch", token, `{"courseId":"`+course.ID+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/auth/token", "", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
