package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-backend/auth"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/media"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type testEnv struct {
	t          *testing.T
	handler    http.Handler
	db         database.Database
	gdb        *gorm.DB
	uploadRoot string
	cookie     *http.Cookie
	csrf       string
}

type testResponse struct {
	Code    int
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Field   string          `json:"field"`
	Data    json.RawMessage `json:"data"`
	header  http.Header
	body    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	gdb, err := database.OpenSQLite(filepath.Join(dir, "portfolio.db"), nil)
	require.NoError(t, err)
	db := database.New(gdb)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { db.Close() })

	_, err = services.EnsureDefaultAdmin(ctx, db.AdminRepo())
	require.NoError(t, err)

	settings := config.Settings{
		SessionTTL:     time.Hour,
		CSRFEnabled:    true,
		CSRFSecret:     "test-secret",
		MaxUploadBytes: 1 << 20,
		LogFormat:      "json",
	}
	router, err := newRouter(Dependencies{
		Database: db,
		Sessions: auth.NewMemoryStore(),
		Media:    media.NewLocalStore(dir, settings.MaxUploadBytes),
	}, settings)
	require.NoError(t, err)

	return &testEnv{t: t, handler: router, db: db, gdb: gdb, uploadRoot: dir}
}

func (e *testEnv) send(req *http.Request) testResponse {
	e.t.Helper()
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	res := testResponse{Code: rec.Code, header: rec.Header(), body: rec.Body.String()}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	}
	return res
}

// do sends body as JSON and attaches the CSRF header when a token is held.
func (e *testEnv) do(method, target string, body any, headers ...string) testResponse {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.csrf != "" {
		req.Header.Set(csrfHeader, e.csrf)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return e.send(req)
}

func (e *testEnv) login(username, password string) testResponse {
	e.t.Helper()
	res := e.do(http.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": password})
	if res.Code != http.StatusOK {
		return res
	}
	for _, c := range res.header.Values("Set-Cookie") {
		parsed, err := http.ParseSetCookie(c)
		require.NoError(e.t, err)
		if parsed.Name == sessionCookieName {
			e.cookie = &http.Cookie{Name: parsed.Name, Value: parsed.Value}
		}
	}
	var session SessionResponse
	require.NoError(e.t, json.Unmarshal(res.Data, &session))
	e.csrf = session.CSRFToken
	return res
}

func (e *testEnv) loginAdmin() {
	e.t.Helper()
	res := e.login(services.DefaultAdminUsername, services.DefaultAdminPassword)
	require.Equal(e.t, http.StatusOK, res.Code, res.body)
}

func (e *testEnv) createSkill(body map[string]any) int64 {
	e.t.Helper()
	res := e.do(http.MethodPost, "/api/skills", body)
	require.Equal(e.t, http.StatusOK, res.Code, res.body)
	var created createdResponse
	require.NoError(e.t, json.Unmarshal(res.Data, &created))
	return created.ID
}

func (e *testEnv) getSkill(id int64) *models.Skill {
	e.t.Helper()
	res := e.do(http.MethodGet, "/api/skills?id="+itoa(id), nil)
	require.Equal(e.t, http.StatusOK, res.Code, res.body)
	var skill models.Skill
	require.NoError(e.t, json.Unmarshal(res.Data, &skill))
	return &skill
}

func (e *testEnv) getProject(id int64) testResponse {
	e.t.Helper()
	return e.do(http.MethodGet, "/api/projects?id="+itoa(id), nil)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestWriteWithoutSessionIsRejected(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(http.MethodPost, "/api/skills", map[string]any{"name": "Go", "level": 90, "category": "Backend"})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.False(t, res.Success)
	assert.Equal(t, "Unauthorized", res.Message)

	skills, err := env.db.SkillRepo().FindAll(context.Background(), database.SkillFilter{})
	require.NoError(t, err)
	assert.Empty(t, skills)

	res = env.do(http.MethodDelete, "/api/projects?id=1", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	res := env.login("nobody", "whatever")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "Admin user not found", res.Message)

	res = env.login(services.DefaultAdminUsername, "wrong-password")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "Wrong credentials", res.Message)

	res = env.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "password", res.Field)

	env.loginAdmin()
	assert.NotNil(t, env.cookie)
	assert.NotEmpty(t, env.csrf)

	res = env.do(http.MethodGet, "/api/auth/session", nil)
	require.Equal(t, http.StatusOK, res.Code)
	var session SessionResponse
	require.NoError(t, json.Unmarshal(res.Data, &session))
	assert.Equal(t, services.DefaultAdminUsername, session.Username)
}

func TestLoginRegeneratesSession(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()
	first := env.cookie

	env.loginAdmin()
	require.NotEqual(t, first.Value, env.cookie.Value)

	current := env.cookie
	env.cookie = first
	res := env.do(http.MethodGet, "/api/auth/session", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	env.cookie = current
	res = env.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, res.Code, res.body)
	res = env.do(http.MethodGet, "/api/auth/session", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestCSRFIsRequired(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()
	token := env.csrf

	env.csrf = ""
	res := env.do(http.MethodPost, "/api/skills", map[string]any{"name": "Go", "level": 90, "category": "Backend"})
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "Invalid CSRF token", res.Message)

	env.csrf = token + "x"
	res = env.do(http.MethodPost, "/api/skills", map[string]any{"name": "Go", "level": 90, "category": "Backend"})
	assert.Equal(t, http.StatusForbidden, res.Code)

	skills, err := env.db.SkillRepo().FindAll(context.Background(), database.SkillFilter{})
	require.NoError(t, err)
	assert.Empty(t, skills)

	// the token can also travel as a form field
	env.csrf = ""
	form := url.Values{
		"name":       {"Go"},
		"level":      {"90"},
		"category":   {"Backend"},
		"csrf_token": {token},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/skills", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res = env.send(req)
	assert.Equal(t, http.StatusOK, res.Code, res.body)
}

func TestSkillRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	id := env.createSkill(map[string]any{"name": "  Go  ", "level": "90", "category": "Backend"})
	skill := env.getSkill(id)
	assert.Equal(t, "Go", skill.Name)
	assert.Equal(t, 90, skill.Level)
	assert.Equal(t, "Backend", skill.Category)
	assert.Equal(t, models.IconTypeText, skill.IconType)
	assert.Equal(t, models.DefaultSkillColor, skill.Color)
	assert.True(t, skill.IsActive)

	res := env.do(http.MethodPatch, "/api/skills", map[string]any{"id": id, "level": 0})
	require.Equal(t, http.StatusOK, res.Code, res.body)
	assert.Equal(t, "Skill updated successfully", res.Message)
	assert.Equal(t, 0, env.getSkill(id).Level)

	res = env.do(http.MethodPatch, "/api/skills?id="+itoa(id), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "No fields to update", res.Message)

	res = env.do(http.MethodPost, "/api/skills", map[string]any{"id": id, "name": "Golang", "level": 80, "category": "Backend", "color": "#00add8"})
	require.Equal(t, http.StatusOK, res.Code, res.body)
	skill = env.getSkill(id)
	assert.Equal(t, "Golang", skill.Name)
	assert.Equal(t, "#00add8", skill.Color)

	res = env.do(http.MethodDelete, "/api/skills?id="+itoa(id), nil)
	require.Equal(t, http.StatusOK, res.Code, res.body)
	assert.Equal(t, "Skill deleted successfully", res.Message)

	res = env.do(http.MethodGet, "/api/skills?id="+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "Skill not found", res.Message)

	res = env.do(http.MethodDelete, "/api/skills?id="+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestSkillValidation(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	tests := []struct {
		name    string
		body    map[string]any
		field   string
		message string
	}{
		{"level above range", map[string]any{"name": "Go", "level": 101, "category": "Backend"}, "level", "Level must be between 0 and 100"},
		{"level below range", map[string]any{"name": "Go", "level": -1, "category": "Backend"}, "level", "Level must be between 0 and 100"},
		{"missing name", map[string]any{"level": 50, "category": "Backend"}, "name", "Field 'name' is required"},
		{"unknown category", map[string]any{"name": "Go", "level": 50, "category": "Cooking"}, "category", "Invalid category"},
		{"level not a number", map[string]any{"name": "Go", "level": "lots", "category": "Backend"}, "level", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.do(http.MethodPost, "/api/skills", tt.body)
			assert.Equal(t, http.StatusBadRequest, res.Code)
			assert.Equal(t, tt.field, res.Field)
			if tt.message != "" {
				assert.Equal(t, tt.message, res.Message)
			}
		})
	}

	res := env.do(http.MethodPost, "/api/skills", nil, "Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, res.Code)

	skills, err := env.db.SkillRepo().FindAll(context.Background(), database.SkillFilter{})
	require.NoError(t, err)
	assert.Empty(t, skills)
}

func TestSkillIdempotency(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()
	body := map[string]any{"name": "Go", "level": 90, "category": "Backend"}

	first := env.do(http.MethodPost, "/api/skills", body, "Idempotency-Key", "retry-1")
	require.Equal(t, http.StatusOK, first.Code, first.body)
	assert.Equal(t, "Skill created successfully", first.Message)

	second := env.do(http.MethodPost, "/api/skills", body, "Idempotency-Key", "retry-1")
	require.Equal(t, http.StatusOK, second.Code, second.body)
	assert.Equal(t, "Skill already exists", second.Message)
	assert.JSONEq(t, string(first.Data), string(second.Data))

	body["request_id"] = "retry-2"
	env.createSkill(body)
	env.createSkill(body)

	skills, err := env.db.SkillRepo().FindAll(context.Background(), database.SkillFilter{})
	require.NoError(t, err)
	assert.Len(t, skills, 2)
}

func TestSkillIdempotencyKeyLength(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()
	body := map[string]any{"name": "Go", "level": 90, "category": "Backend"}
	prefix := strings.Repeat("k", 64)

	// keys sharing their first 64 characters must never collide
	for _, key := range []string{prefix + "-first", prefix + "-second"} {
		res := env.do(http.MethodPost, "/api/skills", body, "Idempotency-Key", key)
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "request_id", res.Field)
	}
	body["request_id"] = prefix + "-third"
	res := env.do(http.MethodPost, "/api/skills", body)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	skills, err := env.db.SkillRepo().FindAll(context.Background(), database.SkillFilter{})
	require.NoError(t, err)
	assert.Empty(t, skills)

	// the limit counts characters, not bytes
	delete(body, "request_id")
	wide := strings.Repeat("é", 64)
	first := env.do(http.MethodPost, "/api/skills", body, "Idempotency-Key", wide)
	require.Equal(t, http.StatusOK, first.Code, first.body)
	second := env.do(http.MethodPost, "/api/skills", body, "Idempotency-Key", wide)
	require.Equal(t, http.StatusOK, second.Code, second.body)
	assert.Equal(t, "Skill already exists", second.Message)

	env.createSkill(body)
	skills, err = env.db.SkillRepo().FindAll(context.Background(), database.SkillFilter{})
	require.NoError(t, err)
	assert.Len(t, skills, 2)
}

func TestSkillListingFiltersAndGroups(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	env.createSkill(map[string]any{"name": "Rust", "level": 60, "category": "Backend", "display_order": 2})
	env.createSkill(map[string]any{"name": "Go", "level": 90, "category": "Backend", "display_order": 1})
	env.createSkill(map[string]any{"name": "React", "level": 70, "category": "Frontend", "display_order": 1})
	env.createSkill(map[string]any{"name": "Perl", "level": 10, "category": "Other", "is_active": "0"})

	res := env.do(http.MethodGet, "/api/skills?active_only=1", nil)
	require.Equal(t, http.StatusOK, res.Code, res.body)
	var list SkillCollection
	require.NoError(t, json.Unmarshal(res.Data, &list))

	require.Equal(t, 3, list.Total)
	var names []string
	for _, s := range list.Skills {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Go", "React", "Rust"}, names)
	require.Len(t, list.Grouped["Backend"], 2)
	assert.Equal(t, "Go", list.Grouped["Backend"][0].Name)
	assert.Len(t, list.Grouped["Frontend"], 1)
	assert.NotContains(t, list.Grouped, "Other")

	res = env.do(http.MethodGet, "/api/skills?category=Other", nil)
	require.NoError(t, json.Unmarshal(res.Data, &list))
	assert.Equal(t, 1, list.Total)
}

func TestProjectTechStack(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	res := env.do(http.MethodPost, "/api/projects", map[string]any{
		"title":       "Site",
		"description": "My site",
		"tech_stack":  "Go, Rust, TypeScript",
	})
	require.Equal(t, http.StatusOK, res.Code, res.body)
	var created createdResponse
	require.NoError(t, json.Unmarshal(res.Data, &created))

	res = env.getProject(created.ID)
	require.Equal(t, http.StatusOK, res.Code)
	var project models.Project
	require.NoError(t, json.Unmarshal(res.Data, &project))
	assert.Equal(t, []string{"Go", "Rust", "TypeScript"}, []string(project.TechStack))
	assert.True(t, project.IsActive)
	assert.False(t, project.IsFeatured)
	assert.Nil(t, project.ImagePath)

	res = env.do(http.MethodPatch, "/api/projects", map[string]any{"id": created.ID, "tech_stack": []string{"Go"}, "is_featured": true})
	require.Equal(t, http.StatusOK, res.Code, res.body)

	res = env.do(http.MethodGet, "/api/projects?featured_only=true", nil)
	var list ProjectCollection
	require.NoError(t, json.Unmarshal(res.Data, &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, []string{"Go"}, []string(list.Projects[0].TechStack))

	res = env.do(http.MethodPost, "/api/projects", map[string]any{"title": "Missing description"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "description", res.Field)
}

func multipartProject(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "shot.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestProjectImageLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	body, ct := multipartProject(t, map[string]string{
		"title":        "Portfolio",
		"description":  "This site",
		"tech_stack[]": "Go",
	}, pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/projects", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set(csrfHeader, env.csrf)
	res := env.send(req)
	require.Equal(t, http.StatusOK, res.Code, res.body)
	var created createdResponse
	require.NoError(t, json.Unmarshal(res.Data, &created))

	var project models.Project
	require.NoError(t, json.Unmarshal(env.getProject(created.ID).Data, &project))
	require.True(t, project.HasImage())
	assert.True(t, strings.HasPrefix(*project.ImagePath, media.Prefix))
	assert.True(t, strings.HasSuffix(*project.ImagePath, ".png"))
	firstImage := filepath.Join(env.uploadRoot, filepath.FromSlash(*project.ImagePath))
	require.FileExists(t, firstImage)

	served := env.do(http.MethodGet, "/"+*project.ImagePath, nil)
	assert.Equal(t, http.StatusOK, served.Code)

	// replacing the image removes the old file
	body, ct = multipartProject(t, map[string]string{"id": itoa(created.ID)}, pngHeader)
	req = httptest.NewRequest(http.MethodPatch, "/api/projects", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set(csrfHeader, env.csrf)
	res = env.send(req)
	require.Equal(t, http.StatusOK, res.Code, res.body)
	assert.NoFileExists(t, firstImage)

	require.NoError(t, json.Unmarshal(env.getProject(created.ID).Data, &project))
	secondImage := filepath.Join(env.uploadRoot, filepath.FromSlash(*project.ImagePath))
	require.FileExists(t, secondImage)

	res = env.do(http.MethodDelete, "/api/projects?id="+itoa(created.ID), nil)
	require.Equal(t, http.StatusOK, res.Code, res.body)
	assert.Equal(t, "Project deleted successfully", res.Message)
	assert.NoFileExists(t, secondImage)

	res = env.getProject(created.ID)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "Project not found", res.Message)
}

func TestProjectRejectsNonImageUpload(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	body, ct := multipartProject(t, map[string]string{"title": "Bad", "description": "upload"}, []byte("#!/bin/sh\necho hi\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/projects", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set(csrfHeader, env.csrf)
	res := env.send(req)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "image", res.Field)

	projects, err := env.db.ProjectRepo().FindAll(context.Background(), database.ProjectFilter{})
	require.NoError(t, err)
	assert.Empty(t, projects)

	assert.Empty(t, env.storedImages())
}

// sendMultipart posts a multipart project body, attaching the CSRF header when a token is held.
func (e *testEnv) sendMultipart(method string, fields map[string]string, image []byte) testResponse {
	e.t.Helper()
	body, ct := multipartProject(e.t, fields, image)
	req := httptest.NewRequest(method, "/api/projects", body)
	req.Header.Set("Content-Type", ct)
	if e.csrf != "" {
		req.Header.Set(csrfHeader, e.csrf)
	}
	return e.send(req)
}

// storedImages lists the files under the local project upload directory.
func (e *testEnv) storedImages() []string {
	e.t.Helper()
	entries, err := os.ReadDir(filepath.Join(e.uploadRoot, filepath.FromSlash(media.Prefix)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(e.t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func (e *testEnv) projectCount() int {
	e.t.Helper()
	projects, err := e.db.ProjectRepo().FindAll(context.Background(), database.ProjectFilter{})
	require.NoError(e.t, err)
	return len(projects)
}

// failProjectWrites makes every gorm operation of the given kind on the projects table fail.
func (e *testEnv) failProjectWrites(kind string) {
	e.t.Helper()
	fail := func(tx *gorm.DB) {
		if tx.Statement.Table == "projects" {
			tx.AddError(errors.New("disk full"))
		}
	}
	var err error
	switch kind {
	case "create":
		err = e.gdb.Callback().Create().Before("gorm:create").Register("test:fail_project_create", fail)
	case "update":
		err = e.gdb.Callback().Update().Before("gorm:update").Register("test:fail_project_update", fail)
	default:
		e.t.Fatalf("unknown write kind %q", kind)
	}
	require.NoError(e.t, err)
}

func TestProjectInsertFailureRemovesImage(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()
	env.failProjectWrites("create")

	res := env.sendMultipart(http.MethodPost, map[string]string{"title": "Site", "description": "About"}, pngHeader)
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.False(t, res.Success)

	assert.Equal(t, 0, env.projectCount())
	assert.Empty(t, env.storedImages())
}

func TestProjectUpdateFailureKeepsOldImage(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	res := env.sendMultipart(http.MethodPost, map[string]string{"title": "Site", "description": "About"}, pngHeader)
	require.Equal(t, http.StatusOK, res.Code, res.body)
	var created createdResponse
	require.NoError(t, json.Unmarshal(res.Data, &created))

	var project models.Project
	require.NoError(t, json.Unmarshal(env.getProject(created.ID).Data, &project))
	require.True(t, project.HasImage())
	oldImage := *project.ImagePath

	env.failProjectWrites("update")

	res = env.sendMultipart(http.MethodPatch, map[string]string{"id": itoa(created.ID)}, pngHeader)
	assert.Equal(t, http.StatusInternalServerError, res.Code)

	res = env.sendMultipart(http.MethodPost, map[string]string{"id": itoa(created.ID), "title": "New", "description": "Replaced"}, pngHeader)
	assert.Equal(t, http.StatusInternalServerError, res.Code)

	require.NoError(t, json.Unmarshal(env.getProject(created.ID).Data, &project))
	require.NotNil(t, project.ImagePath)
	assert.Equal(t, oldImage, *project.ImagePath)
	assert.Equal(t, "Site", project.Title)
	assert.Equal(t, []string{path.Base(oldImage)}, env.storedImages())
}

func TestProjectRemoveImage(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	res := env.sendMultipart(http.MethodPost, map[string]string{"title": "Site", "description": "About"}, pngHeader)
	require.Equal(t, http.StatusOK, res.Code, res.body)
	var created createdResponse
	require.NoError(t, json.Unmarshal(res.Data, &created))
	require.Len(t, env.storedImages(), 1)

	res = env.do(http.MethodPatch, "/api/projects", map[string]any{"id": created.ID, "remove_image": true})
	require.Equal(t, http.StatusOK, res.Code, res.body)

	var project models.Project
	require.NoError(t, json.Unmarshal(env.getProject(created.ID).Data, &project))
	assert.Nil(t, project.ImagePath)
	assert.Equal(t, "Site", project.Title)
	assert.Empty(t, env.storedImages())
}

func TestProjectUploadSizeLimits(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()
	fields := map[string]string{"title": "Site", "description": "About"}

	// larger than the stored-image limit but within the request cap
	tooBig := append(append([]byte{}, pngHeader...), make([]byte, 3<<19)...)
	res := env.sendMultipart(http.MethodPost, fields, tooBig)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Failed to upload image", res.Message)
	assert.Equal(t, "image", res.Field)

	// larger than the request cap itself
	huge := append(append([]byte{}, pngHeader...), make([]byte, 3<<20)...)
	res = env.sendMultipart(http.MethodPost, fields, huge)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Failed to upload image", res.Message)
	assert.Equal(t, "image", res.Field)

	assert.Equal(t, 0, env.projectCount())
	assert.Empty(t, env.storedImages())
}

func TestCSRFFormFieldOnOversizedBody(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()
	token := env.csrf
	env.csrf = ""

	huge := append(append([]byte{}, pngHeader...), make([]byte, 3<<20)...)
	res := env.sendMultipart(http.MethodPost, map[string]string{"csrf_token": token, "title": "Site", "description": "About"}, huge)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Failed to upload image", res.Message)

	res = env.sendMultipart(http.MethodPost, map[string]string{"csrf_token": token, "title": "Site", "description": "About"}, pngHeader)
	assert.Equal(t, http.StatusOK, res.Code, res.body)
	assert.Equal(t, 1, env.projectCount())
}

func TestPostRejectsNonPositiveID(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	for _, id := range []int{0, -3} {
		res := env.do(http.MethodPost, "/api/skills", map[string]any{"id": id, "name": "Go", "level": 90, "category": "Backend"})
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "id", res.Field)
		assert.Equal(t, "Invalid id", res.Message)

		res = env.do(http.MethodPost, "/api/projects", map[string]any{"id": id, "title": "Site", "description": "About"})
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Invalid id", res.Message)
	}

	skills, err := env.db.SkillRepo().FindAll(context.Background(), database.SkillFilter{})
	require.NoError(t, err)
	assert.Empty(t, skills)
	assert.Equal(t, 0, env.projectCount())

	// a blank hidden id in a form still creates
	form := url.Values{"id": {""}, "name": {"Go"}, "level": {"90"}, "category": {"Backend"}}
	req := httptest.NewRequest(http.MethodPost, "/api/skills", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(csrfHeader, env.csrf)
	res := env.send(req)
	assert.Equal(t, http.StatusOK, res.Code, res.body)
	assert.Equal(t, "Skill created successfully", res.Message)
}

func TestSettings(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	res := env.do(http.MethodPut, "/api/settings", map[string]string{"new_password": "secret1", "confirm_password": "secret2"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "New passwords do not match", res.Message)

	res = env.do(http.MethodPut, "/api/settings", map[string]string{"new_password": "abc", "confirm_password": "abc"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Password must be at least 6 characters", res.Message)

	res = env.do(http.MethodPut, "/api/settings", map[string]string{"new_username": services.DefaultAdminUsername})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "No changes were made", res.Message)

	res = env.do(http.MethodPut, "/api/settings", map[string]string{
		"new_username":     "owner",
		"new_password":     "s3cret!",
		"confirm_password": "s3cret!",
	})
	require.Equal(t, http.StatusOK, res.Code, res.body)

	res = env.do(http.MethodGet, "/api/auth/session", nil)
	var session SessionResponse
	require.NoError(t, json.Unmarshal(res.Data, &session))
	assert.Equal(t, "owner", session.Username)

	res = env.login(services.DefaultAdminUsername, services.DefaultAdminPassword)
	assert.Equal(t, http.StatusNotFound, res.Code)
	res = env.login("owner", "s3cret!")
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestSettingsRejectsTakenUsername(t *testing.T) {
	env := newTestEnv(t)
	hash, err := auth.HashPassword("another1")
	require.NoError(t, err)
	require.NoError(t, env.db.AdminRepo().Add(context.Background(), &models.Admin{Username: "other", Password: hash}))
	env.loginAdmin()

	res := env.do(http.MethodPut, "/api/settings", map[string]string{"new_username": "other"})
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Equal(t, "Username is already taken", res.Message)
}

func TestRouterFallbacks(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(http.MethodGet, "/api/auth/login", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, res.Code)
	assert.Equal(t, "Method not allowed", res.Message)

	res = env.do(http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.False(t, res.Success)

	res = env.do(http.MethodGet, "/api/skills?id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "id", res.Field)
}

func TestPages(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()
	env.createSkill(map[string]any{"name": "<Go>", "level": 90, "category": "Backend"})

	res := env.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.body, "&lt;Go&gt;")
	assert.NotContains(t, res.body, "<Go>")

	res = env.do(http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.body, `name="csrf-token"`)
	assert.Contains(t, res.body, services.DefaultAdminUsername)

	env.cookie = nil
	res = env.do(http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/admin/login", res.header.Get("Location"))
}
