package helpers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"bizdir_backend/database"
	"bizdir_backend/internal/app"
	"bizdir_backend/internal/auth"
	"bizdir_backend/internal/config"
	"bizdir_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var testDB *gorm.DB

// Setup opens the integration database once per test binary. With no
// TEST_DATABASE_URL the pool stays nil and every test using
// NewTestServer skips itself.
func Setup() error {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return nil
	}

	os.Setenv("DATABASE_URL", dsn)
	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET", "integration-test-secret")
	}
	if os.Getenv("SERVER_ENV") == "" {
		os.Setenv("SERVER_ENV", "development")
	}
	config.LoadConfig()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("open test database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate test database: %w", err)
	}

	testDB = db
	return nil
}

// NewTestServer returns a router bound to a per-test transaction. The
// transaction rolls back on cleanup, so tests never see each other's
// rows.
func NewTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	if testDB == nil {
		t.Skip("TEST_DATABASE_URL is not set, skipping integration test")
	}

	tx := testDB.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() { tx.Rollback() })

	return app.SetupRouter(config.GetConfig(), tx), tx
}

// ---------------- Fixtures ----------------

func CreateUser(t *testing.T, tx *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, tx.Create(user).Error)
	return user
}

func CreateCompany(t *testing.T, tx *gorm.DB, email string) *models.Company {
	t.Helper()

	company := &models.Company{
		Email:       email,
		Name:        "Test Company",
		ContactName: "Test Contact",
		City:        "Almaty",
		IsActive:    true,
	}
	require.NoError(t, tx.Create(company).Error)
	return company
}

func TokenForUser(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := auth.GenerateToken(user.ID, models.RecipientKindIndividual, user.Email, user.Role)
	require.NoError(t, err)
	return token
}

func TokenForCompany(t *testing.T, company *models.Company) string {
	t.Helper()

	token, err := auth.GenerateToken(company.ID, models.RecipientKindCompany, company.Email, models.UserRoleMember)
	require.NoError(t, err)
	return token
}

// ---------------- Requests ----------------

// DoJSON performs one request against the router. A nil body sends no
// payload; an empty token sends no Authorization header.
func DoJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

// DecodeJSON unmarshals a response body, failing the test on bad JSON.
func DecodeJSON(t *testing.T, recorder *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), target),
		"response body: %s", recorder.Body.String())
}
