package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/hr-manager/internal/auth"
	"github.com/hugh/hr-manager/internal/database"
	"github.com/hugh/hr-manager/internal/database/models"
	"github.com/hugh/hr-manager/pkg/util"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestPassword    = "Testpassword1!"
	TestJWTSecret   = "test-secret-key-for-testing"
	TestFrontendURL = "http://localhost:3000"
)

// SetupTestDB creates an in-memory SQLite database with the schema applied.
// The pool is pinned to one connection: every new ":memory:" connection
// would otherwise get its own empty database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// Clock is a settable time source shared by the services under test.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now().UTC().Truncate(time.Second)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SentMail is one message captured by RecordingMailer.
type SentMail struct {
	To       string
	ResetURL string
}

// RecordingMailer captures reset emails instead of sending them.
type RecordingMailer struct {
	mu   sync.Mutex
	Sent []SentMail
	Err  error
}

func (m *RecordingMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{To: to, ResetURL: resetURL})
	return nil
}

// Last returns the most recent message, failing the test if none was sent.
func (m *RecordingMailer) Last(t *testing.T) SentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		t.Fatal("no reset email was sent")
	}
	return m.Sent[len(m.Sent)-1]
}

func (m *RecordingMailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// CreateTestUser creates an active user with TestPassword.
func CreateTestUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Nom:          "Dupont",
		Prenom:       "Claire",
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		Telephone:    "+33612345678",
		Role:         role,
		PasswordHash: hash,
		Active:       true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// SetUserActive flips the active flag directly in the database.
func SetUserActive(t *testing.T, db *gorm.DB, user *models.User, active bool) {
	t.Helper()
	if err := db.Model(user).Update("active", active).Error; err != nil {
		t.Fatalf("failed to update user: %v", err)
	}
}

// CreateTestPartner creates an active partner with the given SIREN.
func CreateTestPartner(t *testing.T, db *gorm.DB, siren string) *models.Partner {
	t.Helper()

	adresse := "10 rue de la Paix, 75002 Paris"
	partner := &models.Partner{
		NomCompagnie: fmt.Sprintf("Société %s", siren),
		Siren:        siren,
		NumeroTva:    "FR12" + siren,
		Contacts: []models.Contact{
			{Nom: "Martin", Prenom: "Luc", Email: "luc.martin@example.com", Telephone: "+33611223344"},
		},
		Activites: []string{"Conseil", "Formation"},
		Adresse:   &adresse,
		Active:    true,
	}

	if err := db.Create(partner).Error; err != nil {
		t.Fatalf("failed to create test partner: %v", err)
	}

	return partner
}

func CreateTestJWTService(clock *Clock) *auth.JWTService {
	return auth.NewJWTService(TestJWTSecret, 24*time.Hour).WithClock(clock.Now)
}

// GenerateTestToken generates a valid session token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.Email, user.Active)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates a JSON request carrying the session cookie.
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without a session.
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// SessionCookie returns the session cookie set on the response, or nil.
func SessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

// ResetTokenFromURL extracts the raw token from a reset link.
func ResetTokenFromURL(t *testing.T, resetURL string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, resetURL, nil)
	token := req.URL.Query().Get("token")
	if token == "" {
		t.Fatalf("reset URL has no token: %s", resetURL)
	}
	return token
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB          *gorm.DB
	Clock       *Clock
	JWTService  *auth.JWTService
	AuthService *auth.Service
	Mailer      *RecordingMailer
	Admin       *models.User
	AdminToken  string
}

// NewTestContext creates a complete test setup with a Super Admin and a
// session token for it.
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	clock := NewClock()
	jwtService := CreateTestJWTService(clock)
	mailer := &RecordingMailer{}
	authService := auth.NewService(db, jwtService, mailer, util.DiscardLogger(), auth.ServiceConfig{
		FrontendURL: TestFrontendURL,
		ResetTTL:    time.Hour,
	}, auth.WithClock(clock.Now))

	admin := CreateTestUser(t, db, models.RoleSuperAdmin)

	return &TestSetup{
		DB:          db,
		Clock:       clock,
		JWTService:  jwtService,
		AuthService: authService,
		Mailer:      mailer,
		Admin:       admin,
		AdminToken:  GenerateTestToken(t, jwtService, admin),
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		_ = database.Close(ts.DB)
	}
}
