package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bitcoinperu/comunidad/api"
	"github.com/bitcoinperu/comunidad/internal/community"
	"github.com/bitcoinperu/comunidad/internal/database"
	"github.com/bitcoinperu/comunidad/internal/directory"
	"github.com/bitcoinperu/comunidad/internal/identities"
	"github.com/bitcoinperu/comunidad/internal/price"
	"github.com/bitcoinperu/comunidad/pkg/models"
)

func setupServer(t *testing.T) (*api.Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	logger := zap.NewNop()
	ids := identities.NewService(logger, db, time.Hour)
	comm := community.NewService(logger, db)
	dir := directory.NewService(logger, db)
	prices := &stubPriceService{quote: price.Quote{PEN: 185000, Provider: "Buda", Timestamp: 1700000000000}}

	srv := api.NewServer(logger, api.Config{SessionTTL: time.Hour, RateLimit: "1000-M"}, prices, ids, comm, dir)
	return srv, db
}

func doJSON(t *testing.T, srv *api.Server, method, path string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, srv *api.Server, email, username string) []*http.Cookie {
	t.Helper()
	w := doJSON(t, srv, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Email:       email,
		Username:    username,
		Password:    "supersecret1",
		DisplayName: "Test User",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, srv, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Login:    email,
		Password: "supersecret1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestHealth(t *testing.T) {
	srv, _ := setupServer(t)
	w := doJSON(t, srv, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthFlowAndPostCRUD(t *testing.T) {
	srv, _ := setupServer(t)

	// Posting requires a session.
	w := doJSON(t, srv, http.MethodPost, "/api/posts", models.PostRequest{Title: "hola", Body: "mundo"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cookies := registerAndLogin(t, srv, "ana@example.com", "ana")

	w = doJSON(t, srv, http.MethodPost, "/api/posts", models.PostRequest{
		Title: "Primer meetup en Lima",
		Body:  "<p>Nos vemos el sábado</p><script>alert(1)</script>",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var post models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	assert.NotContains(t, post.Body, "<script>", "post body must be sanitized")
	assert.Contains(t, post.Body, "Nos vemos")

	// Public listing works without a session.
	w = doJSON(t, srv, http.MethodGet, "/api/posts", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var posts []models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 1)

	// Another member cannot edit someone else's post.
	other := registerAndLogin(t, srv, "beto@example.com", "beto")
	w = doJSON(t, srv, http.MethodPut, "/api/posts/"+post.ID.String(), models.PostRequest{Title: "hack", Body: "x"}, other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The author can delete it.
	w = doJSON(t, srv, http.MethodDelete, "/api/posts/"+post.ID.String(), nil, cookies)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	srv, _ := setupServer(t)
	cookies := registerAndLogin(t, srv, "carla@example.com", "carla")

	w := doJSON(t, srv, http.MethodPost, "/api/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/auth/me", nil, cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDirectoryApprovalFlow(t *testing.T) {
	srv, db := setupServer(t)
	member := registerAndLogin(t, srv, "dani@example.com", "dani")

	w := doJSON(t, srv, http.MethodPost, "/api/directory", models.BusinessRequest{
		Name:     "Café Satoshi",
		Category: "cafetería",
		District: "Miraflores",
	}, member)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var business models.Business
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &business))

	// Unapproved entries are hidden from the public listing.
	w = doJSON(t, srv, http.MethodGet, "/api/directory", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Business
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Empty(t, listed)

	// Members cannot reach admin routes.
	w = doJSON(t, srv, http.MethodGet, "/api/admin/directory/pending", nil, member)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Promote an admin and approve.
	admin := registerAndLogin(t, srv, "admin@example.com", "admin")
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "admin").Update("role", "admin").Error)

	w = doJSON(t, srv, http.MethodGet, "/api/admin/directory/pending", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []models.Business
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 1)

	w = doJSON(t, srv, http.MethodPost, "/api/admin/directory/"+business.ID.String()+"/approve", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/directory", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Café Satoshi", listed[0].Name)
}

func TestCarouselAdminOnly(t *testing.T) {
	srv, db := setupServer(t)
	member := registerAndLogin(t, srv, "eva@example.com", "eva")

	slide := models.SlideRequest{ImageURL: "https://example.com/btc.png", Caption: "Bitcoin en Perú", Position: 1, Active: true}
	w := doJSON(t, srv, http.MethodPost, "/api/admin/carousel", slide, member)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "eva").Update("role", "admin").Error)
	w = doJSON(t, srv, http.MethodPost, "/api/admin/carousel", slide, member)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, srv, http.MethodGet, "/api/carousel", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var slides []models.CarouselSlide
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slides))
	require.Len(t, slides, 1)
}
