package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/startupscout/scout-be/internal/api"
	"github.com/startupscout/scout-be/internal/auth"
	"github.com/startupscout/scout-be/internal/database"
	"github.com/startupscout/scout-be/internal/models"
	"github.com/startupscout/scout-be/internal/services"
	"github.com/stretchr/testify/require"
)

func testModelUser() models.User {
	return models.User{ID: "user-123", Username: "alice", UserType: models.UserTypeTraveler}
}

func newTestRouter(t *testing.T) (*chi.Mux, *sql.DB) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	tokens := auth.NewTokenManager("test-secret")
	userService := services.NewUserService(db)
	return api.NewRouter(tokens, userService, db, []string{"http://localhost:3000"}), db
}

// doJSON performs a request against the router and returns the
// recorder. A non-empty token goes out as a bearer Authorization
// header.
func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func registerAlice(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"password": "pw1",
		"email":    "a@x.com",
		"userType": "traveler",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	userID, _ := decode(t, rec)["userId"].(string)
	require.NotEmpty(t, userID)
	return userID
}

func loginAlice(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "pw1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAccountLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	registerAlice(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "pw1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	token := body["token"].(string)
	user := body["user"].(map[string]interface{})
	require.Equal(t, "alice", user["username"])
	require.NotContains(t, user, "passwordHash")

	// Fresh profile: zero counters.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 0, decode(t, rec)["points"])

	// Bump points, re-fetch.
	rec = doJSON(t, router, http.MethodPut, "/api/v1/user", token, map[string]interface{}{"points": 10})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 10, decode(t, rec)["points"])
}

func TestRegister_MissingFieldsAndConflict(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	registerAlice(t, router)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"password": "other",
		"email":    "other@x.com",
		"userType": "founder",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode(t, rec)["error"], "already exists")
}

func TestLogin_FailureShapesAreIdentical(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAlice(t, router)

	wrongPw := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	noUser := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "mallory", "password": "wrong",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	require.Equal(t, http.StatusUnauthorized, noUser.Code)
	// Byte-identical bodies: a caller cannot tell a bad password from a
	// nonexistent account.
	require.Equal(t, wrongPw.Body.String(), noUser.Body.String())
}

func TestAuthGate(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/user", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/user", "not.a.jwt", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// A token signed with a different secret is forbidden, not merely
	// unauthorized.
	other := auth.NewTokenManager("other-secret")
	tok, err := other.Generate(testModelUser())
	require.NoError(t, err)
	rec = doJSON(t, router, http.MethodGet, "/api/v1/user", tok, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdate_AllowListFiltering(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAlice(t, router)
	token := loginAlice(t, router)

	// Unknown fields are dropped silently; known ones still apply.
	rec := doJSON(t, router, http.MethodPut, "/api/v1/user", token, map[string]interface{}{
		"points":     5,
		"bogusField": "x",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/user", token, nil)
	require.EqualValues(t, 5, decode(t, rec)["points"])

	// A payload with nothing but unknown fields is an error.
	rec = doJSON(t, router, http.MethodPut, "/api/v1/user", token, map[string]interface{}{
		"bogusField": "x",
		"username":   "eve", // identity fields are not updatable either
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdate_ListReplacement(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAlice(t, router)
	token := loginAlice(t, router)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/user", token, map[string]interface{}{
		"bookmarkedStartups": []string{"a", "b"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/user", token, nil)
	require.Equal(t, []interface{}{"a", "b"}, decode(t, rec)["bookmarkedStartups"])
}

func TestGetUser_RowGone(t *testing.T) {
	router, db := newTestRouter(t)
	registerAlice(t, router)
	token := loginAlice(t, router)

	// Simulate out-of-band deletion; the service itself has no delete.
	_, err := db.Exec("DELETE FROM users WHERE username = ?", "alice")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/user", token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode(t, rec)["status"])
}
