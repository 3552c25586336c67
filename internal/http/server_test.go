package httpapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/inkwell-api/inkwell/internal/auth"
	"github.com/inkwell-api/inkwell/internal/config"
	"github.com/inkwell-api/inkwell/internal/model"
	"github.com/inkwell-api/inkwell/internal/rate"
	"github.com/inkwell-api/inkwell/internal/store"
	"github.com/inkwell-api/inkwell/internal/store/memory"
)

type allowAllLimiter struct{}

func (a allowAllLimiter) Allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	return true, 0
}

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st := memory.New()
	seedTestUser(t, st, "mara", "maras-password", model.RoleStandard)
	seedTestUser(t, st, "theo", "theos-password", model.RoleStandard)
	seedTestUser(t, st, "admin", "admins-password", model.RoleAdmin)

	cfg := config.Config{
		RateLimits: config.RateLimits{LoginPerMinute: 100, PostPerMinute: 100, CommentPerMinute: 100},
		Version:    "test",
	}
	authSvc := auth.NewService(st, time.Hour)
	return NewServer(st, authSvc, allowAllLimiter{}, cfg), st
}

func seedTestUser(t *testing.T, st store.Store, username, password, role string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := st.CreateUser(context.Background(), &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}
}

func doRequest(t *testing.T, server *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	server.ServeHTTP(resp, req)
	return resp
}

func loginAs(t *testing.T, server *Server, username, password string) string {
	t.Helper()
	body := `{"username":"` + username + `","password":"` + password + `"}`
	resp := doRequest(t, server, http.MethodPost, "/api/login", "", body)
	if resp.Code != http.StatusOK {
		t.Fatalf("login as %s: expected 200, got %d: %s", username, resp.Code, resp.Body.String())
	}
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse login response: %v", err)
	}
	return payload.AccessToken
}

func createTestPost(t *testing.T, server *Server, token, title, content string, tags []string) int64 {
	t.Helper()
	body := map[string]any{"title": title, "content": content}
	if tags != nil {
		body["tags"] = tags
	}
	raw, _ := json.Marshal(body)
	resp := doRequest(t, server, http.MethodPost, "/api/posts", token, string(raw))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create post: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var post model.Post
	if err := json.Unmarshal(resp.Body.Bytes(), &post); err != nil {
		t.Fatalf("parse post: %v", err)
	}
	return post.ID
}

func TestIndexJSON(t *testing.T) {
	server, _ := newTestServer(t)
	resp := doRequest(t, server, http.MethodGet, "/", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("json parse: %v", err)
	}
	if payload["name"] != "inkwell" {
		t.Fatalf("expected name field, got %+v", payload)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	server, _ := newTestServer(t)
	resp := doRequest(t, server, http.MethodPost, "/api/login", "", `{"username":"mara","password":"wrong"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestLoginMissingFields(t *testing.T) {
	server, _ := newTestServer(t)
	resp := doRequest(t, server, http.MethodPost, "/api/login", "", `{"username":"mara"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreatePostRequiresAuth(t *testing.T) {
	server, _ := newTestServer(t)
	resp := doRequest(t, server, http.MethodPost, "/api/posts", "", `{"title":"T","content":"C"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreatePostSetsAuthorFromToken(t *testing.T) {
	server, _ := newTestServer(t)
	token := loginAs(t, server, "mara", "maras-password")

	resp := doRequest(t, server, http.MethodPost, "/api/posts", token, `{"title":"Hello","content":"World","author":"impostor"}`)
	// author is not an accepted field on the request body
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", resp.Code)
	}

	resp = doRequest(t, server, http.MethodPost, "/api/posts", token, `{"title":"Hello","content":"World"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var post model.Post
	if err := json.Unmarshal(resp.Body.Bytes(), &post); err != nil {
		t.Fatalf("parse post: %v", err)
	}
	if post.Author != "mara" {
		t.Fatalf("expected author mara, got %q", post.Author)
	}
	if post.ID != 1 {
		t.Fatalf("expected id 1, got %d", post.ID)
	}
	if post.Tags == nil {
		t.Fatal("expected tags to default to an empty list")
	}
}

func TestCreatePostValidation(t *testing.T) {
	server, _ := newTestServer(t)
	token := loginAs(t, server, "mara", "maras-password")

	resp := doRequest(t, server, http.MethodPost, "/api/posts", token, `{"title":"","content":"C"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGetPostNotFound(t *testing.T) {
	server, _ := newTestServer(t)
	resp := doRequest(t, server, http.MethodGet, "/api/posts/99", "", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestUpdatePostAuthorization(t *testing.T) {
	server, _ := newTestServer(t)
	maraToken := loginAs(t, server, "mara", "maras-password")
	theoToken := loginAs(t, server, "theo", "theos-password")
	adminToken := loginAs(t, server, "admin", "admins-password")

	createTestPost(t, server, maraToken, "Original", "Body", nil)

	// Another standard user is refused.
	resp := doRequest(t, server, http.MethodPut, "/api/posts/1", theoToken, `{"title":"Hijacked"}`)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-author, got %d: %s", resp.Code, resp.Body.String())
	}

	// The author may edit, and omitted fields survive.
	resp = doRequest(t, server, http.MethodPut, "/api/posts/1", maraToken, `{"title":"Edited"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for author, got %d: %s", resp.Code, resp.Body.String())
	}
	var post model.Post
	if err := json.Unmarshal(resp.Body.Bytes(), &post); err != nil {
		t.Fatalf("parse post: %v", err)
	}
	if post.Title != "Edited" || post.Content != "Body" || post.Author != "mara" {
		t.Fatalf("unexpected post after update: %+v", post)
	}

	// Admins may edit anyone's post.
	resp = doRequest(t, server, http.MethodPut, "/api/posts/1", adminToken, `{"content":"Moderated"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUpdateMissingPostIs404NotForbidden(t *testing.T) {
	server, _ := newTestServer(t)
	token := loginAs(t, server, "mara", "maras-password")
	resp := doRequest(t, server, http.MethodPut, "/api/posts/42", token, `{"title":"X"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestDeletePost(t *testing.T) {
	server, _ := newTestServer(t)
	maraToken := loginAs(t, server, "mara", "maras-password")
	theoToken := loginAs(t, server, "theo", "theos-password")

	createTestPost(t, server, maraToken, "Doomed", "Body", nil)

	resp := doRequest(t, server, http.MethodDelete, "/api/posts/1", theoToken, "")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-author, got %d", resp.Code)
	}

	resp = doRequest(t, server, http.MethodDelete, "/api/posts/1", maraToken, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(t, server, http.MethodGet, "/api/posts/1", "", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}

func TestListPostsPagination(t *testing.T) {
	server, _ := newTestServer(t)
	token := loginAs(t, server, "mara", "maras-password")
	for _, title := range []string{"cherry", "apple", "banana"} {
		createTestPost(t, server, token, title, "Body", nil)
	}

	resp := doRequest(t, server, http.MethodGet, "/api/posts?sort=title&direction=asc&page=1&per_page=2", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var result struct {
		Posts   []model.Post `json:"posts"`
		Total   int          `json:"total"`
		Page    int          `json:"page"`
		PerPage int          `json:"per_page"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Total != 3 || result.Page != 1 || result.PerPage != 2 {
		t.Fatalf("unexpected window: %+v", result)
	}
	if len(result.Posts) != 2 || result.Posts[0].Title != "apple" || result.Posts[1].Title != "banana" {
		t.Fatalf("unexpected page: %+v", result.Posts)
	}
}

func TestListPostsInvalidSort(t *testing.T) {
	server, _ := newTestServer(t)
	resp := doRequest(t, server, http.MethodGet, "/api/posts?sort=author", "", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	resp = doRequest(t, server, http.MethodGet, "/api/posts?direction=sideways", "", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSearchPosts(t *testing.T) {
	server, _ := newTestServer(t)
	token := loginAs(t, server, "mara", "maras-password")
	createTestPost(t, server, token, "Coffee notes", "Espresso ranking", []string{"coffee"})
	createTestPost(t, server, token, "Trail running", "Hill repeats", []string{"fitness"})

	resp := doRequest(t, server, http.MethodGet, "/api/posts/search?q=ESPRESSO", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var result struct {
		Posts []model.Post `json:"posts"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Posts) != 1 || result.Posts[0].Title != "Coffee notes" {
		t.Fatalf("unexpected search result: %+v", result.Posts)
	}

	resp = doRequest(t, server, http.MethodGet, "/api/posts/search?tag=fitness", "", "")
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Posts) != 1 || result.Posts[0].Title != "Trail running" {
		t.Fatalf("unexpected tag search result: %+v", result.Posts)
	}

	resp = doRequest(t, server, http.MethodGet, "/api/posts/search?q=nothing-matches", "", "")
	body := strings.TrimSpace(resp.Body.String())
	if !strings.Contains(body, `"posts":[]`) {
		t.Fatalf("expected empty posts array, got %s", body)
	}
}

func TestCommentFlow(t *testing.T) {
	server, _ := newTestServer(t)
	maraToken := loginAs(t, server, "mara", "maras-password")
	theoToken := loginAs(t, server, "theo", "theos-password")

	createTestPost(t, server, maraToken, "Discuss", "Body", nil)

	resp := doRequest(t, server, http.MethodPost, "/api/posts/1/comments", "", `{"content":"anon"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	resp = doRequest(t, server, http.MethodPost, "/api/posts/1/comments", theoToken, `{"content":"First!"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var comment model.Comment
	if err := json.Unmarshal(resp.Body.Bytes(), &comment); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if comment.ID != 1 || comment.Author != "theo" || comment.PostID != 1 {
		t.Fatalf("unexpected comment: %+v", comment)
	}

	resp = doRequest(t, server, http.MethodPost, "/api/posts/1/comments", theoToken, `{"content":""}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty content, got %d", resp.Code)
	}

	resp = doRequest(t, server, http.MethodPost, "/api/posts/99/comments", theoToken, `{"content":"Hi"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing post, got %d", resp.Code)
	}

	resp = doRequest(t, server, http.MethodGet, "/api/posts/1/comments", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var listing struct {
		Comments []model.Comment `json:"comments"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &listing); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(listing.Comments) != 1 || listing.Comments[0].Content != "First!" {
		t.Fatalf("unexpected comments: %+v", listing.Comments)
	}
}

func TestStats(t *testing.T) {
	server, _ := newTestServer(t)
	token := loginAs(t, server, "mara", "maras-password")
	createTestPost(t, server, token, "Post", "Body", nil)

	resp := doRequest(t, server, http.MethodGet, "/api/stats", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var stats model.SiteStats
	if err := json.Unmarshal(resp.Body.Bytes(), &stats); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if stats.Users != 3 || stats.Posts != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestLoginRateLimit(t *testing.T) {
	st := memory.New()
	seedTestUser(t, st, "mara", "maras-password", model.RoleStandard)

	cfg := config.Config{
		RateLimits: config.RateLimits{LoginPerMinute: 1, PostPerMinute: 100, CommentPerMinute: 100},
	}
	server := NewServer(st, auth.NewService(st, time.Hour), rate.NewMemory(), cfg)

	body := `{"username":"mara","password":"maras-password"}`
	resp := doRequest(t, server, http.MethodPost, "/api/login", "", body)
	if resp.Code != http.StatusOK {
		t.Fatalf("first login: expected 200, got %d", resp.Code)
	}
	resp = doRequest(t, server, http.MethodPost, "/api/login", "", body)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("second login: expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestCORSPreflight(t *testing.T) {
	server, _ := newTestServer(t)
	resp := doRequest(t, server, http.MethodOptions, "/api/posts", "", "")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS headers")
	}
}

func TestUnknownRoute(t *testing.T) {
	server, _ := newTestServer(t)
	resp := doRequest(t, server, http.MethodGet, "/api/nothing", "", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
