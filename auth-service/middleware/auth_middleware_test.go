package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	utils "secureweb-backend/shared/utils/auth"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *utils.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	tokens := utils.NewTokenService(rdb, "test-secret", time.Hour)

	router := gin.New()
	router.Use(AuthMiddleware(tokens))
	router.GET("/public", func(c *gin.Context) {
		_, authenticated := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": authenticated})
	})
	router.GET("/private", RequireAuth(), func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"id": identity.ID, "name": identity.Name})
	})

	return router, tokens
}

func TestAuthMiddlewareAttachesIdentity(t *testing.T) {
	router, tokens := setupTestRouter(t)

	token, err := tokens.GenerateJWT(42, "alice", []string{"ROLE_USER"})
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	req, _ := http.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d", w.Code)
	}
}

func TestMalformedHeaderPassesThroughUnauthenticated(t *testing.T) {
	router, _ := setupTestRouter(t)

	headers := []string{"", "garbage", "Basic abc", "Bearer not.a.token"}
	for _, header := range headers {
		req, _ := http.NewRequest("GET", "/public", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		// The gate itself never rejects; the route still runs
		if w.Code != http.StatusOK {
			t.Errorf("header %q: expected 200 on public route, got %d", header, w.Code)
		}
	}
}

func TestRequireAuthRejectsUnauthenticated(t *testing.T) {
	router, _ := setupTestRouter(t)

	req, _ := http.NewRequest("GET", "/private", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}
}

func TestRevokedTokenIsUnauthenticated(t *testing.T) {
	router, tokens := setupTestRouter(t)

	token, err := tokens.GenerateJWT(42, "alice", []string{"ROLE_USER"})
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	req, _ := http.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 before revocation, got %d", w.Code)
	}

	if !tokens.InvalidateJWT(req.Context(), "Bearer "+token) {
		t.Fatal("revoke should succeed")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after revocation, got %d", w.Code)
	}
}
