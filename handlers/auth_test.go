package handlers

import (
	"net/http"
	"testing"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	t.Run("creates a user and returns a token", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Ada", "email": "Ada@Example.com", "password": "password123",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp LoginResponse
		decodeBody(t, rec, &resp)
		if resp.Token == "" {
			t.Error("Expected a token")
		}
		if resp.User.Email != "ada@example.com" {
			t.Errorf("Expected normalized email, got %s", resp.User.Email)
		}
		if resp.User.Role != "user" {
			t.Errorf("Expected role user, got %s", resp.User.Role)
		}
		if resp.User.DailyDownloadLimit != env.Cfg.DailyDownloadLimit {
			t.Errorf("Expected default download limit, got %d", resp.User.DailyDownloadLimit)
		}
	})

	t.Run("rejects a short password", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Bob", "email": "bob@example.com", "password": "short",
		})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d", rec.Code)
		}
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Ada Again", "email": "ada@example.com", "password": "password123",
		})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d", rec.Code)
		}
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email": "nobody@example.com",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user@example.com", "user")

	t.Run("valid credentials", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "user@example.com", "password": "password123",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp LoginResponse
		decodeBody(t, rec, &resp)
		if resp.Token == "" {
			t.Error("Expected a token")
		}

		auth := env.doJSON(t, http.MethodGet, "/api/favorites", resp.Token, nil)
		if auth.Code != http.StatusOK {
			t.Errorf("Expected the issued token to authenticate, got %d", auth.Code)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "user@example.com", "password": "wrong-password",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "ghost@example.com", "password": "password123",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := env.createUser(t, "member@example.com", "user")
	_, adminToken := env.createUser(t, "admin@example.com", "admin")

	t.Run("missing token rejected", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodGet, "/api/favorites", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodGet, "/api/favorites", "not-a-jwt", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("non-admin cannot reach admin routes", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodGet, "/api/admin/categories/report", userToken, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", rec.Code)
		}
	})

	t.Run("admin passes", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodGet, "/api/admin/categories/report", adminToken, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("anonymous listing still works", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodGet, "/api/wallpapers", "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
	})
}
