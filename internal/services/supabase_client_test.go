package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newSupabaseTestClient(t *testing.T, handler http.HandlerFunc) SupabaseAdminClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("SUPABASE_URL", srv.URL)
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-role-key")

	client, err := NewSupabaseAdminClient(newTestLogger(t))
	if err != nil {
		t.Fatalf("NewSupabaseAdminClient: %v", err)
	}
	return client
}

func TestSupabaseClientRequiresConfig(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "key")
	if _, err := NewSupabaseAdminClient(newTestLogger(t)); err == nil {
		t.Fatal("expected error for missing SUPABASE_URL")
	}

	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")
	if _, err := NewSupabaseAdminClient(newTestLogger(t)); err == nil {
		t.Fatal("expected error for missing SUPABASE_SERVICE_ROLE_KEY")
	}
}

func TestSupabaseClientCreateUser(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	client := newSupabaseTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})

	err := client.CreateUser(context.Background(), "ada@example.com", map[string]any{"auth0_id": "auth0|abc"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if gotPath != "/auth/v1/admin/users" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer service-role-key" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotBody["email"] != "ada@example.com" || gotBody["email_confirm"] != true {
		t.Fatalf("body = %v", gotBody)
	}
}

func TestSupabaseClientCreateUserAlreadyExists(t *testing.T) {
	statuses := []int{http.StatusUnprocessableEntity, http.StatusConflict}
	for _, status := range statuses {
		status := status
		client := newSupabaseTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"msg":"A user with this email address has already been registered"}`, status)
		})
		err := client.CreateUser(context.Background(), "ada@example.com", nil)
		if !errors.Is(err, ErrSupabaseUserExists) {
			t.Fatalf("status %d: got %v, want ErrSupabaseUserExists", status, err)
		}
	}
}

func TestSupabaseClientGenerateMagicLink(t *testing.T) {
	expires := time.Now().Add(time.Hour).Unix()
	client := newSupabaseTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/admin/generate_link" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"properties":    map[string]any{"hashed_token": "abc123"},
			"refresh_token": "refresh-1",
			"expires_at":    expires,
		})
	})

	link, err := client.GenerateMagicLink(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("GenerateMagicLink: %v", err)
	}
	if link.HashedToken != "abc123" {
		t.Fatalf("hashed token = %q", link.HashedToken)
	}
	if link.RefreshToken != "refresh-1" {
		t.Fatalf("refresh token = %q", link.RefreshToken)
	}
	if link.ExpiresAt == nil || link.ExpiresAt.Unix() != expires {
		t.Fatalf("expires at = %v", link.ExpiresAt)
	}
}

func TestSupabaseClientGenerateMagicLinkMissingToken(t *testing.T) {
	client := newSupabaseTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"refresh_token": "refresh-1"})
	})

	if _, err := client.GenerateMagicLink(context.Background(), "ada@example.com"); err == nil {
		t.Fatal("expected error for response without hashed_token")
	}
}
