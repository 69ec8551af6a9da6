package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/coursecompass-backend/internal/logger"
)

// ErrSupabaseUserExists marks the "account already provisioned" case, which
// the session bridge treats as success and moves on to link minting.
var ErrSupabaseUserExists = errors.New("supabase user already exists")

type MagicLink struct {
	HashedToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// SupabaseAdminClient talks to the hosted database service's admin auth API.
// One instance is constructed at startup and shared; it holds no mutable
// state beyond the http.Client.
type SupabaseAdminClient interface {
	CreateUser(ctx context.Context, email string, metadata map[string]any) error
	GenerateMagicLink(ctx context.Context, email string) (*MagicLink, error)
}

type supabaseAdminClient struct {
	log        *logger.Logger
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewSupabaseAdminClient(log *logger.Logger) (SupabaseAdminClient, error) {
	baseURL := strings.TrimSuffix(os.Getenv("SUPABASE_URL"), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing SUPABASE_URL")
	}
	serviceKey := os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	if serviceKey == "" {
		return nil, fmt.Errorf("missing SUPABASE_SERVICE_ROLE_KEY")
	}

	timeoutSec := 15
	if v := os.Getenv("SUPABASE_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &supabaseAdminClient{
		log:        log.With("service", "SupabaseAdminClient"),
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

type supabaseHTTPError struct {
	StatusCode int
	Body       string
}

func (e *supabaseHTTPError) Error() string {
	return fmt.Sprintf("supabase http %d: %s", e.StatusCode, e.Body)
}

// Upstream failures are reported, never retried here; the bridge surfaces
// them as a 500 and the client may call again.
func (c *supabaseAdminClient) do(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &supabaseHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if uErr := json.Unmarshal(raw, out); uErr != nil {
		return fmt.Errorf("supabase decode error: %w", uErr)
	}
	return nil
}

func (c *supabaseAdminClient) CreateUser(ctx context.Context, email string, metadata map[string]any) error {
	body := map[string]any{
		"email":         email,
		"email_confirm": true,
		"user_metadata": metadata,
	}
	err := c.do(ctx, http.MethodPost, "/auth/v1/admin/users", body, nil)
	if err == nil {
		return nil
	}

	var httpErr *supabaseHTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusUnprocessableEntity ||
			httpErr.StatusCode == http.StatusConflict ||
			strings.Contains(httpErr.Body, "already") {
			return ErrSupabaseUserExists
		}
	}
	return err
}

type generateLinkResponse struct {
	HashedToken string `json:"hashed_token"`
	Properties  struct {
		HashedToken string `json:"hashed_token"`
	} `json:"properties"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

func (c *supabaseAdminClient) GenerateMagicLink(ctx context.Context, email string) (*MagicLink, error) {
	body := map[string]any{
		"type":  "magiclink",
		"email": email,
	}
	var resp generateLinkResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/admin/generate_link", body, &resp); err != nil {
		return nil, err
	}

	token := resp.HashedToken
	if token == "" {
		token = resp.Properties.HashedToken
	}
	if token == "" {
		return nil, fmt.Errorf("generate_link response missing hashed_token")
	}

	link := &MagicLink{
		HashedToken:  token,
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresAt > 0 {
		t := time.Unix(resp.ExpiresAt, 0).UTC()
		link.ExpiresAt = &t
	}
	return link, nil
}
