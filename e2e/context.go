//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	jwttoken "lettings/internal/jwt_token"
	id "lettings/pkg/domain"
	"lettings/pkg/testutil"
)

const devSigningKey = "dev-secret-key-change-in-production"

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	PropertyID id.PropertyID
	actors     map[string]id.Actor
	tokens     map[string]string
	// applications maps a tenant name to its application id and last seen status.
	applications map[string]*trackedApplication
	jwt          *jwttoken.JWTService
}

type trackedApplication struct {
	ID     string
	Status string
}

// NewTestContext creates a new test context
func NewTestContext() *TestContext {
	baseURL := envOr("BASE_URL", "http://localhost:8080")
	jwt := jwttoken.NewJWTService(
		envOr("JWT_SIGNING_KEY", devSigningKey),
		envOr("JWT_ISSUER", "lettings"),
		envOr("JWT_AUDIENCE", "lettings-api"),
		time.Hour,
	)

	return &TestContext{
		BaseURL:      baseURL,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
		actors:       make(map[string]id.Actor),
		tokens:       make(map[string]string),
		applications: make(map[string]*trackedApplication),
		jwt:          jwt,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// actor returns the named participant, minting a user and token on first use.
func (tc *TestContext) actor(name string, role id.Role) (id.Actor, error) {
	if a, ok := tc.actors[name]; ok {
		if a.Role != role {
			return id.Actor{}, fmt.Errorf("%s is a %s, not a %s", name, a.Role, role)
		}
		return a, nil
	}
	a := testutil.NewActor(role)
	token, err := tc.jwt.GenerateAccessToken(context.Background(), a.ID, role)
	if err != nil {
		return id.Actor{}, fmt.Errorf("mint token for %s: %w", name, err)
	}
	tc.actors[name] = a
	tc.tokens[name] = token
	return a, nil
}

// Do sends an authenticated request as the named participant and stores the response.
func (tc *TestContext) Do(method, path, as string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := tc.tokens[as]; ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// expectStatus fails with the response body when the last status differs.
func (tc *TestContext) expectStatus(want int) error {
	if tc.LastResponse == nil {
		return fmt.Errorf("no response recorded")
	}
	if tc.LastResponse.StatusCode != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, tc.LastResponse.StatusCode, string(tc.LastResponseBody))
	}
	return nil
}

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

func (tc *TestContext) decode(v any) error {
	if err := json.Unmarshal(tc.LastResponseBody, v); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (tc *TestContext) propertyPath(suffix string) string {
	return "/properties/" + tc.PropertyID.String() + suffix
}
