// Package main provides a CLI tool for generating test tokens for the lettings API.
// These tokens use the dev signing key and will NOT work in production.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	jwttoken "lettings/internal/jwt_token"
	id "lettings/pkg/domain"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	// Default values matching the server config
	defaultIssuer   = "lettings"
	defaultAudience = "lettings-api"
	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "agent", "landlord", "tenant":
		generate(id.Role(os.Args[1]), os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate test tokens for the lettings API

WARNING: These tokens use the dev signing key and will NOT work in production.
         Only use for local development and testing.

Usage:
  tokengen <role> [flags]

Roles:
  agent       Manages listings, inspections and the tenant shortlist
  landlord    Approves or rejects shortlisted tenants
  tenant      Books inspections and applies

Examples:
  # Tenant token with a fresh user id
  tokengen tenant

  # Token for a specific user, valid for an hour
  tokengen landlord -user-id "550e8400-e29b-41d4-a716-446655440000" -ttl 1h

  # Output as JSON
  tokengen agent -json`)
}

func generate(role id.Role, args []string) {
	fs := flag.NewFlagSet(string(role), flag.ExitOnError)
	userID := fs.String("user-id", "", "User ID (UUID). Generated if empty.")
	signingKey := fs.String("key", envOr("JWT_SIGNING_KEY", devSigningKey), "HS256 signing key")
	issuer := fs.String("issuer", envOr("JWT_ISSUER", defaultIssuer), "Token issuer")
	audience := fs.String("audience", envOr("JWT_AUDIENCE", defaultAudience), "Token audience")
	ttl := fs.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	_ = fs.Parse(args)

	uid := id.UserID(parseOrGenerateUUID(*userID, "user-id"))
	svc := jwttoken.NewJWTService(*signingKey, *issuer, *audience, *ttl)

	token, err := svc.GenerateAccessToken(context.Background(), uid, role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Type:      "access_token",
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"user_id": uid.String(),
				"role":    string(role),
				"iss":     *issuer,
				"aud":     *audience,
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Access Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Role:        %s\n", role)
	fmt.Printf("User ID:     %s\n", uid)
	fmt.Printf("Expires In:  %s\n", *ttl)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/...")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseOrGenerateUUID(input, fieldName string) uuid.UUID {
	if input == "" {
		return uuid.New()
	}
	parsed, err := uuid.Parse(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid %s UUID: %s\n", fieldName, input)
		os.Exit(1)
	}
	return parsed
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
