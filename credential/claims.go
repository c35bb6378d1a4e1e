package credential

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims decodes the payload of a JWT without verifying its signature.
// It exists for display and diagnostics (e.g. the CLI's whoami); token
// validity and expiry remain the backend's responsibility.
func Claims(token string) (map[string]interface{}, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}
