package authorization

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/cristalhq/jwt/v4"

	"homesage_client/domain"
)

// SplitBearer strips the "Bearer " prefix from an Authorization header
// value.
func SplitBearer(header string) (string, error) {
	if header == "" {
		return "", errors.New("empty authorization header")
	}

	bearerToken := strings.Split(header, "Bearer ")
	if len(bearerToken) != 2 {
		return "", errors.New("invalid token format")
	}

	return bearerToken[1], nil
}

// ExtractClaims decodes the payload segment of a bearer token without
// verifying the signature. The backend signs the token; the client only
// needs the userRole claim out of it. Claims of any JSON type are kept
// as decoded, so a numeric exp alongside userRole is fine. Returns nil
// for anything that is not three dot-separated segments with a
// base64url JSON object payload.
func ExtractClaims(tokenString string) map[string]interface{} {
	segments := strings.Split(tokenString, ".")
	if len(segments) != 3 {
		return nil
	}

	payload, err := decodeSegment(segments[1])
	if err != nil {
		return nil
	}

	var claims map[string]interface{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil
	}

	return claims
}

// ExtractRole returns the userRole claim of a token, or "" when the
// token is malformed. Decode failures degrade to an empty role rather
// than propagating.
func ExtractRole(tokenString string) domain.UserRole {
	claims := ExtractClaims(tokenString)
	if claims == nil {
		return ""
	}

	value, _ := claims["userRole"].(string)
	role := domain.UserRole(value)
	switch role {
	case domain.Consumer, domain.Provider:
		return role
	default:
		return ""
	}
}

// Tokens arrive base64url encoded, with or without padding depending on
// the issuer.
func decodeSegment(segment string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
}

// GenerateToken builds a signed HS256 bearer token carrying the
// userRole claim. The client never signs tokens in production; this
// exists for the in-memory backend used by the tests.
func GenerateToken(username string, role domain.UserRole, key []byte) (string, error) {
	signer, err := jwt.NewSignerHS(jwt.HS256, key)
	if err != nil {
		return "", err
	}

	builder := jwt.NewBuilder(signer)

	claims := &domain.Claims{
		Username:  username,
		UserRole:  role,
		ExpiresAt: time.Now().Add(time.Minute * 60),
	}

	token, err := builder.Build(claims)
	if err != nil {
		return "", err
	}

	return token.String(), nil
}
