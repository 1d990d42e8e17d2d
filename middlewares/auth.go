package middlewares

import (
	"FamilyTime/models"
	"FamilyTime/services"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const sessionKey = "session"

type Claims struct {
	Email       string `json:"email,omitempty"`
	FirebaseUID string `json:"firebase_uid"`
	UserType    string `json:"user_type"`
	jwt.RegisteredClaims
}

// IssueToken подписывает HS256 токен для uid с ролью role
func IssueToken(secret []byte, uid, role string, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		FirebaseUID: uid,
		UserType:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"ok":    false,
		"code":  services.CodeUnauthenticated,
		"error": message,
	})
}

func setSession(c *gin.Context, session *models.Session) {
	c.Set(sessionKey, session)
	c.Set("firebase_uid", session.UID)
	c.Set("user_type", session.Role)
}

// SessionFrom возвращает сессию, установленную middleware, или nil
func SessionFrom(c *gin.Context) *models.Session {
	value, exists := c.Get(sessionKey)
	if !exists {
		return nil
	}
	session, _ := value.(*models.Session)
	return session
}

var errInvalidToken = errors.New("invalid token")

// ParseSessionToken проверяет HS256 токен с claims firebase_uid и user_type
func ParseSessionToken(secret []byte, tokenString string) (*models.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	// Проверяем firebase_uid и user_type
	if claims.FirebaseUID == "" {
		return nil, errors.New("invalid token: missing firebase_uid")
	}
	if claims.UserType == "" {
		return nil, errors.New("invalid token: missing user_type")
	}

	session := &models.Session{UID: claims.FirebaseUID, Role: claims.UserType}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// BearerToken вырезает токен из заголовка Authorization
func BearerToken(authHeader string) (string, bool) {
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "unauthorized")
			return
		}
		session, err := ParseSessionToken(secret, tokenString)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}
		setSession(c, session)
		c.Next()
	}
}

// IDTokenVerifier часть auth.Client, проверяющая Firebase ID токены
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// SessionFromIDToken проверяет Firebase ID токен; роль берется из custom claim
// "role" (или "user_type")
func SessionFromIDToken(ctx context.Context, verifier IDTokenVerifier, idToken string) (*models.Session, error) {
	token, err := verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errInvalidToken
	}
	role, err := roleFromClaims(token.Claims)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		UID:       token.UID,
		Role:      role,
		IssuedAt:  time.Unix(token.IssuedAt, 0),
		ExpiresAt: time.Unix(token.Expires, 0),
	}, nil
}

func FirebaseAuthMiddleware(verifier IDTokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "unauthorized")
			return
		}
		session, err := SessionFromIDToken(c.Request.Context(), verifier, idToken)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}
		setSession(c, session)
		c.Next()
	}
}

func roleFromClaims(claims map[string]interface{}) (string, error) {
	for _, key := range []string{"role", "user_type"} {
		if role, ok := claims[key].(string); ok && role != "" {
			return role, nil
		}
	}
	return "", errors.New("invalid token: missing role")
}
