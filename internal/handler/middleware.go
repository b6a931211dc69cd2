package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDContextKey = "user_id"

// Claims 外部APIが発行するアクセストークンのクレーム
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTMiddleware はBearerトークンを検証し、user_idをコンテキストに格納する
func JWTMiddleware(secret string) gin.HandlerFunc {
	secretBytes := []byte(secret)
	return func(c *gin.Context) {
		token := bearerFromHeader(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "認証トークンがありません",
			})
			return
		}

		claims, err := parseClaims(token, secretBytes)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "認証トークンが無効です",
				"details": err.Error(),
			})
			return
		}

		c.Set(userIDContextKey, claims.UserID)
		c.Next()
	}
}

// AuthenticatedUserID は認証済みリクエストのuser_idを返す
func AuthenticatedUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(userIDContextKey)
	return userID, userID != ""
}

func parseClaims(token string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	if claims.UserID == "" {
		return nil, errors.New("user_id claim missing")
	}
	return claims, nil
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
