package api

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/udisondev/qiankun/internal/model"
)

// ctxHero is the context key AuthRequired stores the caller's record under.
const ctxHero = "hero"

const tokenSecretBytes = 16

// mintToken creates a hero's API credential. The clear token is returned
// exactly once at registration; only the bcrypt hash is stored.
func mintToken(name string) (token string, hash []byte, err error) {
	buf := make([]byte, tokenSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("drawing token secret: %w", err)
	}
	secret := hex.EncodeToString(buf)

	hash, err = bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hashing token secret: %w", err)
	}
	return name + ":" + secret, hash, nil
}

// AuthRequired validates the bearer token and injects the hero record into
// the request context. Tokens are "<name>:<secret>"; the secret is compared
// against the named hero's stored hash.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		name, secret, ok := strings.Cut(token, ":")
		if !ok || name == "" || secret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed token"})
			return
		}

		hero, err := h.heroes.HeroByName(c.Request.Context(), name)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if bcrypt.CompareHashAndPassword(hero.TokenHash, []byte(secret)) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxHero, hero)
		c.Next()
	}
}

// heroFrom returns the record AuthRequired stored for this request.
func heroFrom(c *gin.Context) *model.Hero {
	return c.MustGet(ctxHero).(*model.Hero)
}
