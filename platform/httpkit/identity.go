// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated subscriber.
// Handlers read it without depending on how the token was validated.
type Identity interface {
	// SubscriberID returns the authenticated subscriber's ID.
	SubscriberID() uuid.UUID
	// IsAuthenticated returns true if a valid token was presented.
	IsAuthenticated() bool
}

type identity struct {
	subscriberID  uuid.UUID
	authenticated bool
}

func (i *identity) SubscriberID() uuid.UUID {
	return i.subscriberID
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if subscriber info is not present.
func GetIdentity(c *gin.Context) Identity {
	raw, ok := c.Get(ContextSubscriberIDKey)
	if !ok {
		return &identity{}
	}

	sid, ok := raw.(uuid.UUID)
	if !ok || sid == uuid.Nil {
		return &identity{}
	}

	return &identity{subscriberID: sid, authenticated: true}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
