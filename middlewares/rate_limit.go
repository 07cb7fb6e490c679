package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Two per-IP budgets: a general one sized for article and profile browsing,
// and a strict one for the credential routes (registration, login, password
// reset, invite acceptance) where guessing is the threat.
const (
	generalRefill = time.Second
	generalBurst  = 100

	credentialRefill = 10 * time.Second
	credentialBurst  = 10

	visitorTTL = 3 * time.Hour
)

// visitorTable tracks one token bucket per client IP. Entries idle past
// visitorTTL are swept on the next lookup so the map does not grow without
// bound.
type visitorTable struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	refill    time.Duration
	burst     int
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newVisitorTable(refill time.Duration, burst int) *visitorTable {
	return &visitorTable{
		visitors:  make(map[string]*visitor),
		refill:    refill,
		burst:     burst,
		lastSweep: time.Now(),
	}
}

var (
	generalVisitors    = newVisitorTable(generalRefill, generalBurst)
	credentialVisitors = newVisitorTable(credentialRefill, credentialBurst)
)

func (t *visitorTable) get(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if now.Sub(t.lastSweep) > visitorTTL {
		for ip, v := range t.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(t.visitors, ip)
			}
		}
		t.lastSweep = now
	}

	v, exists := t.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(t.refill), t.burst)}
		t.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// RateLimitMiddleware applies the general per-IP limit to every route.
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !generalVisitors.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please slow down.",
			})
			return
		}
		c.Next()
	}
}

// LoginRateLimitMiddleware applies the strict per-IP limit to the
// credential routes.
func LoginRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !credentialVisitors.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many authentication attempts. Please wait and try again.",
			})
			return
		}
		c.Next()
	}
}
