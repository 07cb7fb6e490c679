package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"Conduit/cache"
	httpctx "Conduit/utils/httpctx"

	"github.com/gin-gonic/gin"
)

const profileCacheTTL = 30 * time.Second

// GetProfile returns a user's public profile. The viewer is optional; with a
// token attached the Following flag is resolved against the viewer.
func (server *Server) GetProfile(c *gin.Context) {
	db := server.DB.WithContext(c.Request.Context())

	viewerID, hasViewer := httpctx.CurrentUserID(c)

	// Anonymous profile views are cacheable: no viewer-relative state.
	cacheKey := "profile:" + c.Param("username")
	if !hasViewer {
		if cached, err := cache.Get(c.Request.Context(), cacheKey); err == nil && cached != "" {
			var profile ProfileDTO
			if json.Unmarshal([]byte(cached), &profile) == nil {
				c.JSON(http.StatusOK, gin.H{"profile": profile})
				return
			}
		}
	}

	user, err := resolveUserByUsername(db, c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "errors": gin.H{"Not_found": "User not found"}})
		return
	}

	profile, err := profileToDTO(db, user, viewerID, hasViewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error loading profile"}})
		return
	}

	if !hasViewer {
		if payload, err := json.Marshal(profile); err == nil {
			// Best effort; a dead cache never fails the request.
			_ = cache.Set(context.WithoutCancel(c.Request.Context()), cacheKey, payload, profileCacheTTL)
		}
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
