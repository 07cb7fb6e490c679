package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"Conduit/cache"
	"Conduit/models"

	"github.com/gin-gonic/gin"
)

const (
	tagsCacheKey = "tags:all"
	tagsCacheTTL = 5 * time.Minute
)

// GetTags returns every tag name in alphabetical order. The list is the same
// for every caller, so it is served from the cache when one is configured.
func (server *Server) GetTags(c *gin.Context) {
	if cached, err := cache.Get(c.Request.Context(), tagsCacheKey); err == nil && cached != "" {
		var names []string
		if json.Unmarshal([]byte(cached), &names) == nil {
			c.JSON(http.StatusOK, gin.H{"tags": names})
			return
		}
	}

	db := server.DB.WithContext(c.Request.Context())
	names, err := models.ListTagNames(db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error listing tags"}})
		return
	}
	if names == nil {
		names = []string{}
	}

	if payload, err := json.Marshal(names); err == nil {
		_ = cache.Set(context.WithoutCancel(c.Request.Context()), tagsCacheKey, payload, tagsCacheTTL)
	}

	c.JSON(http.StatusOK, gin.H{"tags": names})
}
