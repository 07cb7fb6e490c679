package controllers

import (
	"context"
	"errors"
	"net/http"

	"Conduit/cache"
	"Conduit/models"
	httpctx "Conduit/utils/httpctx"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FollowUser makes the authenticated viewer follow the user named in the
// path. Following someone who is already followed succeeds without touching
// state, so clients can retry freely.
func (server *Server) FollowUser(c *gin.Context) {
	viewerID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "errors": gin.H{"Unauthorized": "Unauthorized"}})
		return
	}

	db := server.DB.WithContext(c.Request.Context())

	target, err := resolveUserByUsername(db, c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "errors": gin.H{"Not_found": "User not found"}})
		return
	}

	if viewerID == target.ID {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "errors": gin.H{"Invalid_state": "cannot follow yourself"}})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// The viewer row must still exist at mutation time.
		if err := tx.Select("id").First(&models.User{}, viewerID).Error; err != nil {
			return err
		}

		follow := models.Follow{
			FollowerID: viewerID,
			FollowedID: target.ID,
		}
		created, err := follow.SaveFollow(tx)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", viewerID).
			UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", target.ID).
			UpdateColumn("followers_count", gorm.Expr("followers_count + 1")).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "errors": gin.H{"Not_found": "User not found"}})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error following user"}})
		return
	}

	_ = cache.Delete(context.WithoutCancel(c.Request.Context()), "profile:"+target.Username)

	// Re-read so the counters in the response are current.
	refreshed, err := resolveUserByUsername(db, target.Username)
	if err != nil {
		refreshed = target
	}
	profile, err := profileToDTO(db, refreshed, viewerID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error loading profile"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UnfollowUser removes the edge. Unlike FollowUser it is strict: unfollowing
// a user who was never followed is an error, not a no-op.
func (server *Server) UnfollowUser(c *gin.Context) {
	viewerID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "errors": gin.H{"Unauthorized": "Unauthorized"}})
		return
	}

	db := server.DB.WithContext(c.Request.Context())

	target, err := resolveUserByUsername(db, c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "errors": gin.H{"Not_found": "User not found"}})
		return
	}

	if viewerID == target.ID {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "errors": gin.H{"Invalid_state": "cannot unfollow yourself"}})
		return
	}

	removed := int64(0)
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.User{}, viewerID).Error; err != nil {
			return err
		}

		follow := models.Follow{
			FollowerID: viewerID,
			FollowedID: target.ID,
		}
		removed, err = follow.DeleteFollow(tx)
		if err != nil {
			return err
		}
		if removed == 0 {
			return nil
		}

		if err := tx.Model(&models.User{}).
			Where("id = ? AND following_count > 0", viewerID).
			UpdateColumn("following_count", gorm.Expr("following_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ? AND followers_count > 0", target.ID).
			UpdateColumn("followers_count", gorm.Expr("followers_count - 1")).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "errors": gin.H{"Not_found": "User not found"}})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error unfollowing user"}})
		return
	}
	if removed == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "errors": gin.H{"Invalid_state": "is not being followed"}})
		return
	}

	_ = cache.Delete(context.WithoutCancel(c.Request.Context()), "profile:"+target.Username)

	refreshed, err := resolveUserByUsername(db, target.Username)
	if err != nil {
		refreshed = target
	}
	profile, err := profileToDTO(db, refreshed, viewerID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error loading profile"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
