package controllers

import (
	"context"
	"net/http"

	"Conduit/cache"
	"Conduit/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// WipeData clears every domain table. Mounted only when ENABLE_TEST_ROUTES=1,
// for end-to-end suites that need a clean database between runs.
func (server *Server) WipeData(c *gin.Context) {
	db := server.DB.WithContext(c.Request.Context())

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM article_tags").Error; err != nil {
			return err
		}
		for _, model := range []interface{}{
			&models.Favorite{},
			&models.Comment{},
			&models.Tag{},
			&models.Article{},
			&models.Follow{},
			&models.ResetPassword{},
			&models.Invite{},
			&models.User{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error wiping data"}})
		return
	}

	_ = cache.DeleteByPrefix(context.WithoutCancel(c.Request.Context()), "")

	c.JSON(http.StatusOK, gin.H{"response": "Data wiped"})
}
