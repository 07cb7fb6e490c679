package controllers

import (
	"net/http"

	"Conduit/models"
	httpctx "Conduit/utils/httpctx"

	"github.com/gin-gonic/gin"
)

// FavoriteArticle marks the article as favorited by the viewer. Repeating the
// call is harmless; the counter moves only when the edge is created.
func (server *Server) FavoriteArticle(c *gin.Context) {
	viewerID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "errors": gin.H{"Unauthorized": "Unauthorized"}})
		return
	}

	db := server.DB.WithContext(c.Request.Context())

	article, err := resolveArticleBySlug(db, c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "errors": gin.H{"Not_found": "Article not found"}})
		return
	}

	favorite := models.Favorite{
		UserID:    viewerID,
		ArticleID: article.ID,
	}
	if _, err := favorite.SaveFavorite(db); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error favoriting article"}})
		return
	}

	refreshed, err := resolveArticleBySlug(db, article.Slug)
	if err != nil {
		refreshed = article
	}
	dto, err := articleToDTO(db, refreshed, viewerID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error loading article"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": dto})
}

// UnfavoriteArticle removes the viewer's favorite edge. Unfavoriting an
// article that was never favorited succeeds quietly, but the viewer's own
// account row must still exist.
func (server *Server) UnfavoriteArticle(c *gin.Context) {
	viewerID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "errors": gin.H{"Unauthorized": "Unauthorized"}})
		return
	}

	db := server.DB.WithContext(c.Request.Context())

	article, err := resolveArticleBySlug(db, c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "errors": gin.H{"Not_found": "Article not found"}})
		return
	}

	user := models.User{}
	if _, err := user.FindUserByID(db, viewerID); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": gin.H{"Missing_entity": "User no longer exists"}})
		return
	}

	favorite := models.Favorite{
		UserID:    viewerID,
		ArticleID: article.ID,
	}
	if _, err := favorite.DeleteFavorite(db); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error unfavoriting article"}})
		return
	}

	refreshed, err := resolveArticleBySlug(db, article.Slug)
	if err != nil {
		refreshed = article
	}
	dto, err := articleToDTO(db, refreshed, viewerID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error loading article"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": dto})
}
