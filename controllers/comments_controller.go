package controllers

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"Conduit/models"
	httpctx "Conduit/utils/httpctx"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Comment struct {
		Body string `json:"body"`
	} `json:"comment"`
}

// CreateComment adds a comment by the viewer on the article named by slug.
func (server *Server) CreateComment(c *gin.Context) {
	errList := map[string]string{}

	viewerID, ok := httpctx.CurrentUserID(c)
	if !ok {
		errList["Unauthorized"] = "Unauthorized"
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "errors": errList})
		return
	}

	db := server.DB.WithContext(c.Request.Context())

	article, err := resolveArticleBySlug(db, c.Param("slug"))
	if err != nil {
		errList["Not_found"] = "Article not found"
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "errors": errList})
		return
	}

	user := models.User{}
	if _, err := user.FindUserByID(db, viewerID); err != nil {
		errList["Missing_entity"] = "User no longer exists"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	body, err := ioutil.ReadAll(c.Request.Body)
	if err != nil {
		errList["Invalid_body"] = "Unable to get request"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}
	req := commentRequest{}
	if err := json.Unmarshal(body, &req); err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	comment := models.Comment{
		UserID:    viewerID,
		ArticleID: article.ID,
		Body:      req.Comment.Body,
	}
	comment.Prepare()
	if errorMessages := comment.Validate(); len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errorMessages})
		return
	}

	created, err := comment.SaveComment(db)
	if err != nil {
		errList["Other_error"] = "Error creating comment"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}

	dto, err := commentToDTO(db, created, viewerID, true)
	if err != nil {
		errList["Other_error"] = "Error loading comment"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": dto})
}

// GetComments lists an article's comments, newest first.
func (server *Server) GetComments(c *gin.Context) {
	db := server.DB.WithContext(c.Request.Context())
	viewerID, hasViewer := httpctx.CurrentUserID(c)

	article, err := resolveArticleBySlug(db, c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "errors": gin.H{"Not_found": "Article not found"}})
		return
	}

	comment := models.Comment{}
	comments, err := comment.GetComments(db, article.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error listing comments"}})
		return
	}

	dtos, err := commentsToDTOs(db, *comments, viewerID, hasViewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error listing comments"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": dtos})
}

// DeleteComment removes the viewer's own comment, addressed by its public id.
func (server *Server) DeleteComment(c *gin.Context) {
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

	comment := models.Comment{}
	err = db.Where("public_id = ? AND article_id = ?", c.Param("id"), article.ID).Take(&comment).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "errors": gin.H{"Not_found": "Comment not found"}})
		return
	}
	if comment.UserID != viewerID {
		c.JSON(http.StatusForbidden, gin.H{"status": http.StatusForbidden, "errors": gin.H{"Forbidden": "You are not the author of this comment"}})
		return
	}

	if _, err := comment.DeleteAComment(db); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error deleting comment"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": "Comment deleted"})
}
