package controllers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"

	"Conduit/cache"
	"Conduit/models"
	httpctx "Conduit/utils/httpctx"

	"github.com/gin-gonic/gin"
)

type articlePayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Body        string   `json:"body"`
	TagList     []string `json:"tagList"`
}

type articleRequest struct {
	Article articlePayload `json:"article"`
}

// CreateArticle publishes a new article authored by the viewer. Tags are
// created on the fly and linked through the join table.
func (server *Server) CreateArticle(c *gin.Context) {
	errList := map[string]string{}

	viewerID, ok := httpctx.CurrentUserID(c)
	if !ok {
		errList["Unauthorized"] = "Unauthorized"
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "errors": errList})
		return
	}

	body, err := ioutil.ReadAll(c.Request.Body)
	if err != nil {
		errList["Invalid_body"] = "Unable to get request"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}
	req := articleRequest{}
	if err := json.Unmarshal(body, &req); err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	db := server.DB.WithContext(c.Request.Context())

	user := models.User{}
	if _, err := user.FindUserByID(db, viewerID); err != nil {
		errList["Missing_entity"] = "User no longer exists"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	article := models.Article{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
		AuthorID:    viewerID,
	}
	article.Prepare()
	if errorMessages := article.Validate(); len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errorMessages})
		return
	}

	tags, err := models.FindOrCreateTags(db, req.Article.TagList)
	if err != nil {
		errList["Other_error"] = "Error saving tags"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}
	article.Tags = tags

	created, err := article.SaveArticle(db)
	if err != nil {
		errList["Other_error"] = "Error creating article"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}

	// New tags may now exist; drop the cached tag list.
	_ = cache.Delete(context.WithoutCancel(c.Request.Context()), tagsCacheKey)

	dto, err := articleToDTO(db, created, viewerID, true)
	if err != nil {
		errList["Other_error"] = "Error loading article"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"article": dto})
}

// GetArticles lists articles, newest first, optionally narrowed by tag,
// author, or favoriting user.
func (server *Server) GetArticles(c *gin.Context) {
	db := server.DB.WithContext(c.Request.Context())

	viewerID, hasViewer := httpctx.CurrentUserID(c)

	filters := models.ArticleFilters{
		Tag:         c.Query("tag"),
		Author:      c.Query("author"),
		FavoritedBy: c.Query("favorited"),
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	article := models.Article{}
	articles, total, err := article.FindAllArticles(db, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error listing articles"}})
		return
	}

	dtos, err := articlesToDTOs(db, articles, viewerID, hasViewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error listing articles"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": dtos, "articlesCount": total})
}

// GetArticle returns one article by slug. The reserved slug "feed" routes to
// the viewer's feed because gin cannot mount a static /articles/feed next to
// the /articles/:slug parameter route.
func (server *Server) GetArticle(c *gin.Context) {
	if c.Param("slug") == "feed" {
		server.GetFeed(c)
		return
	}

	db := server.DB.WithContext(c.Request.Context())
	viewerID, hasViewer := httpctx.CurrentUserID(c)

	article, err := resolveArticleBySlug(db, c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "errors": gin.H{"Not_found": "Article not found"}})
		return
	}

	dto, err := articleToDTO(db, article, viewerID, hasViewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error loading article"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": dto})
}

// GetFeed lists recent articles from authors the viewer follows. The route is
// reached through GetArticle, so authentication is enforced here.
func (server *Server) GetFeed(c *gin.Context) {
	viewerID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "errors": gin.H{"Unauthorized": "Unauthorized"}})
		return
	}

	db := server.DB.WithContext(c.Request.Context())

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	follow := models.Follow{}
	authorIDs, err := follow.FollowedIDs(db, viewerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error loading feed"}})
		return
	}

	article := models.Article{}
	articles, total, err := article.FindFeedArticles(db, authorIDs, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error loading feed"}})
		return
	}

	dtos, err := articlesToDTOs(db, articles, viewerID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error loading feed"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": dtos, "articlesCount": total})
}

// UpdateArticle edits the viewer's own article. A changed title regenerates
// the slug, so clients must follow the slug in the response.
func (server *Server) UpdateArticle(c *gin.Context) {
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
	if article.AuthorID != viewerID {
		errList["Forbidden"] = "You are not the author of this article"
		c.JSON(http.StatusForbidden, gin.H{"status": http.StatusForbidden, "errors": errList})
		return
	}

	body, err := ioutil.ReadAll(c.Request.Body)
	if err != nil {
		errList["Invalid_body"] = "Unable to get request"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}
	req := articleRequest{}
	if err := json.Unmarshal(body, &req); err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	titleChanged := false
	if req.Article.Title != "" {
		titleChanged = true
		article.Title = req.Article.Title
	}
	if req.Article.Description != "" {
		article.Description = req.Article.Description
	}
	if req.Article.Body != "" {
		article.Body = req.Article.Body
	}
	article.Prepare()
	article.AuthorID = viewerID
	if errorMessages := article.Validate(); len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errorMessages})
		return
	}

	if titleChanged {
		if err := article.MakeSlug(db); err != nil {
			errList["Other_error"] = "Error updating article"
			c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
			return
		}
	}

	if req.Article.TagList != nil {
		tags, err := models.FindOrCreateTags(db, req.Article.TagList)
		if err != nil {
			errList["Other_error"] = "Error saving tags"
			c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
			return
		}
		if err := db.Model(article).Association("Tags").Replace(tags); err != nil {
			errList["Other_error"] = "Error saving tags"
			c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
			return
		}
		_ = cache.Delete(context.WithoutCancel(c.Request.Context()), tagsCacheKey)
	}

	updated, err := article.UpdateArticle(db)
	if err != nil {
		errList["Other_error"] = "Error updating article"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}

	dto, err := articleToDTO(db, updated, viewerID, true)
	if err != nil {
		errList["Other_error"] = "Error loading article"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": dto})
}

// DeleteArticle removes the viewer's own article with its comments, favorite
// edges, and tag links.
func (server *Server) DeleteArticle(c *gin.Context) {
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
	if article.AuthorID != viewerID {
		c.JSON(http.StatusForbidden, gin.H{"status": http.StatusForbidden, "errors": gin.H{"Forbidden": "You are not the author of this article"}})
		return
	}

	if _, err := article.DeleteArticle(db); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Error deleting article"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": "Article deleted"})
}
