package controllers

import (
	"errors"
	"strings"

	"Conduit/models"

	"gorm.io/gorm"
)

var errInvalidIdentifier = errors.New("invalid identifier")

func resolveUserByUsername(db *gorm.DB, username string) (*models.User, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return nil, errInvalidIdentifier
	}
	user := models.User{}
	return user.FindUserByUsername(db, trimmed)
}

func resolveArticleBySlug(db *gorm.DB, slug string) (*models.Article, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, errInvalidIdentifier
	}
	article := models.Article{}
	return article.FindArticleBySlug(db, trimmed)
}
