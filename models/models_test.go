package models

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&User{}, &Follow{}, &Article{}, &Tag{},
		&Favorite{}, &Comment{}, &ResetPassword{}, &Invite{},
	)
	require.NoError(t, err)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *User {
	t.Helper()

	user := User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestArticle(t *testing.T, db *gorm.DB, authorID uint, title string) *Article {
	t.Helper()

	article := Article{
		Title:       title,
		Description: "a description",
		Body:        "a body",
		AuthorID:    authorID,
	}
	saved, err := article.SaveArticle(db)
	require.NoError(t, err)
	return saved
}
