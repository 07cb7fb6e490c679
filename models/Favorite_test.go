package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func articleFavoritesCount(t *testing.T, db *gorm.DB, articleID uint) int64 {
	t.Helper()
	var article Article
	require.NoError(t, db.Take(&article, articleID).Error)
	return article.FavoritesCount
}

func TestSaveFavoriteMovesCounterOnce(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	article := createTestArticle(t, db, alice.ID, "How to train your dragon")

	favorite := Favorite{UserID: alice.ID, ArticleID: article.ID}
	created, err := favorite.SaveFavorite(db)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), articleFavoritesCount(t, db, article.ID))

	again := Favorite{UserID: alice.ID, ArticleID: article.ID}
	created, err = again.SaveFavorite(db)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), articleFavoritesCount(t, db, article.ID))
}

func TestDeleteFavoriteToleratesMissingEdge(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	article := createTestArticle(t, db, alice.ID, "How to train your dragon")

	favorite := Favorite{UserID: alice.ID, ArticleID: article.ID}
	_, err := favorite.SaveFavorite(db)
	require.NoError(t, err)

	edge := Favorite{UserID: alice.ID, ArticleID: article.ID}
	removed, err := edge.DeleteFavorite(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Equal(t, int64(0), articleFavoritesCount(t, db, article.ID))

	// Second removal finds nothing and must not drive the counter negative.
	removed, err = edge.DeleteFavorite(db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
	assert.Equal(t, int64(0), articleFavoritesCount(t, db, article.ID))
}

func TestCounterMatchesEdgeCardinality(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	jake := createTestUser(t, db, "jake")
	article := createTestArticle(t, db, alice.ID, "How to train your dragon")

	for _, uid := range []uint{alice.ID, jake.ID} {
		favorite := Favorite{UserID: uid, ArticleID: article.ID}
		_, err := favorite.SaveFavorite(db)
		require.NoError(t, err)
	}

	probe := Favorite{}
	count, err := probe.CountForArticle(db, article.ID)
	require.NoError(t, err)
	assert.Equal(t, count, articleFavoritesCount(t, db, article.ID))
}

func TestDeleteUserFavoritesFixesCounters(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	jake := createTestUser(t, db, "jake")
	article := createTestArticle(t, db, jake.ID, "How to train your dragon")

	favorite := Favorite{UserID: alice.ID, ArticleID: article.ID}
	_, err := favorite.SaveFavorite(db)
	require.NoError(t, err)

	probe := Favorite{}
	removed, err := probe.DeleteUserFavorites(db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Equal(t, int64(0), articleFavoritesCount(t, db, article.ID))
}
