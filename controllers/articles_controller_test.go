package controllers

import (
	"net/http"
	"testing"

	"Conduit/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateArticleWithTags(t *testing.T) {
	server := newTestServer(t)
	_, token := registerTestUser(t, server, "alice")

	payload := map[string]interface{}{
		"article": map[string]interface{}{
			"title":       "How to train your dragon",
			"description": "Ever wonder how?",
			"body":        "It takes a Jacobian",
			"tagList":     []string{"Dragons", "training", "dragons"},
		},
	}
	recorder := doRequest(t, server, http.MethodPost, "/api/articles", token, payload)
	require.Equal(t, http.StatusCreated, recorder.Code)

	article := decodeBody(t, recorder)["article"].(map[string]interface{})
	assert.Equal(t, "how-to-train-your-dragon", article["slug"])
	assert.Equal(t, []interface{}{"dragons", "training"}, article["tagList"])
	assert.Equal(t, false, article["favorited"])
	assert.Equal(t, float64(0), article["favoritesCount"])

	author := article["author"].(map[string]interface{})
	assert.Equal(t, "alice", author["username"])
}

func TestCreateArticleValidates(t *testing.T) {
	server := newTestServer(t)
	_, token := registerTestUser(t, server, "alice")

	payload := map[string]interface{}{
		"article": map[string]interface{}{"description": "no title or body"},
	}
	recorder := doRequest(t, server, http.MethodPost, "/api/articles", token, payload)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestGetArticlesFilters(t *testing.T) {
	server := newTestServer(t)
	alice, _ := registerTestUser(t, server, "alice")
	jake, _ := registerTestUser(t, server, "jake")

	publishTestArticle(t, server, alice.ID, "Dragon lore", []string{"dragons"})
	publishTestArticle(t, server, jake.ID, "Unrelated", []string{"golang"})

	recorder := doRequest(t, server, http.MethodGet, "/api/articles?tag=dragons", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, float64(1), body["articlesCount"])
	articles := body["articles"].([]interface{})
	require.Len(t, articles, 1)
	assert.Equal(t, "dragon-lore", articles[0].(map[string]interface{})["slug"])

	recorder = doRequest(t, server, http.MethodGet, "/api/articles?author=jake", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body = decodeBody(t, recorder)
	assert.Equal(t, float64(1), body["articlesCount"])
}

func TestGetArticleAnonymousFlagsFalse(t *testing.T) {
	server := newTestServer(t)
	alice, _ := registerTestUser(t, server, "alice")
	article := publishTestArticle(t, server, alice.ID, "Dragon lore", nil)

	favorite := models.Favorite{UserID: alice.ID, ArticleID: article.ID}
	_, err := favorite.SaveFavorite(server.DB)
	require.NoError(t, err)

	recorder := doRequest(t, server, http.MethodGet, "/api/articles/dragon-lore", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	dto := decodeBody(t, recorder)["article"].(map[string]interface{})
	assert.Equal(t, false, dto["favorited"])
	assert.Equal(t, float64(1), dto["favoritesCount"])
	author := dto["author"].(map[string]interface{})
	assert.Equal(t, false, author["following"])
}

func TestUpdateArticleByNonOwnerForbidden(t *testing.T) {
	server := newTestServer(t)
	alice, _ := registerTestUser(t, server, "alice")
	_, jakeToken := registerTestUser(t, server, "jake")
	publishTestArticle(t, server, alice.ID, "Dragon lore", nil)

	payload := map[string]interface{}{
		"article": map[string]interface{}{"body": "hijacked"},
	}
	recorder := doRequest(t, server, http.MethodPut, "/api/articles/dragon-lore", jakeToken, payload)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestUpdateArticleChangedTitleReslugs(t *testing.T) {
	server := newTestServer(t)
	alice, token := registerTestUser(t, server, "alice")
	publishTestArticle(t, server, alice.ID, "Dragon lore", nil)

	payload := map[string]interface{}{
		"article": map[string]interface{}{"title": "Dragon history"},
	}
	recorder := doRequest(t, server, http.MethodPut, "/api/articles/dragon-lore", token, payload)
	require.Equal(t, http.StatusOK, recorder.Code)
	article := decodeBody(t, recorder)["article"].(map[string]interface{})
	assert.Equal(t, "dragon-history", article["slug"])
}

func TestDeleteArticleByNonOwnerForbidden(t *testing.T) {
	server := newTestServer(t)
	alice, _ := registerTestUser(t, server, "alice")
	_, jakeToken := registerTestUser(t, server, "jake")
	publishTestArticle(t, server, alice.ID, "Dragon lore", nil)

	recorder := doRequest(t, server, http.MethodDelete, "/api/articles/dragon-lore", jakeToken, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	var count int64
	require.NoError(t, server.DB.Model(&models.Article{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFeedShowsOnlyFollowedAuthors(t *testing.T) {
	server := newTestServer(t)
	alice, aliceToken := registerTestUser(t, server, "alice")
	jake, _ := registerTestUser(t, server, "jake")
	mila, _ := registerTestUser(t, server, "mila")

	publishTestArticle(t, server, jake.ID, "From jake", nil)
	publishTestArticle(t, server, mila.ID, "From mila", nil)

	follow := models.Follow{FollowerID: alice.ID, FollowedID: jake.ID}
	_, err := follow.SaveFollow(server.DB)
	require.NoError(t, err)

	recorder := doRequest(t, server, http.MethodGet, "/api/articles/feed", aliceToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, float64(1), body["articlesCount"])
	articles := body["articles"].([]interface{})
	require.Len(t, articles, 1)
	dto := articles[0].(map[string]interface{})
	assert.Equal(t, "from-jake", dto["slug"])
	author := dto["author"].(map[string]interface{})
	assert.Equal(t, true, author["following"])
}

func TestFeedRequiresAuth(t *testing.T) {
	server := newTestServer(t)

	recorder := doRequest(t, server, http.MethodGet, "/api/articles/feed", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
