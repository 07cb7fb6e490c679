package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"Conduit/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteLifecycle(t *testing.T) {
	server := newTestServer(t)
	author, _ := registerTestUser(t, server, "alice")
	_, jakeToken := registerTestUser(t, server, "jake")
	publishTestArticle(t, server, author.ID, "How to train your dragon", nil)

	// First favorite moves the counter.
	recorder := doRequest(t, server, http.MethodPost, "/api/articles/how-to-train-your-dragon/favorite", jakeToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	article := decodeBody(t, recorder)["article"].(map[string]interface{})
	assert.Equal(t, true, article["favorited"])
	assert.Equal(t, float64(1), article["favoritesCount"])

	// A repeat favorite leaves it where it is.
	recorder = doRequest(t, server, http.MethodPost, "/api/articles/how-to-train-your-dragon/favorite", jakeToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	article = decodeBody(t, recorder)["article"].(map[string]interface{})
	assert.Equal(t, true, article["favorited"])
	assert.Equal(t, float64(1), article["favoritesCount"])

	// Unfavorite clears the flag and the counter.
	recorder = doRequest(t, server, http.MethodDelete, "/api/articles/how-to-train-your-dragon/favorite", jakeToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	article = decodeBody(t, recorder)["article"].(map[string]interface{})
	assert.Equal(t, false, article["favorited"])
	assert.Equal(t, float64(0), article["favoritesCount"])

	// Unfavoriting an article that is not favorited still succeeds.
	recorder = doRequest(t, server, http.MethodDelete, "/api/articles/how-to-train-your-dragon/favorite", jakeToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	article = decodeBody(t, recorder)["article"].(map[string]interface{})
	assert.Equal(t, false, article["favorited"])
	assert.Equal(t, float64(0), article["favoritesCount"])
}

func TestFavoriteUnknownArticle(t *testing.T) {
	server := newTestServer(t)
	_, token := registerTestUser(t, server, "alice")

	recorder := doRequest(t, server, http.MethodPost, "/api/articles/no-such-slug/favorite", token, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = doRequest(t, server, http.MethodDelete, "/api/articles/no-such-slug/favorite", token, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

// staleViewerContext builds a request context whose viewer id points at a
// deleted account, the state a request lands in when the account goes away
// after the auth middleware ran.
func staleViewerContext(t *testing.T, method, slug string, viewerID uint) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	req, err := http.NewRequest(method, "/api/articles/"+slug+"/favorite", nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "slug", Value: slug}}
	c.Set("userID", viewerID)
	return c, recorder
}

// Favoriting and unfavoriting diverge when the acting account row is gone:
// favorite only cares that the article exists, unfavorite refuses.
func TestFavoriteStaleViewerStillSucceeds(t *testing.T) {
	server := newTestServer(t)
	author, _ := registerTestUser(t, server, "alice")
	ghost, _ := registerTestUser(t, server, "jake")
	publishTestArticle(t, server, author.ID, "How to train your dragon", nil)
	require.NoError(t, server.DB.Delete(&models.User{}, ghost.ID).Error)

	c, recorder := staleViewerContext(t, http.MethodPost, "how-to-train-your-dragon", ghost.ID)
	server.FavoriteArticle(c)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestUnfavoriteStaleViewerRejected(t *testing.T) {
	server := newTestServer(t)
	author, _ := registerTestUser(t, server, "alice")
	ghost, _ := registerTestUser(t, server, "jake")
	publishTestArticle(t, server, author.ID, "How to train your dragon", nil)
	require.NoError(t, server.DB.Delete(&models.User{}, ghost.ID).Error)

	c, recorder := staleViewerContext(t, http.MethodDelete, "how-to-train-your-dragon", ghost.ID)
	server.UnfavoriteArticle(c)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestFavoriteRequiresAuth(t *testing.T) {
	server := newTestServer(t)
	author, _ := registerTestUser(t, server, "alice")
	publishTestArticle(t, server, author.ID, "How to train your dragon", nil)

	recorder := doRequest(t, server, http.MethodPost, "/api/articles/how-to-train-your-dragon/favorite", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
