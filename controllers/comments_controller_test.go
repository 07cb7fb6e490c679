package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLifecycle(t *testing.T) {
	server := newTestServer(t)
	alice, _ := registerTestUser(t, server, "alice")
	_, jakeToken := registerTestUser(t, server, "jake")
	publishTestArticle(t, server, alice.ID, "Dragon lore", nil)

	payload := map[string]interface{}{
		"comment": map[string]interface{}{"body": "Nice writeup"},
	}
	recorder := doRequest(t, server, http.MethodPost, "/api/articles/dragon-lore/comments", jakeToken, payload)
	require.Equal(t, http.StatusCreated, recorder.Code)
	comment := decodeBody(t, recorder)["comment"].(map[string]interface{})
	assert.Equal(t, "Nice writeup", comment["body"])
	assert.NotEmpty(t, comment["id"])
	author := comment["author"].(map[string]interface{})
	assert.Equal(t, "jake", author["username"])

	recorder = doRequest(t, server, http.MethodGet, "/api/articles/dragon-lore/comments", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	comments := decodeBody(t, recorder)["comments"].([]interface{})
	require.Len(t, comments, 1)

	commentID := comment["id"].(string)
	recorder = doRequest(t, server, http.MethodDelete, "/api/articles/dragon-lore/comments/"+commentID, jakeToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(t, server, http.MethodGet, "/api/articles/dragon-lore/comments", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	comments = decodeBody(t, recorder)["comments"].([]interface{})
	assert.Empty(t, comments)
}

func TestDeleteCommentByNonAuthorForbidden(t *testing.T) {
	server := newTestServer(t)
	alice, _ := registerTestUser(t, server, "alice")
	_, jakeToken := registerTestUser(t, server, "jake")
	_, milaToken := registerTestUser(t, server, "mila")
	publishTestArticle(t, server, alice.ID, "Dragon lore", nil)

	payload := map[string]interface{}{
		"comment": map[string]interface{}{"body": "mine"},
	}
	recorder := doRequest(t, server, http.MethodPost, "/api/articles/dragon-lore/comments", jakeToken, payload)
	require.Equal(t, http.StatusCreated, recorder.Code)
	commentID := decodeBody(t, recorder)["comment"].(map[string]interface{})["id"].(string)

	recorder = doRequest(t, server, http.MethodDelete, "/api/articles/dragon-lore/comments/"+commentID, milaToken, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestCommentOnUnknownArticle(t *testing.T) {
	server := newTestServer(t)
	_, token := registerTestUser(t, server, "alice")

	payload := map[string]interface{}{
		"comment": map[string]interface{}{"body": "into the void"},
	}
	recorder := doRequest(t, server, http.MethodPost, "/api/articles/no-such-slug/comments", token, payload)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCommentRequiresBody(t *testing.T) {
	server := newTestServer(t)
	alice, token := registerTestUser(t, server, "alice")
	publishTestArticle(t, server, alice.ID, "Dragon lore", nil)

	payload := map[string]interface{}{
		"comment": map[string]interface{}{"body": "   "},
	}
	recorder := doRequest(t, server, http.MethodPost, "/api/articles/dragon-lore/comments", token, payload)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}
