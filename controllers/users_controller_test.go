package controllers

import (
	"net/http"
	"testing"

	"Conduit/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	server := newTestServer(t)

	payload := map[string]interface{}{
		"user": map[string]interface{}{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "password",
		},
	}
	recorder := doRequest(t, server, http.MethodPost, "/api/users", "", payload)
	require.Equal(t, http.StatusCreated, recorder.Code)
	user := decodeBody(t, recorder)["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotEmpty(t, user["token"])

	// Passwords never come back.
	_, hasPassword := user["password"]
	assert.False(t, hasPassword)

	login := map[string]interface{}{
		"user": map[string]interface{}{
			"email":    "alice@example.com",
			"password": "password",
		},
	}
	recorder = doRequest(t, server, http.MethodPost, "/api/users/login", "", login)
	require.Equal(t, http.StatusOK, recorder.Code)
	user = decodeBody(t, recorder)["user"].(map[string]interface{})
	assert.NotEmpty(t, user["token"])

	badLogin := map[string]interface{}{
		"user": map[string]interface{}{
			"email":    "alice@example.com",
			"password": "wrong-password",
		},
	}
	recorder = doRequest(t, server, http.MethodPost, "/api/users/login", "", badLogin)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	server := newTestServer(t)
	registerTestUser(t, server, "alice")

	payload := map[string]interface{}{
		"user": map[string]interface{}{
			"username": "alice",
			"email":    "other@example.com",
			"password": "password",
		},
	}
	recorder := doRequest(t, server, http.MethodPost, "/api/users", "", payload)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestGetCurrentUser(t *testing.T) {
	server := newTestServer(t)
	_, token := registerTestUser(t, server, "alice")

	recorder := doRequest(t, server, http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	user := decodeBody(t, recorder)["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.NotEmpty(t, user["token"])

	recorder = doRequest(t, server, http.MethodGet, "/api/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestUpdateUserBioAndEmail(t *testing.T) {
	server := newTestServer(t)
	_, token := registerTestUser(t, server, "alice")

	payload := map[string]interface{}{
		"user": map[string]interface{}{
			"email": "new@example.com",
			"bio":   "Now with a bio",
		},
	}
	recorder := doRequest(t, server, http.MethodPut, "/api/user", token, payload)
	require.Equal(t, http.StatusOK, recorder.Code)
	user := decodeBody(t, recorder)["user"].(map[string]interface{})
	assert.Equal(t, "new@example.com", user["email"])
	assert.Equal(t, "Now with a bio", user["bio"])
	assert.Equal(t, "alice", user["username"])
}

func TestUpdateUserPasswordNeedsCurrent(t *testing.T) {
	server := newTestServer(t)
	_, token := registerTestUser(t, server, "alice")

	payload := map[string]interface{}{
		"user": map[string]interface{}{
			"current_password": "wrong",
			"new_password":     "brand-new-pass",
		},
	}
	recorder := doRequest(t, server, http.MethodPut, "/api/user", token, payload)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestDeleteUserCascades(t *testing.T) {
	server := newTestServer(t)
	alice, aliceToken := registerTestUser(t, server, "alice")
	jake, _ := registerTestUser(t, server, "jake")

	article := publishTestArticle(t, server, alice.ID, "Dragon lore", []string{"dragons"})
	comment := models.Comment{UserID: alice.ID, ArticleID: article.ID, Body: "own comment"}
	_, err := comment.SaveComment(server.DB)
	require.NoError(t, err)
	follow := models.Follow{FollowerID: alice.ID, FollowedID: jake.ID}
	_, err = follow.SaveFollow(server.DB)
	require.NoError(t, err)

	recorder := doRequest(t, server, http.MethodDelete, "/api/user", aliceToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var users, articles, comments, follows int64
	require.NoError(t, server.DB.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, server.DB.Model(&models.Article{}).Count(&articles).Error)
	require.NoError(t, server.DB.Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, server.DB.Model(&models.Follow{}).Count(&follows).Error)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(0), articles)
	assert.Equal(t, int64(0), comments)
	assert.Equal(t, int64(0), follows)
}
