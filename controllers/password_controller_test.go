package controllers

import (
	"net/http"
	"testing"

	"Conduit/models"
	"Conduit/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForgotPasswordUnknownEmailStaysSilent(t *testing.T) {
	server := newTestServer(t)

	payload := map[string]interface{}{"email": "ghost@example.com"}
	recorder := doRequest(t, server, http.MethodPost, "/api/password/forgot", "", payload)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var count int64
	require.NoError(t, server.DB.Model(&models.ResetPassword{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestResetPasswordInvalidToken(t *testing.T) {
	server := newTestServer(t)

	payload := map[string]interface{}{
		"token":           "not-a-real-token",
		"new_password":    "brand-new-pass",
		"retype_password": "brand-new-pass",
	}
	recorder := doRequest(t, server, http.MethodPost, "/api/password/reset", "", payload)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestResetPasswordFlow(t *testing.T) {
	server := newTestServer(t)
	alice, _ := registerTestUser(t, server, "alice")

	details := models.ResetPassword{Email: alice.Email}
	details.Prepare()
	saved, err := details.SaveDetails(server.DB)
	require.NoError(t, err)

	payload := map[string]interface{}{
		"token":           saved.Token,
		"new_password":    "brand-new-pass",
		"retype_password": "brand-new-pass",
	}
	recorder := doRequest(t, server, http.MethodPost, "/api/password/reset", "", payload)
	require.Equal(t, http.StatusOK, recorder.Code)

	var updated models.User
	require.NoError(t, server.DB.Take(&updated, alice.ID).Error)
	assert.NoError(t, security.VerifyPassword(updated.Password, "brand-new-pass"))

	// The token is single use.
	var count int64
	require.NoError(t, server.DB.Model(&models.ResetPassword{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
