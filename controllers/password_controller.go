package controllers

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"

	"Conduit/mailer"
	"Conduit/models"

	"github.com/gin-gonic/gin"
)

// ForgotPassword issues a one-time reset token and mails it to the account's
// address. An unknown address gets the same response as a known one, so the
// endpoint cannot be used to probe which emails are registered.
func (server *Server) ForgotPassword(c *gin.Context) {
	errList := map[string]string{}

	body, err := ioutil.ReadAll(c.Request.Body)
	if err != nil {
		errList["Invalid_body"] = "Unable to get request"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	user := models.User{Email: req.Email}
	user.Prepare()
	if errorMessages := user.Validate("forgotpassword"); len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errorMessages})
		return
	}

	db := server.DB.WithContext(c.Request.Context())

	err = db.Model(models.User{}).Where("email = ?", user.Email).Take(&models.User{}).Error
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"response": "If that email is registered, a reset link is on its way"})
		return
	}

	details := models.ResetPassword{Email: user.Email}
	details.Prepare()
	saved, err := details.SaveDetails(db)
	if err != nil {
		errList["Other_error"] = "Something went wrong, please try again later"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}

	if err := mailer.SendResetPassword(saved.Email, saved.Token); err != nil {
		log.Printf("reset mail to %s failed: %v", saved.Email, err)
		errList["Other_error"] = "Could not send the reset email, please try again later"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": "If that email is registered, a reset link is on its way"})
}

// ResetPassword consumes a reset token and sets the new password. Tokens are
// single use and expire two hours after issue.
func (server *Server) ResetPassword(c *gin.Context) {
	errList := map[string]string{}

	body, err := ioutil.ReadAll(c.Request.Body)
	if err != nil {
		errList["Invalid_body"] = "Unable to get request"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}
	var req struct {
		Token          string `json:"token"`
		NewPassword    string `json:"new_password"`
		RetypePassword string `json:"retype_password"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	if req.NewPassword == "" || req.RetypePassword == "" {
		errList["Empty_passwords"] = "Please ensure both passwords are provided"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}
	if len(req.NewPassword) < 6 {
		errList["Invalid_password"] = "Password should be at least 6 characters"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}
	if req.NewPassword != req.RetypePassword {
		errList["Password_unequal"] = "Passwords provided do not match"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	db := server.DB.WithContext(c.Request.Context())

	details := models.ResetPassword{}
	found, err := details.FindByToken(db, req.Token)
	if err != nil {
		errList["Invalid_token"] = "Invalid or expired token, please request a new one"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}
	if found.Expired() {
		_, _ = found.DeleteDetails(db)
		errList["Invalid_token"] = "Invalid or expired token, please request a new one"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	user := models.User{Email: found.Email, Password: req.NewPassword}
	if err := user.UpdatePassword(db); err != nil {
		errList["Other_error"] = "Something went wrong, please try again later"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}

	if _, err := found.DeleteDetails(db); err != nil {
		errList["Other_error"] = "Something went wrong, please try again later"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": "Password reset successfully"})
}
