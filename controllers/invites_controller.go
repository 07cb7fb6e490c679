package controllers

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"

	"Conduit/auth"
	"Conduit/mailer"
	"Conduit/models"
	"Conduit/utils/formaterror"
	httpctx "Conduit/utils/httpctx"

	"github.com/gin-gonic/gin"
)

// CreateInvite lets an authenticated user invite someone by email. The invite
// carries a one-time token and expires after seven days; re-inviting the same
// address replaces the pending invite.
func (server *Server) CreateInvite(c *gin.Context) {
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
	var req struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	db := server.DB.WithContext(c.Request.Context())

	user := models.User{}
	inviter, err := user.FindUserByID(db, viewerID)
	if err != nil {
		errList["Missing_entity"] = "User no longer exists"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	invite := models.Invite{
		Email:     req.Email,
		InviterID: viewerID,
	}
	invite.Prepare()
	if errorMessages := invite.Validate(); len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errorMessages})
		return
	}

	// An already registered address cannot be invited.
	var existing models.User
	if err := db.Model(&models.User{}).Where("email = ?", invite.Email).Take(&existing).Error; err == nil {
		errList["Taken_email"] = "That email is already registered"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	saved, err := invite.SaveInvite(db)
	if err != nil {
		errList["Other_error"] = "Error creating invite"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}

	if err := mailer.SendInvite(saved.Email, inviter.Username, saved.Token); err != nil {
		log.Printf("invite mail to %s failed: %v", saved.Email, err)
		errList["Other_error"] = "Could not send the invite email, please try again later"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invite": InviteDTO{Email: saved.Email, ExpiresAt: saved.ExpiresAt}})
}

// AcceptInvite consumes an invite token and registers the account in one
// step. The registered email must match the invited address.
func (server *Server) AcceptInvite(c *gin.Context) {
	errList := map[string]string{}

	body, err := ioutil.ReadAll(c.Request.Body)
	if err != nil {
		errList["Invalid_body"] = "Unable to get request"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}
	var req struct {
		Token string      `json:"token"`
		User  userPayload `json:"user"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	db := server.DB.WithContext(c.Request.Context())

	invite := models.Invite{}
	found, err := invite.FindByToken(db, req.Token)
	if err != nil {
		errList["Invalid_token"] = "Invalid or expired invite"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}
	if found.Expired() || found.Accepted() {
		errList["Invalid_token"] = "Invalid or expired invite"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	user := models.User{
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
	}
	user.Prepare()
	if user.Email != found.Email {
		errList["Email_mismatch"] = "The email does not match the invitation"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}
	if errorMessages := user.Validate(""); len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errorMessages})
		return
	}

	created, err := user.SaveUser(db)
	if err != nil {
		formattedError := formaterror.FormatError(err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": formattedError})
		return
	}

	if err := found.MarkAccepted(db); err != nil {
		log.Printf("marking invite %d accepted: %v", found.ID, err)
	}

	token, err := auth.CreateToken(created.ID)
	if err != nil {
		errList["Other_error"] = "Cannot create token"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": userToDTO(created, token)})
}
