package controllers

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"strings"

	"Conduit/auth"
	"Conduit/models"
	"Conduit/security"
	"Conduit/utils/formaterror"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Login authenticates with email and password and returns the account with a
// fresh token.
func (server *Server) Login(c *gin.Context) {
	errList := map[string]string{}

	body, err := ioutil.ReadAll(c.Request.Body)
	if err != nil {
		errList["Invalid_body"] = "Unable to get request"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}
	req := userRequest{}
	if err := json.Unmarshal(body, &req); err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	user := models.User{
		Email:    req.User.Email,
		Password: req.User.Password,
	}
	user.Prepare()
	if errorMessages := user.Validate("login"); len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errorMessages})
		return
	}

	found, token, err := server.SignIn(c, user.Email, user.Password)
	if err != nil {
		formattedError := formaterror.FormatError(err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": formattedError})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToDTO(found, token)})
}

// SignIn verifies the credentials and mints a token for the matching account.
func (server *Server) SignIn(c *gin.Context, email, password string) (*models.User, string, error) {
	db := server.DB.WithContext(c.Request.Context())

	user := models.User{}
	normalizedEmail := strings.ToLower(email)
	err := db.Model(models.User{}).Where("lower(email) = ?", normalizedEmail).Take(&user).Error
	if err != nil {
		return nil, "", err
	}

	if err := security.VerifyPassword(user.Password, password); err != nil {
		if err != bcrypt.ErrMismatchedHashAndPassword {
			log.Printf("verify password: %v", err)
		}
		return nil, "", err
	}

	token, err := auth.CreateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}
