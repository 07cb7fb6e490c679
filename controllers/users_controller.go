package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"strings"

	"Conduit/auth"
	"Conduit/models"
	"Conduit/security"
	"Conduit/utils/fileformat"
	"Conduit/utils/formaterror"
	httpctx "Conduit/utils/httpctx"

	aws2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type userPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

type userRequest struct {
	User userPayload `json:"user"`
}

// CreateUser handles registration. A fresh token comes back with the user so
// the client is signed in immediately.
func (server *Server) CreateUser(c *gin.Context) {
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
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
	}
	user.Prepare()
	if errorMessages := user.Validate(""); len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errorMessages})
		return
	}

	db := server.DB.WithContext(c.Request.Context())
	created, err := user.SaveUser(db)
	if err != nil {
		formattedError := formaterror.FormatError(err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": formattedError})
		return
	}

	token, err := auth.CreateToken(created.ID)
	if err != nil {
		errList["Other_error"] = "Cannot create token"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": userToDTO(created, token)})
}

// GetCurrentUser returns the authenticated account with a refreshed token.
func (server *Server) GetCurrentUser(c *gin.Context) {
	viewerID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "errors": gin.H{"Unauthorized": "Unauthorized"}})
		return
	}

	db := server.DB.WithContext(c.Request.Context())
	user := models.User{}
	found, err := user.FindUserByID(db, viewerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "errors": gin.H{"Not_found": "User not found"}})
		return
	}

	token, err := auth.CreateToken(found.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Cannot create token"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userToDTO(found, token)})
}

// UpdateUser edits the authenticated account. Usernames are immutable; a
// password change requires the current password.
func (server *Server) UpdateUser(c *gin.Context) {
	errList := map[string]string{}

	viewerID, ok := httpctx.CurrentUserID(c)
	if !ok {
		errList["Unauthorized"] = "Unauthorized"
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "errors": errList})
		return
	}

	var req struct {
		User struct {
			Email           string `json:"email"`
			Bio             string `json:"bio"`
			Image           string `json:"image"`
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		} `json:"user"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
		return
	}

	db := server.DB.WithContext(c.Request.Context())

	former := models.User{}
	if err := db.Model(&models.User{}).Where("id = ?", viewerID).Take(&former).Error; err != nil {
		errList["Not_found"] = "User not found"
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "errors": errList})
		return
	}

	updated := models.User{}
	updated.Username = former.Username

	if req.User.NewPassword != "" {
		if len(req.User.NewPassword) < 6 {
			errList["Invalid_password"] = "Password should be at least 6 characters"
			c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
			return
		}
		if err := security.VerifyPassword(former.Password, req.User.CurrentPassword); err != nil {
			errList["Incorrect_password"] = "Current password is incorrect"
			c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errList})
			return
		}
		updated.Password = req.User.NewPassword
	}

	if req.User.Email != "" {
		updated.Email = req.User.Email
	} else {
		updated.Email = former.Email
	}
	if req.User.Bio != "" {
		updated.Bio = req.User.Bio
	} else {
		updated.Bio = former.Bio
	}
	updated.Image = req.User.Image

	updated.Prepare()
	if errorMessages := updated.Validate("update"); len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": errorMessages})
		return
	}

	saved, err := updated.UpdateAUser(db, viewerID)
	if err != nil {
		formattedError := formaterror.FormatError(err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "errors": formattedError})
		return
	}

	token, err := auth.CreateToken(saved.ID)
	if err != nil {
		errList["Other_error"] = "Cannot create token"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": errList})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userToDTO(saved, token)})
}

// UpdateAvatar uploads a new profile image to S3 and stores its key on the
// account.
func (server *Server) UpdateAvatar(c *gin.Context) {
	viewerID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "errors": gin.H{"Unauthorized": "Unauthorized"}})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "errors": gin.H{"Invalid_file": "Invalid file"}})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "errors": gin.H{"Invalid_file": "Cannot open file"}})
		return
	}
	defer f.Close()

	size := file.Size
	if size > 512_000 {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "errors": gin.H{"Too_large": "File too large (<500KB)"}})
		return
	}

	buf := make([]byte, size)
	if _, err := f.Read(buf); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "errors": gin.H{"Invalid_file": "Could not read file"}})
		return
	}
	fileType := http.DetectContentType(buf)
	if !strings.HasPrefix(fileType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "errors": gin.H{"Not_image": "Not an image"}})
		return
	}

	filePath := fileformat.UniqueFormat(file.Filename)
	key := "UserProfilePics/" + filePath

	rawBucket := os.Getenv("S3_BUCKET")
	bucketName := strings.SplitN(rawBucket, "/", 2)[0]
	if bucketName == "" {
		log.Printf("S3_BUCKET env var is empty or invalid: '%s'", rawBucket)
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Server configuration error"}})
		return
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	cfg, err := config.LoadDefaultConfig(
		context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		log.Printf("AWS config load error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "AWS configuration error"}})
		return
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	_, err = s3Client.PutObject(c.Request.Context(), &s3.PutObjectInput{
		Bucket:        aws2.String(bucketName),
		Key:           aws2.String(key),
		Body:          bytes.NewReader(buf),
		ContentLength: aws2.Int64(size),
		ContentType:   aws2.String(fileType),
	})
	if err != nil {
		log.Printf("S3 upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Failed to upload image"}})
		return
	}

	db := server.DB.WithContext(c.Request.Context())
	user := models.User{Image: filePath}
	saved, err := user.UpdateAUserAvatar(db, viewerID)
	if err != nil {
		log.Printf("DB update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Cannot save image, please try again later"}})
		return
	}

	token, err := auth.CreateToken(saved.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Cannot create token"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userToDTO(saved, token)})
}

// DeleteUser removes the authenticated account and everything it owns:
// articles with their dependents, comments, favorite edges, and follow edges
// with the counters of the users on the other end fixed up.
func (server *Server) DeleteUser(c *gin.Context) {
	viewerID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "errors": gin.H{"Unauthorized": "Unauthorized"}})
		return
	}

	db := server.DB.WithContext(c.Request.Context())
	err := db.Transaction(func(tx *gorm.DB) error {
		article := models.Article{}
		if _, err := article.DeleteUserArticles(tx, viewerID); err != nil {
			return err
		}
		comment := models.Comment{}
		if _, err := comment.DeleteUserComments(tx, viewerID); err != nil {
			return err
		}
		favorite := models.Favorite{}
		if _, err := favorite.DeleteUserFavorites(tx, viewerID); err != nil {
			return err
		}
		if err := models.DeleteUserFollowEdges(tx, viewerID); err != nil {
			return err
		}
		user := models.User{}
		_, err := user.DeleteAUser(tx, viewerID)
		return err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "errors": gin.H{"Other_error": "Please try again later"}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": "User deleted"})
}
