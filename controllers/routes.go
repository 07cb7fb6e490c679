package controllers

import (
	"os"

	"Conduit/middlewares"

	"github.com/gin-gonic/gin"
)

func (s *Server) initializeRoutes() {

	s.Router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := s.Router.Group("/api")
	{
		// Identity routes
		api.POST("/users", middlewares.LoginRateLimitMiddleware(), s.CreateUser)
		api.POST("/users/login", middlewares.LoginRateLimitMiddleware(), s.Login)
		api.GET("/user", middlewares.TokenAuthMiddleware(s.DB), s.GetCurrentUser)
		api.PUT("/user", middlewares.TokenAuthMiddleware(s.DB), s.UpdateUser)
		api.PUT("/user/avatar", middlewares.TokenAuthMiddleware(s.DB), s.UpdateAvatar)
		api.DELETE("/user", middlewares.TokenAuthMiddleware(s.DB), s.DeleteUser)
		api.POST("/password/forgot", middlewares.LoginRateLimitMiddleware(), s.ForgotPassword)
		api.POST("/password/reset", middlewares.LoginRateLimitMiddleware(), s.ResetPassword)
		api.POST("/invites", middlewares.TokenAuthMiddleware(s.DB), s.CreateInvite)
		api.POST("/invites/accept", middlewares.LoginRateLimitMiddleware(), s.AcceptInvite)

		// Profile routes
		api.GET("/profiles/:username", middlewares.OptionalAuthMiddleware(), s.GetProfile)
		api.POST("/profiles/:username/follow", middlewares.TokenAuthMiddleware(s.DB), s.FollowUser)
		api.DELETE("/profiles/:username/follow", middlewares.TokenAuthMiddleware(s.DB), s.UnfollowUser)

		// Article routes. Gin cannot mount a static /articles/feed next to
		// /articles/:slug, so GetArticle dispatches the "feed" slug itself.
		api.POST("/articles", middlewares.TokenAuthMiddleware(s.DB), s.CreateArticle)
		api.GET("/articles", middlewares.OptionalAuthMiddleware(), s.GetArticles)
		api.GET("/articles/:slug", middlewares.OptionalAuthMiddleware(), s.GetArticle)
		api.PUT("/articles/:slug", middlewares.TokenAuthMiddleware(s.DB), s.UpdateArticle)
		api.DELETE("/articles/:slug", middlewares.TokenAuthMiddleware(s.DB), s.DeleteArticle)

		// Favorite routes
		api.POST("/articles/:slug/favorite", middlewares.TokenAuthMiddleware(s.DB), s.FavoriteArticle)
		api.DELETE("/articles/:slug/favorite", middlewares.TokenAuthMiddleware(s.DB), s.UnfavoriteArticle)

		// Comment routes
		api.POST("/articles/:slug/comments", middlewares.TokenAuthMiddleware(s.DB), s.CreateComment)
		api.GET("/articles/:slug/comments", middlewares.OptionalAuthMiddleware(), s.GetComments)
		api.DELETE("/articles/:slug/comments/:id", middlewares.TokenAuthMiddleware(s.DB), s.DeleteComment)

		// Tag routes
		api.GET("/tags", s.GetTags)

		// Test isolation: wipe everything. Only mounted when explicitly enabled.
		if os.Getenv("ENABLE_TEST_ROUTES") == "1" {
			api.POST("/testing/wipe", s.WipeData)
		}
	}
}
