package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/controllers"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/middleware"
)

// Controllers are the handlers mounted by SetupRouter.
type Controllers struct {
	Auth         *controllers.AuthController
	Users        *controllers.UserController
	Clubs        *controllers.ClubController
	Posts        *controllers.PostController
	Comments     *controllers.CommentController
	Forum        *controllers.ForumController
	Events       *controllers.EventController
	Feed         *controllers.FeedController
	Interactions *controllers.InteractionController
	Live         *controllers.LiveController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
	}

	// --- Public club directory ---
	v1.GET("/clubs", c.Clubs.Search)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.POST("/auth/logout", c.Auth.Logout)
	authenticated.GET("/feed", c.Feed.Feed)

	users := authenticated.Group("/users")
	{
		users.GET("/me", c.Users.Me)
		users.PATCH("/me", c.Users.UpdateMe)
		users.PUT("/me/avatar", c.Users.UpdateAvatar)
		users.GET("/me/bookmarks", c.Users.Bookmarks)
		users.GET("/:userId", c.Users.Profile)
	}

	clubs := authenticated.Group("/clubs")
	{
		clubs.POST("", c.Clubs.Create)
		clubs.GET("/:clubId", c.Clubs.Get)
		clubs.PATCH("/:clubId", c.Clubs.Update)
		clubs.DELETE("/:clubId", c.Clubs.Delete)
		clubs.PUT("/:clubId/avatar", c.Clubs.UpdateAvatar)

		clubs.POST("/:clubId/join", c.Clubs.Join)
		clubs.POST("/:clubId/leave", c.Clubs.Leave)
		clubs.GET("/:clubId/role", c.Clubs.MyRole)
		clubs.GET("/:clubId/members", c.Clubs.Members)
		clubs.PUT("/:clubId/members/:memberId/role", c.Clubs.ChangeRole)
		clubs.GET("/:clubId/live", c.Live.Stream)

		clubs.POST("/:clubId/posts", c.Posts.Create)
		clubs.GET("/:clubId/posts", c.Posts.ListByClub)
		clubs.POST("/:clubId/threads", c.Forum.CreateThread)
		clubs.GET("/:clubId/threads", c.Forum.ListThreads)
		clubs.POST("/:clubId/events", c.Events.Create)
		clubs.GET("/:clubId/events", c.Events.ListByClub)
	}

	posts := authenticated.Group("/posts")
	{
		posts.GET("/:postId", c.Posts.Get)
		posts.PATCH("/:postId", c.Posts.Update)
		posts.DELETE("/:postId", c.Posts.Delete)
		posts.PUT("/:postId/picture", c.Posts.UpdatePicture)
		posts.DELETE("/:postId/picture", c.Posts.DeletePicture)
		posts.POST("/:postId/share", c.Posts.Share)
		posts.POST("/:postId/comments", c.Comments.Create(models.ResourcePost, "postId"))
		posts.GET("/:postId/comments", c.Comments.List(models.ResourcePost, "postId"))
	}

	threads := authenticated.Group("/threads")
	{
		threads.GET("/:threadId", c.Forum.GetThread)
		threads.PATCH("/:threadId", c.Forum.UpdateThread)
		threads.DELETE("/:threadId", c.Forum.DeleteThread)
		threads.POST("/:threadId/replies", c.Forum.CreateReply)
		threads.GET("/:threadId/replies", c.Forum.ListReplies)
		threads.POST("/:threadId/comments", c.Comments.Create(models.ResourceThread, "threadId"))
		threads.GET("/:threadId/comments", c.Comments.List(models.ResourceThread, "threadId"))
	}

	authenticated.PATCH("/replies/:replyId", c.Forum.UpdateReply)
	authenticated.DELETE("/replies/:replyId", c.Forum.DeleteReply)
	authenticated.PATCH("/comments/:commentId", c.Comments.Update)
	authenticated.DELETE("/comments/:commentId", c.Comments.Delete)

	events := authenticated.Group("/events")
	{
		events.GET("/:eventId", c.Events.Get)
		events.PATCH("/:eventId", c.Events.Update)
		events.DELETE("/:eventId", c.Events.Delete)
	}

	authenticated.PUT("/interactions/:kind/:id/:axis", c.Interactions.Add)
	authenticated.DELETE("/interactions/:kind/:id/:axis", c.Interactions.Remove)
}
