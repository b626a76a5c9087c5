package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/config"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/metrics"
	"github.com/anggol23/Be-Resonansi/internal/model"
	"github.com/anggol23/Be-Resonansi/internal/service"
	"github.com/anggol23/Be-Resonansi/internal/session"
	"github.com/anggol23/Be-Resonansi/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GoogleIdentityProvider verifies Google sign-ins. *auth.GoogleVerifier
// implements it.
type GoogleIdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.ExternalIdentity, error)
	VerifyIDToken(ctx context.Context, rawIDToken string) (*auth.ExternalIdentity, error)
}

// Dependencies are the collaborators built in main. Sessions, Google and
// Metrics are optional.
type Dependencies struct {
	Repo     model.Repository
	Storage  storage.Storage
	Sessions session.Store
	Google   GoogleIdentityProvider
	Metrics  *metrics.Metrics
}

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg         config.Config
	auth        *service.AuthService
	users       *service.UserService
	posts       *service.PostService
	comments    *service.CommentService
	files       *service.FileService
	google      GoogleIdentityProvider
	metrics     *metrics.Metrics
	authLimiter *ipRateLimiter
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, deps Dependencies) (*HTTPHandler, error) {
	if deps.Repo == nil {
		return nil, errors.New("repository is required")
	}
	if deps.Storage == nil {
		return nil, errors.New("storage is required")
	}
	expiry := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, expiry)
	if err != nil {
		return nil, err
	}

	if cfg.GoogleAllowUnverifiedProfile {
		logrus.Warn("GOOGLE_ALLOW_UNVERIFIED_PROFILE is enabled: client supplied Google profiles are trusted without verification")
	}

	posts := service.NewPostService(deps.Repo)
	var recorder service.UploadRecorder
	if deps.Metrics != nil {
		recorder = deps.Metrics
	}

	return &HTTPHandler{
		cfg:         cfg,
		auth:        service.NewAuthService(deps.Repo, tokens, deps.Sessions),
		users:       service.NewUserService(deps.Repo),
		posts:       posts,
		comments:    service.NewCommentService(deps.Repo, posts),
		files:       service.NewFileService(deps.Repo, deps.Storage, service.DefaultUploadPolicy(cfg.StorageMaxUploadBytes), recorder),
		google:      deps.Google,
		metrics:     deps.Metrics,
		authLimiter: newIPRateLimiter(cfg.AuthRateLimitPerMinute),
	}, nil
}

// Router builds the gin engine with middleware, health, metrics and every
// API route.
func (h *HTTPHandler) Router() *gin.Engine {
	r := gin.New()
	r.Use(h.RecoveryMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(h.MetricsMiddleware())
	r.Use(h.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	h.RegisterRoutes(r.Group("/api"))
	return r
}

// RegisterRoutes mounts the API under group.
func (h *HTTPHandler) RegisterRoutes(api *gin.RouterGroup) {
	authenticated := h.Authenticate()
	adminOnly := RequireRole(db.UserRoleAdmin)

	authGroup := api.Group("/auth", h.RateLimit())
	authGroup.POST("/signup", h.Signup)
	authGroup.POST("/signin", h.Signin)
	authGroup.POST("/signout", h.Signout)
	authGroup.GET("/me", authenticated, withIdentity(h.Me))
	authGroup.POST("/google", h.GoogleSignIn)
	authGroup.GET("/google", h.GoogleStart)
	authGroup.GET("/google/callback", h.GoogleCallback)

	users := api.Group("/user", authenticated)
	users.GET("/getusers", adminOnly, h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.PUT("/update/:id", withIdentity(h.UpdateUser))
	users.DELETE("/delete/:id", withIdentity(h.DeleteUser))
	users.PUT("/update-role/:id", adminOnly, withIdentity(h.UpdateUserRole))

	posts := api.Group("/posts")
	posts.GET("/getposts", h.ListPosts)
	posts.GET("/getpost/:postId", h.GetPost)
	posts.GET("/post/:slug", h.GetPostBySlug)
	posts.POST("/create", authenticated, adminOnly, withIdentity(h.CreatePost))
	posts.PUT("/update/:postId", authenticated, withIdentity(h.UpdatePost))
	posts.DELETE("/delete/:postId", authenticated, withIdentity(h.DeletePost))

	comments := api.Group("/comments", authenticated)
	comments.POST("/create", withIdentity(h.CreateComment))
	comments.GET("/getPostComments/:slug", h.ListPostComments)
	comments.PATCH("/likeComment/:commentId", withIdentity(h.LikeComment))
	comments.PUT("/editComment/:commentId", withIdentity(h.EditComment))
	comments.DELETE("/deleteComment/:commentId", withIdentity(h.DeleteComment))

	unduhan := api.Group("/unduhan")
	upload := []gin.HandlerFunc{authenticated}
	if h.cfg.UnduhanUploadAdminOnly {
		upload = append(upload, adminOnly)
	}
	unduhan.POST("/upload", append(upload, withIdentity(h.UploadFile))...)
	if h.cfg.UnduhanListPublic {
		unduhan.GET("", h.OptionalAuthenticate(), h.ListFiles)
	} else {
		unduhan.GET("", authenticated, h.ListFiles)
	}
	unduhan.GET("/download/:id", authenticated, h.DownloadFile)
	unduhan.GET("/image/:id", h.FileImage)
	unduhan.DELETE("/:id", authenticated, adminOnly, withIdentity(h.DeleteFile))
}
