package mockapi

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Server is a development stand-in for the photo marketplace backend. It
// implements the endpoints the client core talks to with the same request
// and error body shapes.
type Server struct {
	env      string
	router   *gin.Engine
	config   config.MockAPIConfig
	accounts users.AccountRepo
	signer   token.Signer
	issuer   *token.Issuer
	revoked  token.RevocationList
	nowTime  func() time.Time

	photosLock sync.RWMutex
	photos     []Photo
	nextPhoto  int
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithIssuerOptions passes options through to the token issuer.
func WithIssuerOptions(opts ...token.IssuerOption) ServerOption {
	return func(s *Server) {
		s.issuer = token.NewIssuer(s.signer, opts...)
	}
}

func New(cfg config.Config, accounts users.AccountRepo, options ...ServerOption) (*Server, error) {
	if accounts == nil {
		return nil, errors.New("[mockapi.New] accounts repo is required")
	}

	signer := token.NewHMACSigner(cfg.GetMockAPISecret())
	s := &Server{
		env:      cfg.GetEnv(),
		router:   gin.New(),
		config:   cfg,
		accounts: accounts,
		signer:   signer,
		issuer:   token.NewIssuer(signer),
		revoked:  token.NewInMemoryRevocationList(),
		nowTime:  time.Now,
		photos:   seedPhotos(),
	}
	s.nextPhoto = len(s.photos) + 1

	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Seed registers an account directly, bypassing request validation.
func (s *Server) Seed(username, email, password string, role users.Role) error {
	hash, err := users.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "[Server.Seed] hash password")
	}
	return s.accounts.Create(&users.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.nowTime(),
	})
}

func (s *Server) initRoutes() {
	s.router.Use(s.recoverMiddleware(), s.loggingMiddleware(), s.corsMiddleware())

	s.router.GET(RouteHealth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group(RouteAPIPrefix)
	api.POST(RouteAuthLogin, s.handleLogin)
	api.POST(RouteAuthRegister, s.handleRegister)

	protected := api.Group("")
	protected.Use(s.bearerAuth())
	protected.POST(RouteAuthRevoke, s.handleRevoke)
	protected.GET(RoutePhotosGallery, s.handleGallery)
	protected.GET(RoutePhotosDownload, s.handleDownload)
	protected.POST(RoutePhotosUpload, s.requireRole(users.RoleUploader), s.handleUpload)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.router.Routes() {
		logRoute(route.Method, route.Path)
	}
}

func logRoute(method, path string) {
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%s%-7s%s] %s", color, method, ResetColor, path)
}

// errorBody is the "detail" error shape used for non-field errors.
func errorBody(detail string) gin.H {
	return gin.H{"detail": detail}
}

func notFound(what string, id any) gin.H {
	return errorBody(fmt.Sprintf("%s %v not found", what, id))
}
