package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/rs/zerolog/log"
)

const (
	msgRequired      = "This field is required."
	msgUsernameTaken = "already taken"
	msgEmailTaken    = "A user with that email already exists."
	msgInvalidEmail  = "Enter a valid email address."
	msgBadLogin      = "No active account found with the given credentials"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type registerResponse struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     users.Role `json:"role"`
}

// fieldErrors is the field-keyed error body, {"field": ["message", ...]}.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, message string) {
	f[field] = append(f[field], message)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("malformed request body"))
		return
	}

	errs := fieldErrors{}
	if strings.TrimSpace(req.Username) == "" {
		errs.add("username", msgRequired)
	}
	if req.Password == "" {
		errs.add("password", msgRequired)
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	account, err := s.accounts.GetByUsername(req.Username)
	if err != nil || !account.CheckPassword(req.Password) {
		log.Info().Str("username", req.Username).Msg("Login: rejected credentials")
		c.JSON(http.StatusUnauthorized, errorBody(msgBadLogin))
		return
	}

	pair, err := s.issuer.Issue(account)
	if err != nil {
		log.Err(err).Str("username", req.Username).Msg("Login: failed to issue tokens")
		c.JSON(http.StatusInternalServerError, errorBody("internal server error"))
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("malformed request body"))
		return
	}

	errs := fieldErrors{}
	if strings.TrimSpace(req.Username) == "" {
		errs.add("username", msgRequired)
	}
	if strings.TrimSpace(req.Email) == "" {
		errs.add("email", msgRequired)
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errs.add("email", msgInvalidEmail)
	}
	if req.Password == "" {
		errs.add("password", msgRequired)
	}
	role, ok := users.ParseRole(req.Role)
	if !ok {
		errs.add("role", fmt.Sprintf("%q is not a valid choice.", req.Role))
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		log.Err(err).Msg("Register: failed to hash password")
		c.JSON(http.StatusInternalServerError, errorBody("internal server error"))
		return
	}

	account := &users.Account{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.nowTime(),
	}
	if err := s.accounts.Create(account); err != nil {
		switch {
		case errors.Is(err, users.ErrUsernameTaken):
			errs.add("username", msgUsernameTaken)
		case errors.Is(err, users.ErrEmailTaken):
			errs.add("email", msgEmailTaken)
		default:
			log.Err(err).Msg("Register: failed to create account")
			c.JSON(http.StatusInternalServerError, errorBody("internal server error"))
			return
		}
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	log.Info().Str("username", account.Username).Str("role", string(role)).Msg("Register: account created")
	c.JSON(http.StatusCreated, registerResponse{Username: account.Username, Email: account.Email, Role: role})
}

// handleRevoke invalidates the presented access token so the next request
// with it is answered with 401.
func (s *Server) handleRevoke(c *gin.Context) {
	exp, _ := c.Get(ctxExpiry)
	expiry, ok := exp.(time.Time)
	if !ok {
		expiry = s.nowTime().Add(24 * time.Hour)
	}
	s.revoked.Revoke(c.GetString(ctxJTI), expiry)
	s.revoked.Cleanup(s.nowTime())

	log.Info().Str("username", usernameFrom(c)).Msg("Revoke: access token revoked")
	c.Status(http.StatusNoContent)
}
