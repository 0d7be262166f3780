package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/varoOP/aniwatch/internal/domain"
)

const sessionCookie = "aniwatch_session"

const (
	maxUsernameLen = 50
	maxEmailLen    = 100
)

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (s *Server) issueSession(user *domain.User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SessionSecret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}
	return signed, nil
}

func (s *Server) parseSession(c echo.Context) (int64, string, error) {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return 0, "", errors.New("no session cookie")
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.config.SessionSecret), nil
	})
	if err != nil {
		return 0, "", errors.Wrap(err, "invalid session token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, "", errors.Wrap(err, "invalid session subject")
	}

	return userID, claims.Username, nil
}

// requireSession rejects requests without a valid session cookie and
// stores the caller's identity on the context.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, username, err := s.parseSession(c)
		if err != nil {
			return errorJSON(c, http.StatusUnauthorized, "please log in to continue")
		}
		c.Set("user_id", userID)
		c.Set("username", username)
		return next(c)
	}
}

func currentUserID(c echo.Context) int64 {
	id, _ := c.Get("user_id").(int64)
	return id
}

func (s *Server) setSessionCookie(c echo.Context, token string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type registerRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Confirm  string `json:"confirm" form:"confirm"`
}

func (s *Server) handleRegister(c echo.Context) error {
	req := &registerRequest{}
	if err := c.Bind(req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return errorJSON(c, http.StatusBadRequest, "all fields are required")
	}
	if len(req.Username) > maxUsernameLen || len(req.Email) > maxEmailLen {
		return errorJSON(c, http.StatusBadRequest, "username or email too long")
	}
	if req.Password != req.Confirm {
		return errorJSON(c, http.StatusBadRequest, "passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to hash password")
		return errorJSON(c, http.StatusInternalServerError, "registration failed")
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Store(c.Request().Context(), user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return errorJSON(c, http.StatusConflict, "username or email already exists")
		}
		s.log.Error().Err(err).Msg("failed to store user")
		return errorJSON(c, http.StatusInternalServerError, "registration failed")
	}

	return c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (s *Server) handleLogin(c echo.Context) error {
	req := &loginRequest{}
	if err := c.Bind(req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return errorJSON(c, http.StatusBadRequest, "enter username and password")
	}

	user, err := s.users.FindByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errorJSON(c, http.StatusUnauthorized, "invalid credentials")
		}
		s.log.Error().Err(err).Msg("failed to look up user")
		return errorJSON(c, http.StatusInternalServerError, "login error")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return errorJSON(c, http.StatusUnauthorized, "invalid credentials")
	}

	token, err := s.issueSession(user)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to issue session")
		return errorJSON(c, http.StatusInternalServerError, "login error")
	}

	s.setSessionCookie(c, token, s.config.SessionTTL)
	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleLogout(c echo.Context) error {
	s.setSessionCookie(c, "", -time.Second)
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}
