package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bitcoinperu/comunidad/internal/identities"
	"github.com/bitcoinperu/comunidad/pkg/models"
)

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := s.identities.Register(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, user, err := s.identities.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, identities.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	maxAge := int(s.cfg.SessionTTL.Seconds())
	if maxAge <= 0 {
		maxAge = 7 * 24 * 3600
	}
	c.SetCookie(sessionCookie, session.Token, maxAge, "/", "", false, true)
	c.JSON(http.StatusOK, user)
}

func (s *Server) logout(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err == nil && token != "" {
		if err := s.identities.Logout(c.Request.Context(), token); err != nil {
			s.logger.Warn("logout failed", zap.Error(err))
		}
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
