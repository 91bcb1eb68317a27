package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitcoinperu/comunidad/internal/directory"
	"github.com/bitcoinperu/comunidad/pkg/models"
)

func directoryError(c *gin.Context, err error) {
	if errors.Is(err, directory.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (s *Server) listBusinesses(c *gin.Context) {
	businesses, err := s.directory.ListApproved(c.Request.Context(), c.Query("category"), c.Query("district"))
	if err != nil {
		directoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, businesses)
}

func (s *Server) submitBusiness(c *gin.Context) {
	var req models.BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	business, err := s.directory.Submit(c.Request.Context(), currentUser(c).ID, &req)
	if err != nil {
		directoryError(c, err)
		return
	}
	c.JSON(http.StatusCreated, business)
}

func (s *Server) listPendingBusinesses(c *gin.Context) {
	businesses, err := s.directory.ListPending(c.Request.Context())
	if err != nil {
		directoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, businesses)
}

func (s *Server) approveBusiness(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	business, err := s.directory.Approve(c.Request.Context(), id)
	if err != nil {
		directoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, business)
}

func (s *Server) deleteBusiness(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.directory.Delete(c.Request.Context(), id); err != nil {
		directoryError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
