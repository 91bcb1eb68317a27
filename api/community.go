package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bitcoinperu/comunidad/internal/community"
	"github.com/bitcoinperu/comunidad/pkg/models"
)

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func communityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, community.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, community.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// --- Posts ---

func (s *Server) listPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	posts, err := s.community.ListPosts(c.Request.Context(), limit, offset)
	if err != nil {
		communityError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) getPost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	post, err := s.community.GetPost(c.Request.Context(), id)
	if err != nil {
		communityError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) createPost(c *gin.Context) {
	var req models.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	post, err := s.community.CreatePost(c.Request.Context(), currentUser(c).ID, &req)
	if err != nil {
		communityError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (s *Server) updatePost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req models.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	post, err := s.community.UpdatePost(c.Request.Context(), currentUser(c), id, &req)
	if err != nil {
		communityError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) deletePost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.community.DeletePost(c.Request.Context(), currentUser(c), id); err != nil {
		communityError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Events ---

func (s *Server) listEvents(c *gin.Context) {
	upcoming := c.DefaultQuery("upcoming", "true") == "true"
	events, err := s.community.ListEvents(c.Request.Context(), upcoming)
	if err != nil {
		communityError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) createEvent(c *gin.Context) {
	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	event, err := s.community.CreateEvent(c.Request.Context(), currentUser(c).ID, &req)
	if err != nil {
		communityError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (s *Server) updateEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	event, err := s.community.UpdateEvent(c.Request.Context(), currentUser(c), id, &req)
	if err != nil {
		communityError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (s *Server) deleteEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.community.DeleteEvent(c.Request.Context(), currentUser(c), id); err != nil {
		communityError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Resources ---

func (s *Server) listResources(c *gin.Context) {
	resources, err := s.community.ListResources(c.Request.Context(), c.Query("category"))
	if err != nil {
		communityError(c, err)
		return
	}
	c.JSON(http.StatusOK, resources)
}

func (s *Server) createResource(c *gin.Context) {
	var req models.ResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resource, err := s.community.CreateResource(c.Request.Context(), currentUser(c).ID, &req)
	if err != nil {
		communityError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resource)
}

func (s *Server) deleteResource(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.community.DeleteResource(c.Request.Context(), currentUser(c), id); err != nil {
		communityError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Carousel ---

func (s *Server) listSlides(c *gin.Context) {
	slides, err := s.community.ListSlides(c.Request.Context())
	if err != nil {
		communityError(c, err)
		return
	}
	c.JSON(http.StatusOK, slides)
}

func (s *Server) createSlide(c *gin.Context) {
	var req models.SlideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slide, err := s.community.CreateSlide(c.Request.Context(), &req)
	if err != nil {
		communityError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slide)
}

func (s *Server) updateSlide(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req models.SlideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slide, err := s.community.UpdateSlide(c.Request.Context(), id, &req)
	if err != nil {
		communityError(c, err)
		return
	}
	c.JSON(http.StatusOK, slide)
}

func (s *Server) deleteSlide(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.community.DeleteSlide(c.Request.Context(), id); err != nil {
		communityError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
