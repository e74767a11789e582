package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edunest/school-back/internal/activity"
	"github.com/edunest/school-back/internal/store"
)

// Generic CRUD handlers, parameterized by the entity descriptor. Class
// schedule updates and exam lifecycle live in their own files because
// they additionally notify.

// createHandler godoc
// @Summary      Create an entity
// @Tags         entities
// @Accept       json
// @Produce      json
// @Success      201 {object} map[string]interface{}
// @Failure      400 {object} map[string]string
// @Security     BearerAuth
func (s *Server) createHandler(ent store.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := ent.Model()
		if err := c.ShouldBindJSON(m); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
			return
		}
		id := assignID(m)

		if err := s.store.Create(c.Request.Context(), m); err != nil {
			s.logActivity(c, activity.ActionCreate, ent.Name, id,
				fmt.Sprintf("Failed to create %s", ent.Name), activity.StatusFailed)
			c.JSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprintf("Failed to create %s", ent.Name), "error": err.Error()})
			return
		}

		s.logActivity(c, activity.ActionCreate, ent.Name, id,
			fmt.Sprintf("Created %s %s", ent.Name, id), activity.StatusSuccess)
		c.JSON(http.StatusCreated, m)
	}
}

// listHandler godoc
// @Summary      List entities with pagination and search
// @Tags         entities
// @Produce      json
// @Param        page    query  int     false  "Page number"
// @Param        limit   query  int     false  "Page size"
// @Param        search  query  string  false  "Substring search"
// @Success      200 {object} map[string]interface{}
// @Security     BearerAuth
func (s *Server) listHandler(ent store.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := store.ListQuery{
			Page:   intQuery(c, "page", 1),
			Limit:  intQuery(c, "limit", 10),
			Search: c.Query("search"),
		}

		rows, page, err := s.store.List(c.Request.Context(), ent, q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprintf("Failed to fetch %s", ent.Plural)})
			return
		}

		c.JSON(http.StatusOK, listResponse(rows, page))
	}
}

// getHandler godoc
// @Summary      Get one entity by id
// @Tags         entities
// @Produce      json
// @Param        id  path  string  true  "Entity id"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
func (s *Server) getHandler(ent store.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := s.store.FindByID(c.Request.Context(), ent, c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("%s not found", ent.Name)})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprintf("Failed to fetch %s", ent.Name)})
			return
		}
		c.JSON(http.StatusOK, m)
	}
}

// updateHandler godoc
// @Summary      Update an entity
// @Tags         entities
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "Entity id"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
func (s *Server) updateHandler(ent store.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		m, err := s.store.FindByID(c.Request.Context(), ent, id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("%s not found", ent.Name)})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprintf("Failed to fetch %s", ent.Name)})
			return
		}

		if err := c.ShouldBindJSON(m); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
			return
		}
		setID(m, id) // the body must not move the row

		if err := s.store.Save(c.Request.Context(), m); err != nil {
			s.logActivity(c, activity.ActionUpdate, ent.Name, id,
				fmt.Sprintf("Failed to update %s %s", ent.Name, id), activity.StatusFailed)
			c.JSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprintf("Failed to update %s", ent.Name), "error": err.Error()})
			return
		}

		s.logActivity(c, activity.ActionUpdate, ent.Name, id,
			fmt.Sprintf("Updated %s %s", ent.Name, id), activity.StatusSuccess)
		c.JSON(http.StatusOK, m)
	}
}

// deleteHandler godoc
// @Summary      Delete an entity
// @Tags         entities
// @Produce      json
// @Param        id  path  string  true  "Entity id"
// @Success      200 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
func (s *Server) deleteHandler(ent store.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		err := s.store.DeleteByID(c.Request.Context(), ent, id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("%s not found", ent.Name)})
			return
		}
		if err != nil {
			s.logActivity(c, activity.ActionDelete, ent.Name, id,
				fmt.Sprintf("Failed to delete %s %s", ent.Name, id), activity.StatusFailed)
			c.JSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprintf("Failed to delete %s", ent.Name)})
			return
		}

		s.logActivity(c, activity.ActionDelete, ent.Name, id,
			fmt.Sprintf("Deleted %s %s", ent.Name, id), activity.StatusSuccess)
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%s deleted", ent.Name)})
	}
}

// listActivity godoc
// @Summary      Paginated activity log
// @Tags         activity
// @Produce      json
// @Param        page    query  int     false  "Page number"
// @Param        limit   query  int     false  "Page size"
// @Param        search  query  string  false  "Search action, user name or description"
// @Success      200 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /activity-log [get]
func (s *Server) listActivity(c *gin.Context) {
	entries, page, err := s.activity.List(c.Request.Context(),
		intQuery(c, "page", 1), intQuery(c, "limit", 10), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch activity log"})
		return
	}
	c.JSON(http.StatusOK, listResponse(entries, page))
}

func listResponse(rows any, page store.Page) gin.H {
	return gin.H{
		"data":            rows,
		"total":           page.Total,
		"totalPages":      page.TotalPages,
		"currentPage":     page.CurrentPage,
		"hasNextPage":     page.HasNextPage,
		"hasPreviousPage": page.HasPreviousPage,
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
