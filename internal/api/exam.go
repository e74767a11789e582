package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edunest/school-back/internal/activity"
	"github.com/edunest/school-back/internal/models"
	"github.com/edunest/school-back/internal/store"
)

// Exam handlers mirror the generic CRUD set but fan out an
// examNotification to the class's teacher and students on every
// lifecycle change.

// createExam godoc
// @Summary      Create an exam
// @Tags         exams
// @Accept       json
// @Produce      json
// @Success      201 {object} models.Exam
// @Failure      400 {object} map[string]string
// @Security     BearerAuth
// @Router       /exams/create-exam [post]
func (s *Server) createExam(c *gin.Context) {
	var exam models.Exam
	if err := c.ShouldBindJSON(&exam); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}
	assignID(&exam)

	if err := s.store.Create(c.Request.Context(), &exam); err != nil {
		s.logActivity(c, activity.ActionCreate, "exam", exam.ID,
			fmt.Sprintf("Failed to create exam %s", exam.Name), activity.StatusFailed)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create exam", "error": err.Error()})
		return
	}

	s.notifier.ExamEvent(c.Request.Context(), &exam, "created")
	s.logActivity(c, activity.ActionCreate, "exam", exam.ID,
		fmt.Sprintf("Created exam %s", exam.Name), activity.StatusSuccess)
	c.JSON(http.StatusCreated, exam)
}

// updateExam godoc
// @Summary      Update an exam
// @Tags         exams
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "Exam id"
// @Success      200 {object} models.Exam
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /exams/update-exam/{id} [put]
func (s *Server) updateExam(c *gin.Context) {
	ent := store.Entities["exam"]
	id := c.Param("id")

	found, err := s.store.FindByID(c.Request.Context(), ent, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "exam not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch exam"})
		return
	}
	exam := found.(*models.Exam)

	if err := c.ShouldBindJSON(exam); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}
	exam.ID = id

	if err := s.store.Save(c.Request.Context(), exam); err != nil {
		s.logActivity(c, activity.ActionUpdate, "exam", id,
			fmt.Sprintf("Failed to update exam %s", exam.Name), activity.StatusFailed)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update exam", "error": err.Error()})
		return
	}

	s.notifier.ExamEvent(c.Request.Context(), exam, "updated")
	s.logActivity(c, activity.ActionUpdate, "exam", id,
		fmt.Sprintf("Updated exam %s", exam.Name), activity.StatusSuccess)
	c.JSON(http.StatusOK, exam)
}

// deleteExam godoc
// @Summary      Delete an exam
// @Tags         exams
// @Produce      json
// @Param        id  path  string  true  "Exam id"
// @Success      200 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /exams/delete-exam/{id} [delete]
func (s *Server) deleteExam(c *gin.Context) {
	ent := store.Entities["exam"]
	id := c.Param("id")

	found, err := s.store.FindByID(c.Request.Context(), ent, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "exam not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch exam"})
		return
	}
	exam := found.(*models.Exam)

	if err := s.store.DeleteByID(c.Request.Context(), ent, id); err != nil {
		s.logActivity(c, activity.ActionDelete, "exam", id,
			fmt.Sprintf("Failed to delete exam %s", exam.Name), activity.StatusFailed)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete exam"})
		return
	}

	s.notifier.ExamEvent(c.Request.Context(), exam, "deleted")
	s.logActivity(c, activity.ActionDelete, "exam", id,
		fmt.Sprintf("Deleted exam %s", exam.Name), activity.StatusSuccess)
	c.JSON(http.StatusOK, gin.H{"message": "exam deleted"})
}
