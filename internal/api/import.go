package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edunest/school-back/internal/activity"
	"github.com/edunest/school-back/internal/store"
)

// importHandler godoc
// @Summary      Bulk-import entities from a CSV or XLSX upload
// @Description  Processes every row; row failures are reported, not fatal
// @Tags         import
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV or XLSX file"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Security     BearerAuth
func (s *Server) importHandler(ent store.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
			return
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		if ext != ".csv" && ext != ".xlsx" && ext != ".xls" {
			c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("Unsupported file format %q", ext)})
			return
		}

		dst := filepath.Join(s.cfg.UploadDir, uuid.NewString()+ext)
		if err := c.SaveUploadedFile(file, dst); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to store upload", "error": err.Error()})
			return
		}
		// The upload is one-shot: gone after this request either way.
		defer os.Remove(dst)

		res, err := s.importer.Run(c.Request.Context(), ent.Name, dst)
		if err != nil {
			s.logActivity(c, activity.ActionImport, ent.Name, "",
				fmt.Sprintf("Import of %s failed: %v", file.Filename, err), activity.StatusFailed)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Import failed", "error": err.Error()})
			return
		}

		s.logActivity(c, activity.ActionImport, ent.Name, "",
			fmt.Sprintf("Imported %s: %d of %d rows from %s",
				ent.Plural, res.ProcessedRecords, res.TotalRecords, file.Filename),
			res.Status())

		body := gin.H{
			"progress": res.ProgressPercent,
			"message":  res.Message,
		}
		if len(res.Errors) > 0 {
			body["errors"] = res.Errors
		}
		c.JSON(http.StatusOK, body)
	}
}
