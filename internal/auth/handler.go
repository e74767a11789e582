package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/edunest/school-back/internal/activity"
	"github.com/edunest/school-back/internal/config"
	"github.com/edunest/school-back/internal/models"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// UserStore is the credential lookup the login handler needs.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string) error
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler godoc
// @Summary      Log in
// @Description  Verifies credentials, sets the session cookie and returns token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  loginRequest  true  "Credentials"
// @Success      200   {object} map[string]string
// @Failure      401   {object} map[string]string
// @Router       /auth/login [post]
func LoginHandler(cfg *config.Config, st UserStore, sink activity.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
			return
		}

		usr, err := st.GetUserByEmail(c.Request.Context(), req.Email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(req.Password)) != nil {
			sink.Record(c.Request.Context(), activity.Entry{
				Action:      activity.ActionLogin,
				Resource:    "user",
				ResourceID:  usr.ID,
				UserID:      usr.ID,
				UserName:    usr.Name,
				Description: "Failed login attempt",
				Status:      activity.StatusFailed,
				IPAddress:   c.ClientIP(),
				PerformBy:   usr.Role,
			})
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}

		access, refresh, err := issueTokens(cfg, usr.ID, usr.Name, usr.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to issue tokens"})
			return
		}

		// Not worth failing a login over.
		_ = st.TouchLastLogin(c.Request.Context(), usr.ID)

		sink.Record(c.Request.Context(), activity.Entry{
			Action:      activity.ActionLogin,
			Resource:    "user",
			ResourceID:  usr.ID,
			UserID:      usr.ID,
			UserName:    usr.Name,
			Description: fmt.Sprintf("%s logged in", usr.Name),
			Status:      activity.StatusSuccess,
			IPAddress:   c.ClientIP(),
			PerformBy:   usr.Role,
		})

		c.SetCookie("token", access, int(accessTokenTTL.Seconds()), "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{
			"access_token":  access,
			"refresh_token": refresh,
			"role":          usr.Role,
		})
	}
}

// RefreshHandler godoc
// @Summary      Refresh token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      401 {object} map[string]string
// @Router       /auth/refresh [post]
func RefreshHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Missing refresh token"})
			return
		}

		jwtSecret := []byte(cfg.JWTSecret)

		token, err := jwt.Parse(req.RefreshToken, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid refresh token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["type"] != "refresh" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid refresh token type"})
			return
		}

		access, refresh, err := issueTokens(cfg,
			strClaim(claims, "sub"), strClaim(claims, "name"), strClaim(claims, "role"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to issue tokens"})
			return
		}

		c.SetCookie("token", access, int(accessTokenTTL.Seconds()), "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{
			"access_token":  access,
			"refresh_token": refresh,
		})
	}
}

// LogoutHandler godoc
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200 {object} map[string]string
// @Security     BearerAuth
// @Router       /auth/logout [post]
func LogoutHandler(sink activity.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		sink.Record(c.Request.Context(), activity.Entry{
			Action:      activity.ActionLogout,
			Resource:    "user",
			ResourceID:  c.GetString("userID"),
			UserID:      c.GetString("userID"),
			UserName:    c.GetString("userName"),
			Description: fmt.Sprintf("%s logged out", c.GetString("userName")),
			Status:      activity.StatusSuccess,
			IPAddress:   c.ClientIP(),
			PerformBy:   c.GetString("role"),
		})
		c.SetCookie("token", "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

func issueTokens(cfg *config.Config, userID, name, role string) (access, refresh string, err error) {
	jwtSecret := []byte(cfg.JWTSecret)
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"sub":  userID,
		"name": name,
		"role": role,
		"exp":  now.Add(accessTokenTTL).Unix(),
	}
	access, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(jwtSecret)
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"sub":  userID,
		"name": name,
		"role": role,
		"exp":  now.Add(refreshTokenTTL).Unix(),
		"type": "refresh",
	}
	refresh, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(jwtSecret)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
