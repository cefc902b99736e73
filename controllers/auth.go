package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"customer-care-backend/models"
	"customer-care-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthController struct {
	db *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (ctl *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var user models.User
	err := ctl.db.Where("email = ?", strings.TrimSpace(input.Email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !user.IsActive || !user.CheckPassword(input.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	accessToken, err := utils.GenerateToken(user.ID, user.Role, utils.AccessTokenTTL())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	refreshToken, err := utils.GenerateToken(user.ID, user.Role, utils.RefreshTokenTTL)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	now := time.Now()
	ctl.db.Model(&user).Updates(map[string]interface{}{
		"refresh_token": refreshToken,
		"last_login":    &now,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"token":        accessToken,
		"refreshToken": refreshToken,
		"user":         user,
	})
}

// Refresh rotates the refresh token and issues a new access token. The
// presented token must match the one stored for the user.
func (ctl *AuthController) Refresh(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Refresh token is required")
		return
	}

	userID, _, err := utils.ParseToken(input.RefreshToken)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	var user models.User
	if err := ctl.db.First(&user, userID).Error; err != nil || user.RefreshToken != input.RefreshToken {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	accessToken, err := utils.GenerateToken(user.ID, user.Role, utils.AccessTokenTTL())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	refreshToken, err := utils.GenerateToken(user.ID, user.Role, utils.RefreshTokenTTL)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	if err := ctl.db.Model(&user).Update("refresh_token", refreshToken).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to store refresh token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"token":        accessToken,
		"refreshToken": refreshToken,
	})
}

func (ctl *AuthController) Logout(c *gin.Context) {
	userID := c.GetUint("userId")

	if err := ctl.db.Model(&models.User{}).Where("id = ?", userID).
		Update("refresh_token", "").Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to log out")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

func (ctl *AuthController) Me(c *gin.Context) {
	userID := c.GetUint("userId")

	var user models.User
	if err := ctl.db.First(&user, userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}
