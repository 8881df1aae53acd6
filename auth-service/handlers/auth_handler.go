package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"secureweb-backend/auth-service/middleware"
	"secureweb-backend/auth-service/services"
	"secureweb-backend/shared/database/models"
	"secureweb-backend/shared/queue"
	utils "secureweb-backend/shared/utils/auth"
)

type AuthHandler struct {
	db           *gorm.DB
	tokens       *utils.TokenService
	verification *services.VerificationService
}

func NewAuthHandler(db *gorm.DB, tokens *utils.TokenService, verification *services.VerificationService) *AuthHandler {
	return &AuthHandler{
		db:           db,
		tokens:       tokens,
		verification: verification,
	}
}

// Login Request/Response structs
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

type LoginResponse struct {
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Token    string    `json:"token"`
	Expire   time.Time `json:"expire"`
}

// Register Request struct
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Code     string `json:"code" binding:"required,len=6" example:"429173"`
	Username string `json:"username" binding:"required,min=1,max=10" example:"newuser"`
	Password string `json:"password" binding:"required,min=6,max=20" example:"secret123"`
}

// ConfirmReset Request struct
type ConfirmResetRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// ResetPassword Request struct
type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"code" binding:"required,len=6"`
	Password string `json:"password" binding:"required,min=6,max=20"`
}

// POST /api/auth/login
// @Summary User login
// @Description Authenticate by username or email and return a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Login credentials"
// @Success 200 {object} handlers.LoginResponse "Successful login"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.findAccountByIdentifier(req.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !utils.CheckPasswordHash(req.Password, account.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.tokens.GenerateJWT(account.ID, account.Username, account.Authorities())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Username: account.Username,
		Role:     account.Role,
		Token:    token,
		Expire:   h.tokens.ExpireTime(),
	})
}

// POST /api/auth/logout
// @Summary User logout
// @Description Revoke the presented bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "Logged out"
// @Failure 400 {object} map[string]string "Logout failed"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if !h.tokens.InvalidateJWT(c.Request.Context(), c.GetHeader("Authorization")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GET /api/auth/ask-code
// @Summary Request email verification code
// @Description Issue a one-time code for registration or password reset
// @Tags auth
// @Produce json
// @Param email query string true "Target email address"
// @Param type query string true "Code purpose" Enums(register, reset)
// @Success 200 {object} map[string]string "Code issued"
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 429 {object} map[string]string "Too many requests"
// @Router /auth/ask-code [get]
func (h *AuthHandler) AskVerifyCode(c *gin.Context) {
	email := c.Query("email")
	kind := queue.MailKind(c.Query("type"))

	if email == "" || (kind != queue.MailRegister && kind != queue.MailReset) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or code type"})
		return
	}

	err := h.verification.RequestEmailVerifyCode(c.Request.Context(), kind, email, c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrTooManyRequests) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not issue verification code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// POST /api/auth/register
// @Summary Register with email verification code
// @Description Create an account after redeeming the emailed code
// @Tags auth
// @Accept json
// @Produce json
// @Param register body RegisterRequest true "Registration data"
// @Success 200 {object} map[string]string "Account created"
// @Failure 400 {object} map[string]string "Invalid code or duplicate account"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.verification.VerifyEmailCode(c.Request.Context(), queue.MailRegister, req.Email, req.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not verify code"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification code"})
		return
	}

	var count int64
	h.db.Model(&models.Account{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already taken"})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create account"})
		return
	}

	account := models.Account{
		Username:     req.Username,
		Email:        req.Email,
		Password:     hashedPassword,
		Role:         "user",
		RegisterTime: time.Now(),
	}

	if err := h.db.Create(&account).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account created successfully"})
}

// POST /api/auth/reset-confirm
// @Summary Confirm password reset code
// @Description First step of the reset flow; checks the code without consuming it
// @Tags auth
// @Accept json
// @Produce json
// @Param confirm body ConfirmResetRequest true "Email and code"
// @Success 200 {object} map[string]string "Code confirmed"
// @Failure 400 {object} map[string]string "Invalid or expired code"
// @Router /auth/reset-confirm [post]
func (h *AuthHandler) ConfirmReset(c *gin.Context) {
	var req ConfirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.verification.PeekEmailCode(c.Request.Context(), queue.MailReset, req.Email, req.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not verify code"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Code confirmed"})
}

// POST /api/auth/reset-password
// @Summary Reset password with verification code
// @Description Redeem the emailed code and set a new password
// @Tags auth
// @Accept json
// @Produce json
// @Param reset body ResetPasswordRequest true "Email, code and new password"
// @Success 200 {object} map[string]string "Password updated"
// @Failure 400 {object} map[string]string "Invalid or expired code"
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.verification.VerifyEmailCode(c.Request.Context(), queue.MailReset, req.Email, req.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not verify code"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification code"})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update password"})
		return
	}

	result := h.db.Model(&models.Account{}).
		Where("email = ?", req.Email).
		Update("password", hashedPassword)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update password"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No account found for this email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// GET /api/user/me
// @Summary Current user
// @Description Return the identity resolved from the bearer token
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Authenticated identity"
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /user/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          identity.ID,
		"username":    identity.Name,
		"authorities": identity.Authorities,
		"expires_at":  identity.ExpiresAt,
	})
}

// findAccountByIdentifier looks an account up by username or email
func (h *AuthHandler) findAccountByIdentifier(text string) (*models.Account, error) {
	var account models.Account
	if err := h.db.Where("username = ? OR email = ?", text, text).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}
