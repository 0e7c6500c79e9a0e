package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errEmailTaken         = errors.New("email is already registered")
	errInvalidRole        = errors.New("role must be admin, staff or customer")
)

type UserController struct {
	DB        *gorm.DB
	JWTSecret []byte
	TokenTTL  time.Duration
}

func NewUserController(db *gorm.DB, secret []byte, ttl time.Duration) *UserController {
	return &UserController{DB: db, JWTSecret: secret, TokenTTL: ttl}
}

type userRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

// Register -> self sign-up, always as a customer
func (uc *UserController) Register(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	user, ok := uc.createUser(c, req, models.RoleCustomer)
	if !ok {
		return
	}
	utils.InfoLogger.Printf("New user registered: %s", user.Email)
	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

// Login -> JWT for valid credentials
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
		return
	}

	token, err := utils.GenerateToken(uc.JWTSecret, uc.TokenTTL, user.ID, user.Role)
	if err != nil {
		utils.ErrorLogger.Printf("token generation failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, ErrInternal)
		return
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"user_role": user.Role,
	})
}

func (uc *UserController) GetProfile(c *gin.Context) {
	actor := actorFrom(c)
	var user models.User
	if err := uc.DB.First(&user, actor.UserID).Error; err != nil {
		respondServiceError(c, services.ErrUserNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", user)
}

// GetAllUsers -> admin only
func (uc *UserController) GetAllUsers(c *gin.Context) {
	users := make([]models.User, 0)
	q := uc.DB.Order("id ASC")
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Find(&users).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "list users", Err: err})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All users", users)
}

// CreateUser -> admin creates an account with any role
func (uc *UserController) CreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if !models.IsValidRole(role) {
		utils.RespondError(c, http.StatusBadRequest, errInvalidRole)
		return
	}
	user, ok := uc.createUser(c, req, role)
	if !ok {
		return
	}
	utils.InfoLogger.Printf("User %s created by admin (role=%s)", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User created", user)
}

func (uc *UserController) UpdateUserRole(c *gin.Context) {
	id, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	var body struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !models.IsValidRole(body.Role) {
		utils.RespondError(c, http.StatusBadRequest, errInvalidRole)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		respondServiceError(c, services.ErrUserNotFound)
		return
	}
	user.Role = body.Role
	if err := uc.DB.Save(&user).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "update user role", Err: err})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User role updated", user)
}

// DeleteUser -> users with booking history cannot be removed
func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if id == actorFrom(c).UserID {
		utils.RespondError(c, http.StatusBadRequest, errors.New("you cannot delete your own account"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		respondServiceError(c, services.ErrUserNotFound)
		return
	}
	var bookings int64
	if err := uc.DB.Model(&models.Booking{}).Where("user_id = ?", user.ID).Count(&bookings).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "count user bookings", Err: err})
		return
	}
	if bookings > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("user has bookings and cannot be deleted"))
		return
	}
	if err := uc.DB.Delete(&user).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "delete user", Err: err})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User deleted", gin.H{"user_id": user.ID})
}

func (uc *UserController) createUser(c *gin.Context, req userRequest, role string) (*models.User, bool) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := uc.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "check email", Err: err})
		return nil, false
	}
	if count > 0 {
		utils.RespondError(c, http.StatusConflict, errEmailTaken)
		return nil, false
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Phone:    req.Phone,
		Password: string(hashed),
		Role:     role,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "create user", Err: err})
		return nil, false
	}
	return &user, true
}
