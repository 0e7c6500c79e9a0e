package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/restaurant-reservation/middlewares"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

type MenuController struct {
	DB    *gorm.DB
	Cache *redis.Client
}

func NewMenuController(db *gorm.DB, cache *redis.Client) *MenuController {
	return &MenuController{DB: db, Cache: cache}
}

// GetAllMenus -> optional ?category_id= and ?available=true
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	q := mc.DB.Preload("Category").Order("name ASC")
	if cat := c.Query("category_id"); cat != "" {
		id, err := strconv.ParseUint(cat, 10, 64)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, ErrInvalidID)
			return
		}
		q = q.Where("category_id = ?", id)
	}
	if c.Query("available") == "true" {
		q = q.Where("is_available = ?", true)
	}

	menus := make([]models.Menu, 0)
	if err := q.Find(&menus).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "list menus", Err: err})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var menu models.Menu
	if err := mc.DB.Preload("Category").First(&menu, id).Error; err != nil {
		mc.respondLoadError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", menu)
}

type menuRequest struct {
	CategoryID  uint    `json:"category_id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	ImageURL    string  `json:"image_url"`
	IsAvailable *bool   `json:"is_available"`
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !mc.categoryExists(c, req.CategoryID) {
		return
	}

	menu := models.Menu{
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		IsAvailable: true,
	}
	if err := mc.DB.Omit("Category").Create(&menu).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "create menu", Err: err})
		return
	}
	if req.IsAvailable != nil && !*req.IsAvailable {
		menu.IsAvailable = false
		if err := mc.DB.Model(&menu).Update("is_available", false).Error; err != nil {
			respondServiceError(c, &services.StorageError{Op: "create menu", Err: err})
			return
		}
	}

	mc.invalidate(c)
	utils.InfoLogger.Printf("Menu created: %s", menu.Name)
	utils.RespondJSON(c, http.StatusCreated, "Menu created", menu)
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var body struct {
		CategoryID  *uint    `json:"category_id"`
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		ImageURL    *string  `json:"image_url"`
		IsAvailable *bool    `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var menu models.Menu
	if err := mc.DB.First(&menu, id).Error; err != nil {
		mc.respondLoadError(c, err)
		return
	}
	if body.CategoryID != nil {
		if !mc.categoryExists(c, *body.CategoryID) {
			return
		}
		menu.CategoryID = *body.CategoryID
	}
	if body.Name != nil {
		menu.Name = strings.TrimSpace(*body.Name)
	}
	if body.Description != nil {
		menu.Description = *body.Description
	}
	if body.Price != nil {
		if *body.Price <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("price must be positive"))
			return
		}
		menu.Price = *body.Price
	}
	if body.ImageURL != nil {
		menu.ImageURL = *body.ImageURL
	}
	if body.IsAvailable != nil {
		menu.IsAvailable = *body.IsAvailable
	}

	if err := mc.DB.Omit("Category").Save(&menu).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "update menu", Err: err})
		return
	}
	mc.invalidate(c)
	utils.RespondJSON(c, http.StatusOK, "Menu updated", menu)
}

// DeleteMenu -> menus already ordered must be marked unavailable instead
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var menu models.Menu
	if err := mc.DB.First(&menu, id).Error; err != nil {
		mc.respondLoadError(c, err)
		return
	}
	var ordered int64
	if err := mc.DB.Model(&models.OrderItem{}).Where("menu_id = ?", menu.ID).Count(&ordered).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "count order items", Err: err})
		return
	}
	if ordered > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("menu has been ordered; mark it unavailable instead"))
		return
	}
	if err := mc.DB.Delete(&menu).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "delete menu", Err: err})
		return
	}
	mc.invalidate(c)
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", gin.H{"menu_id": menu.ID})
}

func (mc *MenuController) categoryExists(c *gin.Context, id uint) bool {
	var count int64
	if err := mc.DB.Model(&models.MenuCategory{}).Where("id = ?", id).Count(&count).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "check category", Err: err})
		return false
	}
	if count == 0 {
		utils.RespondError(c, http.StatusNotFound, errCategoryNotFound)
		return false
	}
	return true
}

func (mc *MenuController) respondLoadError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondServiceError(c, services.ErrMenuNotFound)
		return
	}
	respondServiceError(c, &services.StorageError{Op: "load menu", Err: err})
}

func (mc *MenuController) invalidate(c *gin.Context) {
	if err := middlewares.InvalidateCache(c.Request.Context(), mc.Cache, middlewares.CachePrefixMenus); err != nil {
		utils.ErrorLogger.Printf("menu cache invalidation failed: %v", err)
	}
}
