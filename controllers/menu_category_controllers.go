package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/restaurant-reservation/middlewares"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

var (
	errCategoryNotFound = errors.New("category not found")
	errCategoryExists   = errors.New("category already exists")
)

type MenuCategoryController struct {
	DB    *gorm.DB
	Cache *redis.Client
}

func NewMenuCategoryController(db *gorm.DB, cache *redis.Client) *MenuCategoryController {
	return &MenuCategoryController{DB: db, Cache: cache}
}

func (mcc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	categories := make([]models.MenuCategory, 0)
	if err := mcc.DB.Order("name ASC").Find(&categories).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "list categories", Err: err})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All menu categories", categories)
}

func (mcc *MenuCategoryController) CreateCategory(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	name := strings.TrimSpace(body.Name)
	if taken, err := mcc.nameTaken(name, 0); err != nil {
		respondServiceError(c, &services.StorageError{Op: "check category", Err: err})
		return
	} else if taken {
		utils.RespondError(c, http.StatusConflict, errCategoryExists)
		return
	}

	category := models.MenuCategory{Name: name}
	if err := mcc.DB.Create(&category).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "create category", Err: err})
		return
	}
	mcc.invalidate(c)
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

func (mcc *MenuCategoryController) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "cat_id")
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var category models.MenuCategory
	if err := mcc.DB.First(&category, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errCategoryNotFound)
		return
	}
	name := strings.TrimSpace(body.Name)
	if taken, err := mcc.nameTaken(name, category.ID); err != nil {
		respondServiceError(c, &services.StorageError{Op: "check category", Err: err})
		return
	} else if taken {
		utils.RespondError(c, http.StatusConflict, errCategoryExists)
		return
	}
	category.Name = name
	if err := mcc.DB.Save(&category).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "update category", Err: err})
		return
	}
	mcc.invalidate(c)
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory -> only empty categories
func (mcc *MenuCategoryController) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "cat_id")
	if !ok {
		return
	}
	var category models.MenuCategory
	if err := mcc.DB.First(&category, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errCategoryNotFound)
		return
	}
	var menus int64
	if err := mcc.DB.Model(&models.Menu{}).Where("category_id = ?", category.ID).Count(&menus).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "count menus", Err: err})
		return
	}
	if menus > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("category still has menus"))
		return
	}
	if err := mcc.DB.Delete(&category).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "delete category", Err: err})
		return
	}
	mcc.invalidate(c)
	utils.RespondJSON(c, http.StatusOK, "Category deleted", gin.H{"category_id": category.ID})
}

func (mcc *MenuCategoryController) nameTaken(name string, exceptID uint) (bool, error) {
	var count int64
	q := mcc.DB.Model(&models.MenuCategory{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (mcc *MenuCategoryController) invalidate(c *gin.Context) {
	if err := middlewares.InvalidateCache(c.Request.Context(), mcc.Cache, middlewares.CachePrefixMenus); err != nil {
		utils.ErrorLogger.Printf("menu cache invalidation failed: %v", err)
	}
}
