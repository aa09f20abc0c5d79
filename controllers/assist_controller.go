package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hantverkarai/hantverkar-api/services"
)

// DraftDescriptionRequest represents the request body for a description draft
type DraftDescriptionRequest struct {
	Input        string `json:"input" binding:"required"`
	WorkCategory string `json:"work_category" binding:"required"`
}

// SuggestMaterialsRequest represents the request body for material suggestions
type SuggestMaterialsRequest struct {
	Description  string `json:"description" binding:"required"`
	WorkCategory string `json:"work_category" binding:"required"`
}

// DraftDescription handles POST /api/v1/assist/description - drafts a work
// description from the user's raw input. Always succeeds with either AI or
// template content; only input validation can fail.
func DraftDescription(c *gin.Context) {
	var req DraftDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	svc := services.NewAssistService(services.GetOpenAIService())
	result, err := svc.DraftDescription(c.Request.Context(), req.Input, req.WorkCategory)
	if err != nil {
		if errors.Is(err, services.ErrMissingInput) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ASSIST_ERROR",
				"message": "Failed to draft description",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// SuggestMaterials handles POST /api/v1/assist/materials - suggests a
// material list for a work description
func SuggestMaterials(c *gin.Context) {
	var req SuggestMaterialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	svc := services.NewAssistService(services.GetOpenAIService())
	result, err := svc.SuggestMaterials(c.Request.Context(), req.Description, req.WorkCategory)
	if err != nil {
		if errors.Is(err, services.ErrMissingDescription) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ASSIST_ERROR",
				"message": "Failed to suggest materials",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
