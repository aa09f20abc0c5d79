package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hantverkarai/hantverkar-api/config"
	"github.com/hantverkarai/hantverkar-api/middleware"
	"github.com/hantverkarai/hantverkar-api/models"
	"github.com/hantverkarai/hantverkar-api/services"
)

// OfferRequest represents the request body for creating or fully updating an
// offer. Owner, status and the derived pricing fields are never accepted from
// the client.
type OfferRequest struct {
	CustomerName  string    `json:"customer_name" binding:"required"`
	WorkCategory  string    `json:"work_category" binding:"required"`
	Description   string    `json:"description" binding:"required"`
	Materials     string    `json:"materials" binding:"required"`
	Hours         float64   `json:"hours" binding:"required,gt=0"`
	HourlyRate    float64   `json:"hourly_rate" binding:"required,gt=0"`
	MaterialCost  float64   `json:"material_cost" binding:"gte=0"`
	ValidUntil    time.Time `json:"valid_until" binding:"required"`
	DeliveryTerms string    `json:"delivery_terms" binding:"required"`
	PaymentTerms  string    `json:"payment_terms" binding:"required"`
}

// UpdateStatusRequest represents the request body for a status-only update
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// currentUser resolves the authenticated caller to a local user record.
// Writes the error response and returns ok=false when that fails.
func currentUser(c *gin.Context) (models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return models.User{}, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return models.User{}, false
	}

	return user, true
}

// findOwnedOffer loads the offer in the :id path parameter restricted to the
// given owner. A record owned by someone else gets the same OFFER_NOT_FOUND
// response as a record that does not exist, so other tenants' data never
// leaks, not even its existence. Writes the error response on a miss.
func findOwnedOffer(c *gin.Context, ownerID uint) (models.Offer, bool) {
	offerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		// Malformed ids look the same as absent ones.
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "OFFER_NOT_FOUND",
				"message": "Offer not found",
			},
		})
		return models.Offer{}, false
	}

	db := config.GetDB()
	var offer models.Offer
	if err := db.Scopes(models.OwnedBy(ownerID)).First(&offer, "id = ?", offerID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to fetch offer",
				},
			})
			return models.Offer{}, false
		}
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "OFFER_NOT_FOUND",
				"message": "Offer not found",
			},
		})
		return models.Offer{}, false
	}

	return offer, true
}

// attachPhotoURL fills in the presigned photo URL when the offer has a photo
func attachPhotoURL(offer *models.Offer) {
	if offer.PhotoS3Key == nil || *offer.PhotoS3Key == "" {
		return
	}
	svc := services.GetAttachmentService()
	if svc == nil {
		return
	}
	url, err := svc.GetPhotoURL(*offer.PhotoS3Key)
	if err != nil {
		log.Printf("warning: failed to generate photo URL for offer %d: %v", offer.ID, err)
		return
	}
	if url != "" {
		offer.PhotoURL = &url
	}
}

// CreateOffer handles POST /api/v1/offers - creates a new draft offer
func CreateOffer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req OfferRequest
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

	offer := models.Offer{
		OwnerID:       user.ID,
		CustomerName:  req.CustomerName,
		WorkCategory:  req.WorkCategory,
		Description:   req.Description,
		Materials:     req.Materials,
		Hours:         req.Hours,
		HourlyRate:    req.HourlyRate,
		MaterialCost:  req.MaterialCost,
		ValidUntil:    req.ValidUntil,
		DeliveryTerms: req.DeliveryTerms,
		PaymentTerms:  req.PaymentTerms,
		Status:        models.StatusDraft,
	}
	offer.RecomputePricing()

	db := config.GetDB()
	if err := db.Create(&offer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create offer",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    offer,
	})
}

// ListOffers handles GET /api/v1/offers - lists the caller's offers,
// newest first
func ListOffers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var offers []models.Offer
	err := db.Scopes(models.OwnedBy(user.ID)).Order("created_at DESC").Find(&offers).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch offers",
			},
		})
		return
	}

	for i := range offers {
		attachPhotoURL(&offers[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    offers,
	})
}

// UpdateOffer handles PUT /api/v1/offers/:id - full update of an owned offer.
// Derived pricing is always recomputed from the submitted inputs and saved in
// the same write, so stored totals can never drift from the inputs.
func UpdateOffer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	offer, ok := findOwnedOffer(c, user.ID)
	if !ok {
		return
	}

	var req OfferRequest
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

	offer.CustomerName = req.CustomerName
	offer.WorkCategory = req.WorkCategory
	offer.Description = req.Description
	offer.Materials = req.Materials
	offer.Hours = req.Hours
	offer.HourlyRate = req.HourlyRate
	offer.MaterialCost = req.MaterialCost
	offer.ValidUntil = req.ValidUntil
	offer.DeliveryTerms = req.DeliveryTerms
	offer.PaymentTerms = req.PaymentTerms
	offer.RecomputePricing()

	db := config.GetDB()
	if err := db.Save(&offer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update offer",
			},
		})
		return
	}

	attachPhotoURL(&offer)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    offer,
	})
}

// UpdateOfferStatus handles PATCH /api/v1/offers/:id/status - status-only
// update. The status value is validated before the record is even looked up.
func UpdateOfferStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
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

	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Status must be one of: draft, sent, accepted, rejected",
			},
		})
		return
	}

	offer, ok := findOwnedOffer(c, user.ID)
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.Model(&offer).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update offer status",
			},
		})
		return
	}

	attachPhotoURL(&offer)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    offer,
	})
}

// DeleteOffer handles DELETE /api/v1/offers/:id - owner-scoped hard delete
func DeleteOffer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	offer, ok := findOwnedOffer(c, user.ID)
	if !ok {
		return
	}

	// Best-effort cleanup of the attached photo; the record delete proceeds
	// even if storage cleanup fails.
	if offer.PhotoS3Key != nil && *offer.PhotoS3Key != "" {
		if svc := services.GetAttachmentService(); svc != nil {
			if err := svc.DeletePhoto(*offer.PhotoS3Key); err != nil {
				log.Printf("warning: failed to delete photo for offer %d: %v", offer.ID, err)
			}
		}
	}

	db := config.GetDB()
	if err := db.Delete(&offer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete offer",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Offer deleted successfully",
	})
}
