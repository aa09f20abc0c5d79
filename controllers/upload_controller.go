package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hantverkarai/hantverkar-api/config"
	"github.com/hantverkarai/hantverkar-api/services"
	"github.com/hantverkarai/hantverkar-api/utils"
)

// UploadOfferPhoto handles POST /api/v1/offers/:id/photo - attaches a site
// photo to an owned offer. An existing photo is replaced.
func UploadOfferPhoto(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	offer, ok := findOwnedOffer(c, user.ID)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "A photo file is required in the 'photo' form field",
			},
		})
		return
	}

	svc := services.GetAttachmentService()
	if svc == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "Attachment storage is not configured",
			},
		})
		return
	}

	photoKey, err := svc.UploadPhoto(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "Failed to store photo",
			},
		})
		return
	}

	// Replace any previous photo; losing the old object is preferable to
	// leaking it in the bucket.
	if offer.PhotoS3Key != nil && *offer.PhotoS3Key != "" && *offer.PhotoS3Key != photoKey {
		if err := svc.DeletePhoto(*offer.PhotoS3Key); err != nil {
			log.Printf("warning: failed to delete replaced photo for offer %d: %v", offer.ID, err)
		}
	}

	db := config.GetDB()
	if err := db.Model(&offer).Update("photo_s3_key", photoKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save photo reference",
			},
		})
		return
	}
	offer.PhotoS3Key = &photoKey

	attachPhotoURL(&offer)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    offer,
	})
}

// DeleteOfferPhoto handles DELETE /api/v1/offers/:id/photo - removes the
// photo from an owned offer
func DeleteOfferPhoto(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	offer, ok := findOwnedOffer(c, user.ID)
	if !ok {
		return
	}

	if offer.PhotoS3Key == nil || *offer.PhotoS3Key == "" {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PHOTO_NOT_FOUND",
				"message": "Offer has no photo",
			},
		})
		return
	}

	if svc := services.GetAttachmentService(); svc != nil {
		if err := svc.DeletePhoto(*offer.PhotoS3Key); err != nil {
			log.Printf("warning: failed to delete photo for offer %d: %v", offer.ID, err)
		}
	}

	db := config.GetDB()
	if err := db.Model(&offer).Update("photo_s3_key", nil).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to clear photo reference",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Photo deleted successfully",
	})
}
