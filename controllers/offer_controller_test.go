package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hantverkarai/hantverkar-api/config"
	"github.com/hantverkarai/hantverkar-api/models"
)

func setupOfferTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Auto-migrate all models
	if err := db.AutoMigrate(&models.User{}, &models.Offer{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createTestCraftsman(t *testing.T, db *gorm.DB, auth0ID, email string) models.User {
	t.Helper()
	user := models.User{
		Auth0ID: auth0ID,
		Name:    "Test Craftsman",
		Email:   email,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func validOfferBody() map[string]interface{} {
	return map[string]interface{}{
		"customer_name":  "Familjen Svensson",
		"work_category":  "renovation",
		"description":    "Renovering av badrum",
		"materials":      "Kakel, fogmassa",
		"hours":          10.0,
		"hourly_rate":    500.0,
		"material_cost":  2000.0,
		"valid_until":    time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
		"delivery_terms": "Arbetet påbörjas enligt överenskommelse",
		"payment_terms":  "30 dagar netto",
	}
}

func TestCreateOffer(t *testing.T) {
	// Setup
	db := setupOfferTestDB(t)
	config.SetDB(db)

	owner := createTestCraftsman(t, db, "auth0|owner", "owner@example.com")

	tests := []struct {
		name           string
		auth0ID        string
		mutate         func(body map[string]interface{})
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, data map[string]interface{})
	}{
		{
			name:           "Create offer with derived pricing",
			auth0ID:        owner.Auth0ID,
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				// 10h x 500 kr + 2000 kr material, 25% VAT on top
				assert.Equal(t, float64(5000), data["labor_cost"])
				assert.Equal(t, float64(7000), data["total_ex_vat"])
				assert.Equal(t, float64(25), data["vat_rate"])
				assert.Equal(t, float64(1750), data["vat_amount"])
				assert.Equal(t, float64(8750), data["total_inc_vat"])
				assert.Equal(t, "draft", data["status"])
				assert.Equal(t, float64(owner.ID), data["owner_id"])
			},
		},
		{
			name:    "Client-supplied totals are ignored",
			auth0ID: owner.Auth0ID,
			mutate: func(body map[string]interface{}) {
				body["total_inc_vat"] = 1.0
				body["labor_cost"] = 1.0
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, float64(8750), data["total_inc_vat"])
				assert.Equal(t, float64(5000), data["labor_cost"])
			},
		},
		{
			name:    "Fail with missing customer name",
			auth0ID: owner.Auth0ID,
			mutate: func(body map[string]interface{}) {
				delete(body, "customer_name")
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:    "Fail with zero hours",
			auth0ID: owner.Auth0ID,
			mutate: func(body map[string]interface{}) {
				body["hours"] = 0.0
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:    "Fail with negative material cost",
			auth0ID: owner.Auth0ID,
			mutate: func(body map[string]interface{}) {
				body["material_cost"] = -100.0
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Fail without a profile",
			auth0ID:        "auth0|noprofile",
			expectedStatus: http.StatusNotFound,
			expectedError:  "USER_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/offers", mockAuthMiddleware(tt.auth0ID, "mock-token"), CreateOffer)

			reqBody := validOfferBody()
			if tt.mutate != nil {
				tt.mutate(reqBody)
			}
			body, _ := json.Marshal(reqBody)
			req := httptest.NewRequest(http.MethodPost, "/offers", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, "Response body: %s", w.Body.String())

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			} else if tt.checkResponse != nil {
				assert.True(t, response["success"].(bool))
				tt.checkResponse(t, response["data"].(map[string]interface{}))
			}
		})
	}
}

func TestListOffers(t *testing.T) {
	db := setupOfferTestDB(t)
	config.SetDB(db)

	owner := createTestCraftsman(t, db, "auth0|lister", "lister@example.com")
	other := createTestCraftsman(t, db, "auth0|other", "other@example.com")

	// Two offers for the caller with distinct creation times, one for
	// someone else
	old := models.Offer{
		OwnerID:      owner.ID,
		CustomerName: "First Customer",
		WorkCategory: "plumbing",
		Description:  "Byte av blandare",
		Materials:    "Blandare",
		Hours:        2, HourlyRate: 650,
		ValidUntil:    time.Now().AddDate(0, 1, 0),
		DeliveryTerms: "Omgående",
		PaymentTerms:  "10 dagar netto",
		Status:        models.StatusSent,
		CreatedAt:     time.Now().Add(-2 * time.Hour),
	}
	old.RecomputePricing()
	db.Create(&old)

	recent := models.Offer{
		OwnerID:      owner.ID,
		CustomerName: "Second Customer",
		WorkCategory: "electrical",
		Description:  "Nya uttag i kök",
		Materials:    "Uttag, kabel",
		Hours:        4, HourlyRate: 700,
		ValidUntil:    time.Now().AddDate(0, 1, 0),
		DeliveryTerms: "Inom två veckor",
		PaymentTerms:  "30 dagar netto",
		Status:        models.StatusDraft,
		CreatedAt:     time.Now().Add(-1 * time.Hour),
	}
	recent.RecomputePricing()
	db.Create(&recent)

	foreign := models.Offer{
		OwnerID:      other.ID,
		CustomerName: "Foreign Customer",
		WorkCategory: "renovation",
		Description:  "Annans offert",
		Materials:    "Gips",
		Hours:        8, HourlyRate: 500,
		ValidUntil:    time.Now().AddDate(0, 1, 0),
		DeliveryTerms: "Enligt avtal",
		PaymentTerms:  "30 dagar netto",
		Status:        models.StatusDraft,
	}
	foreign.RecomputePricing()
	db.Create(&foreign)

	router := setupTestRouter()
	router.GET("/offers", mockAuthMiddleware(owner.Auth0ID, "mock-token"), ListOffers)

	req := httptest.NewRequest(http.MethodGet, "/offers", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response["success"].(bool))

	data := response["data"].([]interface{})
	assert.Len(t, data, 2, "Only the caller's offers should be listed")

	// Newest first
	first := data[0].(map[string]interface{})
	second := data[1].(map[string]interface{})
	assert.Equal(t, "Second Customer", first["customer_name"])
	assert.Equal(t, "First Customer", second["customer_name"])

	for _, item := range data {
		offer := item.(map[string]interface{})
		assert.Equal(t, float64(owner.ID), offer["owner_id"])
	}
}

func TestUpdateOffer(t *testing.T) {
	db := setupOfferTestDB(t)
	config.SetDB(db)

	owner := createTestCraftsman(t, db, "auth0|updater", "updater@example.com")
	other := createTestCraftsman(t, db, "auth0|intruder", "intruder@example.com")

	offer := models.Offer{
		OwnerID:      owner.ID,
		CustomerName: "Familjen Svensson",
		WorkCategory: "renovation",
		Description:  "Renovering av badrum",
		Materials:    "Kakel",
		Hours:        10, HourlyRate: 500, MaterialCost: 2000,
		ValidUntil:    time.Now().AddDate(0, 1, 0),
		DeliveryTerms: "Enligt avtal",
		PaymentTerms:  "30 dagar netto",
		Status:        models.StatusDraft,
	}
	offer.RecomputePricing()
	db.Create(&offer)

	tests := []struct {
		name           string
		auth0ID        string
		offerID        string
		mutate         func(body map[string]interface{})
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, data map[string]interface{})
	}{
		{
			name:    "Changing hours recomputes every derived field",
			auth0ID: owner.Auth0ID,
			offerID: fmt.Sprintf("%d", offer.ID),
			mutate: func(body map[string]interface{}) {
				body["hours"] = 12.0
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				// 12h x 500 kr + 2000 kr material
				assert.Equal(t, float64(6000), data["labor_cost"])
				assert.Equal(t, float64(8000), data["total_ex_vat"])
				assert.Equal(t, float64(2000), data["vat_amount"])
				assert.Equal(t, float64(10000), data["total_inc_vat"])
			},
		},
		{
			name:           "Another user's offer reads as absent",
			auth0ID:        other.Auth0ID,
			offerID:        fmt.Sprintf("%d", offer.ID),
			expectedStatus: http.StatusNotFound,
			expectedError:  "OFFER_NOT_FOUND",
		},
		{
			name:           "Nonexistent offer",
			auth0ID:        owner.Auth0ID,
			offerID:        "9999",
			expectedStatus: http.StatusNotFound,
			expectedError:  "OFFER_NOT_FOUND",
		},
		{
			name:           "Malformed offer id",
			auth0ID:        owner.Auth0ID,
			offerID:        "not-a-number",
			expectedStatus: http.StatusNotFound,
			expectedError:  "OFFER_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.PUT("/offers/:id", mockAuthMiddleware(tt.auth0ID, "mock-token"), UpdateOffer)

			reqBody := validOfferBody()
			if tt.mutate != nil {
				tt.mutate(reqBody)
			}
			body, _ := json.Marshal(reqBody)
			req := httptest.NewRequest(http.MethodPut, "/offers/"+tt.offerID, bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, "Response body: %s", w.Body.String())

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			} else if tt.checkResponse != nil {
				tt.checkResponse(t, response["data"].(map[string]interface{}))

				// The recomputed totals are persisted, not just echoed
				var stored models.Offer
				db.First(&stored, offer.ID)
				assert.Equal(t, float64(10000), stored.TotalIncVat)
			}
		})
	}
}

func TestUpdateOfferStatus(t *testing.T) {
	db := setupOfferTestDB(t)
	config.SetDB(db)

	owner := createTestCraftsman(t, db, "auth0|status", "status@example.com")
	other := createTestCraftsman(t, db, "auth0|statusother", "statusother@example.com")

	offer := models.Offer{
		OwnerID:      owner.ID,
		CustomerName: "Status Customer",
		WorkCategory: "plumbing",
		Description:  "Byte av varmvattenberedare",
		Materials:    "Beredare",
		Hours:        6, HourlyRate: 650,
		ValidUntil:    time.Now().AddDate(0, 1, 0),
		DeliveryTerms: "Inom en vecka",
		PaymentTerms:  "30 dagar netto",
		Status:        models.StatusDraft,
	}
	offer.RecomputePricing()
	db.Create(&offer)

	tests := []struct {
		name           string
		auth0ID        string
		offerID        string
		status         string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Draft to sent",
			auth0ID:        owner.Auth0ID,
			offerID:        fmt.Sprintf("%d", offer.ID),
			status:         "sent",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Sent back to draft",
			auth0ID:        owner.Auth0ID,
			offerID:        fmt.Sprintf("%d", offer.ID),
			status:         "draft",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Accepted is a valid target from any state",
			auth0ID:        owner.Auth0ID,
			offerID:        fmt.Sprintf("%d", offer.ID),
			status:         "accepted",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Unknown status is rejected",
			auth0ID:        owner.Auth0ID,
			offerID:        fmt.Sprintf("%d", offer.ID),
			status:         "archived",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_STATUS",
		},
		{
			name:           "Status is validated before the record is looked up",
			auth0ID:        owner.Auth0ID,
			offerID:        "9999",
			status:         "archived",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_STATUS",
		},
		{
			name:           "Another user's offer reads as absent",
			auth0ID:        other.Auth0ID,
			offerID:        fmt.Sprintf("%d", offer.ID),
			status:         "sent",
			expectedStatus: http.StatusNotFound,
			expectedError:  "OFFER_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.PATCH("/offers/:id/status", mockAuthMiddleware(tt.auth0ID, "mock-token"), UpdateOfferStatus)

			body, _ := json.Marshal(map[string]string{"status": tt.status})
			req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/offers/%s/status", tt.offerID), bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, "Response body: %s", w.Body.String())

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			var stored models.Offer
			db.First(&stored, offer.ID)

			if tt.expectedError != "" {
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])

				// Stored status is untouched by rejected requests
				assert.True(t, models.ValidStatus(stored.Status))
				assert.NotEqual(t, tt.status, stored.Status)
			} else {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, tt.status, data["status"])
				assert.Equal(t, tt.status, stored.Status)
			}
		})
	}
}

func TestDeleteOffer(t *testing.T) {
	db := setupOfferTestDB(t)
	config.SetDB(db)

	owner := createTestCraftsman(t, db, "auth0|deleter", "deleter@example.com")
	other := createTestCraftsman(t, db, "auth0|deleteother", "deleteother@example.com")

	offer := models.Offer{
		OwnerID:      owner.ID,
		CustomerName: "Delete Customer",
		WorkCategory: "renovation",
		Description:  "Rivning av vägg",
		Materials:    "Bärande balk",
		Hours:        16, HourlyRate: 500,
		ValidUntil:    time.Now().AddDate(0, 1, 0),
		DeliveryTerms: "Enligt avtal",
		PaymentTerms:  "30 dagar netto",
		Status:        models.StatusRejected,
	}
	offer.RecomputePricing()
	db.Create(&offer)

	router := setupTestRouter()
	router.DELETE("/offers/:id", mockAuthMiddleware(other.Auth0ID, "mock-token"), DeleteOffer)

	// Someone else cannot delete it
	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/offers/%d", offer.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	db.Model(&models.Offer{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// The owner can
	router = setupTestRouter()
	router.DELETE("/offers/:id", mockAuthMiddleware(owner.Auth0ID, "mock-token"), DeleteOffer)

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/offers/%d", offer.ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response["success"].(bool))

	// Hard delete, the row is really gone
	db.Model(&models.Offer{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// Deleting again is a 404
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/offers/%d", offer.ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
