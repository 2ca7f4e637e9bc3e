package handlers

import (
	"fmt"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
	"github.com/shopspring/decimal"

	"rentease/internal/authz"
	"rentease/internal/services"
	"rentease/internal/store"
)

type PropertyHandler struct {
	app             core.App
	store           store.Store
	propertyService *services.PropertyService
}

func NewPropertyHandler(app core.App, st store.Store, propertyService *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		app:             app,
		store:           st,
		propertyService: propertyService,
	}
}

type propertyRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Location     string  `json:"location"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	PropertyType string  `json:"property_type"`
	Status       string  `json:"status"`
}

func (r *propertyRequest) toInput() services.PropertyInput {
	return services.PropertyInput{
		Title:        r.Title,
		Description:  r.Description,
		Price:        decimal.NewFromFloat(r.Price),
		Location:     r.Location,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		PropertyType: r.PropertyType,
		Status:       r.Status,
	}
}

// CreateProperty - List a new property
func (h *PropertyHandler) CreateProperty(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req propertyRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	role := requesterRole(e, h.store)
	property, err := h.propertyService.Create(e.Request.Context(), e.Auth.Id, role, req.toInput())
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusCreated, property)
}

// UpdateProperty - Edit an existing property
func (h *PropertyHandler) UpdateProperty(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	propertyID := e.Request.PathValue("propertyId")

	var req propertyRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	role := requesterRole(e, h.store)
	property, err := h.propertyService.Update(e.Request.Context(), e.Auth.Id, role, propertyID, req.toInput())
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, property)
}

// DeleteProperty - Remove a property and its images
func (h *PropertyHandler) DeleteProperty(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	propertyID := e.Request.PathValue("propertyId")
	role := requesterRole(e, h.store)

	if err := h.propertyService.Delete(e.Request.Context(), e.Auth.Id, role, propertyID); err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Property deleted"})
}

// GetProperty - Public property detail with images
func (h *PropertyHandler) GetProperty(e *core.RequestEvent) error {
	propertyID := e.Request.PathValue("propertyId")

	property, images, err := h.propertyService.Get(e.Request.Context(), propertyID)
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"property": property,
		"images":   images,
	})
}

// ListProperties - Public listing; ?mine=true scopes to the caller's own
func (h *PropertyHandler) ListProperties(e *core.RequestEvent) error {
	limit, offset := pagination(e)
	mine := e.Request.URL.Query().Get("mine") == "true"

	requesterID := ""
	if e.Auth != nil {
		requesterID = e.Auth.Id
	}

	properties, err := h.propertyService.List(e.Request.Context(), requesterID, mine, limit, offset)
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"properties": properties})
}

// UploadImage - Attach an image file to a property
func (h *PropertyHandler) UploadImage(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	propertyID := e.Request.PathValue("propertyId")

	property, err := h.store.GetProperty(e.Request.Context(), propertyID)
	if err != nil {
		return toAPIError(err)
	}
	role := requesterRole(e, h.store)
	if !authz.CanMutateProperty(e.Auth.Id, role, property) {
		return apis.NewForbiddenError("Access denied", nil)
	}

	_, header, err := e.Request.FormFile("image")
	if err != nil {
		return apis.NewBadRequestError("An image file is required", err)
	}
	file, err := filesystem.NewFileFromMultipart(header)
	if err != nil {
		return apis.NewBadRequestError("Cannot process uploaded file", err)
	}

	collection, err := h.app.FindCollectionByNameOrId(store.CollectionPropertyImages)
	if err != nil {
		return toAPIError(err)
	}
	record := core.NewRecord(collection)
	record.Set("property_id", propertyID)
	record.Set("image", file)
	if err := h.app.SaveWithContext(e.Request.Context(), record); err != nil {
		return apis.NewBadRequestError("Failed to save image", err)
	}

	// The served file path doubles as the stored URL.
	record.Set("image_url", fmt.Sprintf("/api/files/%s/%s/%s",
		store.CollectionPropertyImages, record.Id, record.GetString("image")))
	if err := h.app.SaveWithContext(e.Request.Context(), record); err != nil {
		return apis.NewBadRequestError("Failed to save image", err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"id":          record.Id,
		"property_id": propertyID,
		"image_url":   record.GetString("image_url"),
	})
}

// DeleteImage - Remove an image from a property
func (h *PropertyHandler) DeleteImage(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	propertyID := e.Request.PathValue("propertyId")
	imageID := e.Request.PathValue("imageId")
	role := requesterRole(e, h.store)

	if err := h.propertyService.DeleteImage(e.Request.Context(), e.Auth.Id, role, propertyID, imageID); err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Image deleted"})
}
