package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"rentease/internal/authz"
	"rentease/internal/status"
	"rentease/internal/store"
	"rentease/models"
)

type PropertyService struct {
	store store.Store
}

func NewPropertyService(st store.Store) *PropertyService {
	return &PropertyService{store: st}
}

type PropertyInput struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Location     string          `json:"location"`
	Latitude     float64         `json:"latitude"`
	Longitude    float64         `json:"longitude"`
	PropertyType string          `json:"property_type"`
	Status       string          `json:"status"`
}

func (in *PropertyInput) validate() error {
	if in.Title == "" {
		return fmt.Errorf("title is required: %w", status.ErrValidation)
	}
	if in.Location == "" {
		return fmt.Errorf("location is required: %w", status.ErrValidation)
	}
	if !in.Price.IsPositive() {
		return fmt.Errorf("price must be positive: %w", status.ErrValidation)
	}
	return nil
}

func (s *PropertyService) Create(ctx context.Context, requesterID string, role models.Role, in PropertyInput) (*models.Property, error) {
	if requesterID == "" {
		return nil, status.ErrUnauthenticated
	}
	if !authz.Can(role, authz.ActionCreateProperty) {
		return nil, fmt.Errorf("create property: %w", status.ErrForbidden)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	propStatus := models.PropertyStatus(in.Status)
	if propStatus == "" {
		propStatus = models.PropertyAvailable
	}

	property, err := s.store.CreateProperty(ctx, &models.Property{
		OwnerID:      requesterID,
		Title:        in.Title,
		Description:  in.Description,
		Price:        in.Price,
		Location:     in.Location,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		PropertyType: in.PropertyType,
		Status:       propStatus,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("property created", "property_id", property.ID, "owner_id", requesterID)
	return property, nil
}

func (s *PropertyService) Update(ctx context.Context, requesterID string, role models.Role, propertyID string, in PropertyInput) (*models.Property, error) {
	if requesterID == "" {
		return nil, status.ErrUnauthenticated
	}

	property, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutateProperty(requesterID, role, property) {
		return nil, fmt.Errorf("update property %s: %w", propertyID, status.ErrForbidden)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	property.Title = in.Title
	property.Description = in.Description
	property.Price = in.Price
	property.Location = in.Location
	property.Latitude = in.Latitude
	property.Longitude = in.Longitude
	property.PropertyType = in.PropertyType
	if in.Status != "" {
		property.Status = models.PropertyStatus(in.Status)
	}

	if err := s.store.UpdateProperty(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// Delete removes a property and cascades to its images, including the
// stored files.
func (s *PropertyService) Delete(ctx context.Context, requesterID string, role models.Role, propertyID string) error {
	if requesterID == "" {
		return status.ErrUnauthenticated
	}

	property, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		return err
	}
	if !authz.CanMutateProperty(requesterID, role, property) {
		return fmt.Errorf("delete property %s: %w", propertyID, status.ErrForbidden)
	}

	if err := s.store.DeleteProperty(ctx, propertyID); err != nil {
		return err
	}

	slog.Info("property deleted", "property_id", propertyID, "by", requesterID)
	return nil
}

func (s *PropertyService) Get(ctx context.Context, propertyID string) (*models.Property, []*models.PropertyImage, error) {
	property, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, nil, err
	}

	images, err := s.store.ListPropertyImages(ctx, propertyID)
	if err != nil {
		return nil, nil, err
	}
	return property, images, nil
}

// List returns properties. Admins see everything; owners can scope to their
// own listings with mine; everyone else gets the full public list.
func (s *PropertyService) List(ctx context.Context, requesterID string, mine bool, limit, offset int) ([]*models.Property, error) {
	if limit <= 0 {
		limit = 50
	}

	ownerID := ""
	if mine {
		if requesterID == "" {
			return nil, status.ErrUnauthenticated
		}
		ownerID = requesterID
	}
	return s.store.ListProperties(ctx, ownerID, limit, offset)
}

func (s *PropertyService) DeleteImage(ctx context.Context, requesterID string, role models.Role, propertyID, imageID string) error {
	if requesterID == "" {
		return status.ErrUnauthenticated
	}

	property, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		return err
	}
	if !authz.CanMutateProperty(requesterID, role, property) {
		return fmt.Errorf("delete image on property %s: %w", propertyID, status.ErrForbidden)
	}
	return s.store.DeletePropertyImage(ctx, imageID)
}
