package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"rentease/internal/authz"
	"rentease/internal/status"
	"rentease/models"
)

const (
	CollectionBookings       = "bookings"
	CollectionPayments       = "payments"
	CollectionProperties     = "properties"
	CollectionPropertyImages = "property_images"
	CollectionProfiles       = "profiles"
)

// PBStore implements Store on top of a PocketBase app (or a transactional
// view of one).
type PBStore struct {
	app core.App
}

func NewPBStore(app core.App) *PBStore {
	return &PBStore{app: app}
}

func (s *PBStore) RunInTransaction(_ context.Context, fn func(tx Store) error) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		return fn(NewPBStore(txApp))
	})
}

// ---- bookings ----

func (s *PBStore) CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	collection, err := s.app.FindCollectionByNameOrId(CollectionBookings)
	if err != nil {
		return nil, fmt.Errorf("find bookings collection: %w", status.ErrPersistence)
	}

	record := core.NewRecord(collection)
	record.Set("property_id", b.PropertyID)
	record.Set("user_id", b.UserID)
	record.Set("owner_id", b.OwnerID)
	record.Set("check_in", b.CheckIn)
	record.Set("check_out", b.CheckOut)
	record.Set("status", string(b.Status))

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("save booking: %v: %w", err, status.ErrPersistence)
	}
	return bookingFromRecord(record), nil
}

func (s *PBStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	record, err := s.app.FindRecordById(CollectionBookings, id)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %v: %w", id, err, status.ErrPersistence)
	}
	return bookingFromRecord(record), nil
}

func (s *PBStore) UpdateBookingStatus(ctx context.Context, id string, from, to models.BookingStatus) (bool, error) {
	applied := false
	err := s.app.RunInTransaction(func(txApp core.App) error {
		record, err := txApp.FindRecordById(CollectionBookings, id)
		if err != nil {
			return fmt.Errorf("booking %s: %v: %w", id, err, status.ErrPersistence)
		}
		if models.BookingStatus(record.GetString("status")) != from {
			return nil
		}
		record.Set("status", string(to))
		if err := txApp.SaveWithContext(ctx, record); err != nil {
			return fmt.Errorf("update booking %s status: %v: %w", id, err, status.ErrPersistence)
		}
		applied = true
		return nil
	})
	return applied, err
}

func (s *PBStore) ListBookings(ctx context.Context, scope authz.BookingScope, requesterID string, limit, offset int) ([]*models.Booking, error) {
	filter, params := bookingScopeFilter(scope, requesterID)
	if filter == "" {
		return []*models.Booking{}, nil
	}

	records, err := s.app.FindRecordsByFilter(
		CollectionBookings,
		filter,
		"-created",
		limit,
		offset,
		params,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %v: %w", err, status.ErrPersistence)
	}

	bookings := make([]*models.Booking, 0, len(records))
	for _, record := range records {
		bookings = append(bookings, bookingFromRecord(record))
	}
	return bookings, nil
}

func (s *PBStore) CountBookings(ctx context.Context, scope authz.BookingScope, requesterID string) (int64, error) {
	var exprs []dbx.Expression
	switch scope {
	case authz.ScopeRequester:
		exprs = append(exprs, dbx.HashExp{"user_id": requesterID})
	case authz.ScopeOwnedProperties:
		exprs = append(exprs, dbx.HashExp{"owner_id": requesterID})
	case authz.ScopeAll:
		// no filter
	default:
		return 0, nil
	}

	count, err := s.app.CountRecords(CollectionBookings, exprs...)
	if err != nil {
		return 0, fmt.Errorf("count bookings: %v: %w", err, status.ErrPersistence)
	}
	return count, nil
}

func bookingScopeFilter(scope authz.BookingScope, requesterID string) (string, dbx.Params) {
	switch scope {
	case authz.ScopeRequester:
		return "user_id = {:requester}", dbx.Params{"requester": requesterID}
	case authz.ScopeOwnedProperties:
		return "owner_id = {:requester}", dbx.Params{"requester": requesterID}
	case authz.ScopeAll:
		return "id != ''", dbx.Params{}
	default:
		return "", nil
	}
}

func bookingFromRecord(record *core.Record) *models.Booking {
	return &models.Booking{
		ID:         record.Id,
		PropertyID: record.GetString("property_id"),
		UserID:     record.GetString("user_id"),
		OwnerID:    record.GetString("owner_id"),
		CheckIn:    record.GetDateTime("check_in").Time(),
		CheckOut:   record.GetDateTime("check_out").Time(),
		Status:     models.BookingStatus(record.GetString("status")),
		Created:    record.GetDateTime("created").Time(),
	}
}

// ---- payments ----

func (s *PBStore) CreatePayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	collection, err := s.app.FindCollectionByNameOrId(CollectionPayments)
	if err != nil {
		return nil, fmt.Errorf("find payments collection: %w", status.ErrPersistence)
	}

	record := core.NewRecord(collection)
	record.Set("booking_id", p.BookingID)
	record.Set("amount", p.Amount.InexactFloat64())
	record.Set("payment_status", string(p.Status))
	record.Set("payment_method", p.PaymentMethod)
	record.Set("razorpay_payment_id", p.RazorpayPaymentID)
	record.Set("razorpay_order_id", p.RazorpayOrderID)
	record.Set("razorpay_signature", p.RazorpaySignature)

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("save payment: %v: %w", err, status.ErrPersistence)
	}
	return paymentFromRecord(record), nil
}

func (s *PBStore) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	record, err := s.app.FindRecordById(CollectionPayments, id)
	if err != nil {
		return nil, fmt.Errorf("payment %s: %v: %w", id, err, status.ErrPersistence)
	}
	return paymentFromRecord(record), nil
}

func (s *PBStore) FindPendingPaymentByBooking(ctx context.Context, bookingID string) (*models.Payment, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionPayments,
		"booking_id = {:bookingId} && payment_status = {:status}",
		"-created",
		1,
		0,
		dbx.Params{"bookingId": bookingID, "status": string(models.PaymentPending)},
	)
	if err != nil {
		return nil, fmt.Errorf("find pending payment for booking %s: %v: %w", bookingID, err, status.ErrPersistence)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return paymentFromRecord(records[0]), nil
}

func (s *PBStore) FindLatestPaymentByBooking(ctx context.Context, bookingID string) (*models.Payment, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionPayments,
		"booking_id = {:bookingId}",
		"-created",
		1,
		0,
		dbx.Params{"bookingId": bookingID},
	)
	if err != nil {
		return nil, fmt.Errorf("find latest payment for booking %s: %v: %w", bookingID, err, status.ErrPersistence)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return paymentFromRecord(records[0]), nil
}

func (s *PBStore) FindPaymentByOrderID(ctx context.Context, razorpayOrderID string) (*models.Payment, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionPayments,
		"razorpay_order_id = {:oid}",
		"-created",
		1,
		0,
		dbx.Params{"oid": razorpayOrderID},
	)
	if err != nil {
		return nil, fmt.Errorf("find payment by order id: %v: %w", err, status.ErrPersistence)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return paymentFromRecord(records[0]), nil
}

func (s *PBStore) FindPaymentByProviderID(ctx context.Context, razorpayPaymentID string) (*models.Payment, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionPayments,
		"razorpay_payment_id = {:pid}",
		"-created",
		1,
		0,
		dbx.Params{"pid": razorpayPaymentID},
	)
	if err != nil {
		return nil, fmt.Errorf("find payment by provider id: %v: %w", err, status.ErrPersistence)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return paymentFromRecord(records[0]), nil
}

func (s *PBStore) UpdatePayment(ctx context.Context, p *models.Payment) error {
	record, err := s.app.FindRecordById(CollectionPayments, p.ID)
	if err != nil {
		return fmt.Errorf("payment %s: %v: %w", p.ID, err, status.ErrPersistence)
	}

	record.Set("payment_status", string(p.Status))
	record.Set("razorpay_payment_id", p.RazorpayPaymentID)
	record.Set("razorpay_order_id", p.RazorpayOrderID)
	record.Set("razorpay_signature", p.RazorpaySignature)

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("update payment %s: %v: %w", p.ID, err, status.ErrPersistence)
	}
	return nil
}

func (s *PBStore) ListPaymentsByStatus(ctx context.Context, st models.PaymentStatus, limit int) ([]*models.Payment, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionPayments,
		"payment_status = {:status}",
		"-created",
		limit,
		0,
		dbx.Params{"status": string(st)},
	)
	if err != nil {
		return nil, fmt.Errorf("list payments by status: %v: %w", err, status.ErrPersistence)
	}

	payments := make([]*models.Payment, 0, len(records))
	for _, record := range records {
		payments = append(payments, paymentFromRecord(record))
	}
	return payments, nil
}

func paymentFromRecord(record *core.Record) *models.Payment {
	return &models.Payment{
		ID:                record.Id,
		BookingID:         record.GetString("booking_id"),
		Amount:            decimal.NewFromFloat(record.GetFloat("amount")),
		Status:            models.PaymentStatus(record.GetString("payment_status")),
		PaymentMethod:     record.GetString("payment_method"),
		RazorpayPaymentID: record.GetString("razorpay_payment_id"),
		RazorpayOrderID:   record.GetString("razorpay_order_id"),
		RazorpaySignature: record.GetString("razorpay_signature"),
		Created:           record.GetDateTime("created").Time(),
	}
}

// ---- properties ----

func (s *PBStore) CreateProperty(ctx context.Context, p *models.Property) (*models.Property, error) {
	collection, err := s.app.FindCollectionByNameOrId(CollectionProperties)
	if err != nil {
		return nil, fmt.Errorf("find properties collection: %w", status.ErrPersistence)
	}

	record := core.NewRecord(collection)
	setPropertyFields(record, p)

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("save property: %v: %w", err, status.ErrPersistence)
	}
	return propertyFromRecord(record), nil
}

func (s *PBStore) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	record, err := s.app.FindRecordById(CollectionProperties, id)
	if err != nil {
		return nil, fmt.Errorf("property %s: %v: %w", id, err, status.ErrPersistence)
	}
	return propertyFromRecord(record), nil
}

func (s *PBStore) UpdateProperty(ctx context.Context, p *models.Property) error {
	record, err := s.app.FindRecordById(CollectionProperties, p.ID)
	if err != nil {
		return fmt.Errorf("property %s: %v: %w", p.ID, err, status.ErrPersistence)
	}

	setPropertyFields(record, p)
	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("update property %s: %v: %w", p.ID, err, status.ErrPersistence)
	}
	return nil
}

func (s *PBStore) DeleteProperty(ctx context.Context, id string) error {
	record, err := s.app.FindRecordById(CollectionProperties, id)
	if err != nil {
		return fmt.Errorf("property %s: %v: %w", id, err, status.ErrPersistence)
	}

	// property_images relate with cascadeDelete, so image rows and their
	// stored files go with the property.
	if err := s.app.Delete(record); err != nil {
		return fmt.Errorf("delete property %s: %v: %w", id, err, status.ErrPersistence)
	}
	return nil
}

func (s *PBStore) ListProperties(ctx context.Context, ownerID string, limit, offset int) ([]*models.Property, error) {
	filter := "id != ''"
	params := dbx.Params{}
	if ownerID != "" {
		filter = "owner_id = {:owner}"
		params = dbx.Params{"owner": ownerID}
	}

	records, err := s.app.FindRecordsByFilter(
		CollectionProperties,
		filter,
		"-created",
		limit,
		offset,
		params,
	)
	if err != nil {
		return nil, fmt.Errorf("list properties: %v: %w", err, status.ErrPersistence)
	}

	properties := make([]*models.Property, 0, len(records))
	for _, record := range records {
		properties = append(properties, propertyFromRecord(record))
	}
	return properties, nil
}

func (s *PBStore) CountProperties(ctx context.Context, ownerID string) (int64, error) {
	var exprs []dbx.Expression
	if ownerID != "" {
		exprs = append(exprs, dbx.HashExp{"owner_id": ownerID})
	}

	count, err := s.app.CountRecords(CollectionProperties, exprs...)
	if err != nil {
		return 0, fmt.Errorf("count properties: %v: %w", err, status.ErrPersistence)
	}
	return count, nil
}

func (s *PBStore) ListPropertyImages(ctx context.Context, propertyID string) ([]*models.PropertyImage, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionPropertyImages,
		"property_id = {:propertyId}",
		"-created",
		-1,
		0,
		dbx.Params{"propertyId": propertyID},
	)
	if err != nil {
		return nil, fmt.Errorf("list property images: %v: %w", err, status.ErrPersistence)
	}

	images := make([]*models.PropertyImage, 0, len(records))
	for _, record := range records {
		images = append(images, &models.PropertyImage{
			ID:         record.Id,
			PropertyID: record.GetString("property_id"),
			ImageURL:   record.GetString("image_url"),
		})
	}
	return images, nil
}

func (s *PBStore) DeletePropertyImage(ctx context.Context, imageID string) error {
	record, err := s.app.FindRecordById(CollectionPropertyImages, imageID)
	if err != nil {
		return fmt.Errorf("property image %s: %v: %w", imageID, err, status.ErrPersistence)
	}
	if err := s.app.Delete(record); err != nil {
		return fmt.Errorf("delete property image %s: %v: %w", imageID, err, status.ErrPersistence)
	}
	return nil
}

func setPropertyFields(record *core.Record, p *models.Property) {
	record.Set("owner_id", p.OwnerID)
	record.Set("title", p.Title)
	record.Set("description", p.Description)
	record.Set("price", p.Price.InexactFloat64())
	record.Set("location", p.Location)
	record.Set("latitude", p.Latitude)
	record.Set("longitude", p.Longitude)
	record.Set("property_type", p.PropertyType)
	record.Set("status", string(p.Status))
}

func propertyFromRecord(record *core.Record) *models.Property {
	return &models.Property{
		ID:           record.Id,
		OwnerID:      record.GetString("owner_id"),
		Title:        record.GetString("title"),
		Description:  record.GetString("description"),
		Price:        decimal.NewFromFloat(record.GetFloat("price")),
		Location:     record.GetString("location"),
		Latitude:     record.GetFloat("latitude"),
		Longitude:    record.GetFloat("longitude"),
		PropertyType: record.GetString("property_type"),
		Status:       models.PropertyStatus(record.GetString("status")),
		Created:      record.GetDateTime("created").Time(),
	}
}

// ---- profiles ----

func (s *PBStore) GetProfileByUser(ctx context.Context, userID string) (*models.Profile, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionProfiles,
		"user = {:userId}",
		"-created",
		1,
		0,
		dbx.Params{"userId": userID},
	)
	if err != nil {
		return nil, fmt.Errorf("profile for user %s: %v: %w", userID, err, status.ErrPersistence)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return profileFromRecord(records[0]), nil
}

func (s *PBStore) ListProfiles(ctx context.Context, limit, offset int) ([]*models.Profile, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionProfiles,
		"id != ''",
		"-created",
		limit,
		offset,
		dbx.Params{},
	)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %v: %w", err, status.ErrPersistence)
	}

	profiles := make([]*models.Profile, 0, len(records))
	for _, record := range records {
		profiles = append(profiles, profileFromRecord(record))
	}
	return profiles, nil
}

func (s *PBStore) UpdateProfileRole(ctx context.Context, userID string, role models.Role) error {
	records, err := s.app.FindRecordsByFilter(
		CollectionProfiles,
		"user = {:userId}",
		"",
		1,
		0,
		dbx.Params{"userId": userID},
	)
	if err != nil || len(records) == 0 {
		return fmt.Errorf("profile for user %s: %w", userID, status.ErrPersistence)
	}

	record := records[0]
	record.Set("role", string(role))
	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("update role for user %s: %v: %w", userID, err, status.ErrPersistence)
	}
	return nil
}

func (s *PBStore) CountProfiles(ctx context.Context) (int64, error) {
	count, err := s.app.CountRecords(CollectionProfiles)
	if err != nil {
		return 0, fmt.Errorf("count profiles: %v: %w", err, status.ErrPersistence)
	}
	return count, nil
}

func profileFromRecord(record *core.Record) *models.Profile {
	return &models.Profile{
		ID:        record.GetString("user"),
		FirstName: record.GetString("first_name"),
		LastName:  record.GetString("last_name"),
		Email:     record.GetString("email"),
		Phone:     record.GetString("phone"),
		Role:      models.Role(record.GetString("role")),
		Created:   record.GetDateTime("created").Time(),
	}
}
