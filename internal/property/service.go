// Package property manages listings: creation by owners, edits and removal
// by the owner or an administrator, moderation by administrators, and the
// public catalogue.
package property

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/rental-engine/internal/apperr"
	"github.com/beesaferoot/rental-engine/internal/logging"
	"github.com/beesaferoot/rental-engine/internal/models"
	"github.com/beesaferoot/rental-engine/internal/policy"
	"github.com/beesaferoot/rental-engine/internal/repository"
)

// Input is the editable part of a property.
type Input struct {
	Title         string
	Description   string
	Address       string
	Latitude      *float64
	Longitude     *float64
	PricePerNight decimal.Decimal
	Images        []string
}

type Service struct {
	properties repository.PropertyStore
	logger     *slog.Logger
}

func NewService(properties repository.PropertyStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{properties: properties, logger: logger}
}

// Validate checks the fields shared by create and update.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.InvalidInput("title is required")
	}
	if in.PricePerNight.IsNegative() {
		return apperr.InvalidInput("price per night must not be negative")
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90) {
		return apperr.InvalidInput("latitude must be between -90 and 90")
	}
	if in.Longitude != nil && (*in.Longitude < -180 || *in.Longitude > 180) {
		return apperr.InvalidInput("longitude must be between -180 and 180")
	}
	for _, url := range in.Images {
		if strings.TrimSpace(url) == "" {
			return apperr.InvalidInput("image url must not be empty")
		}
	}
	return nil
}

func (in Input) apply(p *models.Property) {
	p.Title = strings.TrimSpace(in.Title)
	p.Description = in.Description
	p.Address = strings.TrimSpace(in.Address)
	p.Latitude = in.Latitude
	p.Longitude = in.Longitude
	p.PricePerNight = in.PricePerNight
	p.Images = make([]models.Image, 0, len(in.Images))
	for _, url := range in.Images {
		p.Images = append(p.Images, models.Image{URL: strings.TrimSpace(url)})
	}
}

// Create lists a new property owned by the caller. New listings wait for
// moderation in PENDING_VALIDATION.
func (s *Service) Create(ctx context.Context, caller policy.Identity, in Input) (*models.Property, error) {
	if err := policy.Check(ctx, s.logger, caller, policy.ActionCreateProperty, policy.NoOwner); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := &models.Property{OwnerID: caller.UserID, Status: models.PropertyPendingValidation}
	in.apply(p)
	if err := s.properties.Save(ctx, p); err != nil {
		return nil, apperr.Internal(err, "creating property")
	}
	s.logger.InfoContext(ctx, "property created", "property_id", p.ID, "owner_id", p.OwnerID)
	return p, nil
}

// Update replaces the editable fields and the image set. Ownership and
// status are left alone.
func (s *Service) Update(ctx context.Context, caller policy.Identity, id uint, in Input) (*models.Property, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(ctx, s.logger, caller, policy.ActionUpdateProperty, p.OwnerID); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.apply(p)
	if err := s.properties.Save(ctx, p); err != nil {
		return nil, apperr.Internal(err, "updating property %d", id)
	}
	s.logger.InfoContext(ctx, "property updated", "property_id", p.ID, "user_id", caller.UserID)
	return p, nil
}

// Delete removes a property with its bookings and images.
func (s *Service) Delete(ctx context.Context, caller policy.Identity, id uint) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Check(ctx, s.logger, caller, policy.ActionDeleteProperty, p.OwnerID); err != nil {
		return err
	}
	if err := s.properties.Delete(ctx, id); err != nil {
		return apperr.Internal(err, "deleting property %d", id)
	}
	s.logger.InfoContext(ctx, "property deleted", "property_id", id, "user_id", caller.UserID)
	return nil
}

// SetStatus moves a property through its moderation lifecycle.
func (s *Service) SetStatus(ctx context.Context, caller policy.Identity, id uint, status models.PropertyStatus) (*models.Property, error) {
	if !status.Valid() {
		return nil, apperr.InvalidInput("invalid property status %q", status)
	}
	if err := policy.Check(ctx, s.logger, caller, policy.ActionModerateProperty, policy.NoOwner); err != nil {
		return nil, err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := p.Status
	p.Status = status
	if err := s.properties.Save(ctx, p); err != nil {
		return nil, apperr.Internal(err, "updating status of property %d", id)
	}
	s.logger.InfoContext(ctx, "property status changed",
		"property_id", id, "from", string(previous), "to", string(status), "user_id", caller.UserID)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Property, error) {
	return s.load(ctx, id)
}

// List is the public catalogue. status is parsed case-insensitively and an
// empty value matches every status; query filters on the address.
func (s *Service) List(ctx context.Context, status, query string) ([]models.Property, error) {
	filter := repository.PropertyFilter{Query: query}
	if strings.TrimSpace(status) != "" {
		st, err := models.ParsePropertyStatus(status)
		if err != nil {
			return nil, apperr.InvalidInput("%v", err)
		}
		filter.Status = &st
	}
	properties, err := s.properties.Search(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err, "listing properties")
	}
	return properties, nil
}

// ListMine returns the properties owned by the caller.
func (s *Service) ListMine(ctx context.Context, caller policy.Identity) ([]models.Property, error) {
	if err := policy.Check(ctx, s.logger, caller, policy.ActionListOwnProperties, policy.NoOwner); err != nil {
		return nil, err
	}
	properties, err := s.properties.FindByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, apperr.Internal(err, "listing properties of owner %d", caller.UserID)
	}
	return properties, nil
}

func (s *Service) load(ctx context.Context, id uint) (*models.Property, error) {
	p, err := s.properties.Get(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "loading property %d", id)
	}
	if p == nil {
		return nil, apperr.ErrPropertyNotFound
	}
	return p, nil
}
