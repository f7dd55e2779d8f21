package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	maxPage          = 10000
	defaultCurrency  = "ILS"
)

type PropertyService struct {
	repo   ports.PropertyRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewPropertyService(repo ports.PropertyRepository, logger zerolog.Logger) *PropertyService {
	return &PropertyService{repo: repo, logger: logger, now: time.Now}
}

// CreateProperty publishes a new listing in the available state.
func (s *PropertyService) CreateProperty(ctx context.Context, in ports.CreatePropertyInput) (*domain.Property, error) {
	if in.BrokerID == "" {
		return nil, domain.ErrForbidden
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	now := s.now().UTC()
	p := &domain.Property{
		ID:            generateListingID(),
		BrokerID:      in.BrokerID,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		Address:       in.Address,
		Price:         in.Price,
		Currency:      currency,
		Rooms:         in.Rooms,
		AreaSqm:       in.AreaSqm,
		ExpectedYield: in.ExpectedYield,
		Status:        domain.PropertyAvailable,
		StatusHistory: []domain.StatusHistoryEntry{
			{Status: domain.PropertyAvailable, Timestamp: now, ChangedBy: in.BrokerID},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Msg("failed to create property")
		return nil, err
	}

	s.logger.Info().Str("property_id", p.ID).Str("broker_id", p.BrokerID).Msg("property listed")
	return p, nil
}

func (s *PropertyService) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	return s.repo.FindByID(ctx, strings.TrimSpace(id))
}

// ListProperties normalises paging and returns one page of listings.
func (s *PropertyService) ListProperties(ctx context.Context, f ports.ListPropertiesFilter) (*ports.ListPropertiesResult, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > maxPage {
		f.Page = maxPage
	}
	if f.Limit < 1 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / f.Limit
	if int(total)%f.Limit != 0 {
		totalPages++
	}

	return &ports.ListPropertiesResult{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus moves a listing through its state machine. Only the broker
// who listed the property may change it.
func (s *PropertyService) UpdateStatus(ctx context.Context, in ports.UpdatePropertyStatusInput) (*domain.Property, error) {
	p, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if in.ActorRole != domain.RoleBroker || p.BrokerID != in.ActorID {
		return nil, domain.ErrForbidden
	}
	if !p.Status.CanTransitionTo(in.Status) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, p.Status, in.Status)
	}

	entry := domain.StatusHistoryEntry{Status: in.Status, Timestamp: s.now().UTC(), ChangedBy: in.ActorID}
	if err := s.repo.UpdateStatus(ctx, p.ID, p.Status, entry); err != nil {
		return nil, err
	}

	s.logger.Info().Str("property_id", p.ID).Str("from", string(p.Status)).Str("to", string(in.Status)).Msg("property status changed")

	p.Status = in.Status
	p.UpdatedAt = entry.Timestamp
	p.StatusHistory = append(p.StatusHistory, entry)
	return p, nil
}

// generateListingID returns a listing reference in the format LST-XXXXXXXX.
func generateListingID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("LST-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("LST-%08X", b)
}
