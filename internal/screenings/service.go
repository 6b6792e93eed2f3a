package screenings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cinebook/pkg/cache"

	"github.com/google/uuid"
)

var (
	ErrInvalidTimeRange   = errors.New("end time must be after start time")
	ErrScreeningInPast    = errors.New("screening start time is in the past")
	ErrScreeningNotActive = errors.New("screening is not active")
)

// SeatMaterializer creates the durable per-screening seat inventory.
// Implemented by the seats service.
type SeatMaterializer interface {
	MaterializeScreening(ctx context.Context, screeningID uuid.UUID, rows, seatsPerRow int) error
}

type Service interface {
	CreateAuditorium(ctx context.Context, req *CreateAuditoriumRequest) (*Auditorium, error)
	ListAuditoriums(ctx context.Context) ([]Auditorium, error)
	CreateScreening(ctx context.Context, req *CreateScreeningRequest, createdBy uuid.UUID) (*ScreeningResponse, error)
	GetScreening(ctx context.Context, id uuid.UUID) (*ScreeningResponse, error)
	ListScreenings(ctx context.Context, query *ScreeningListQuery) (*PaginatedScreenings, error)
	CancelScreening(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo         Repository
	materializer SeatMaterializer
	cache        cache.Service
	cacheTTL     time.Duration
	logger       *slog.Logger
}

func NewService(repo Repository, materializer SeatMaterializer, cacheService cache.Service, cacheTTL time.Duration, logger *slog.Logger) Service {
	return &service{
		repo:         repo,
		materializer: materializer,
		cache:        cacheService,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

func (s *service) CreateAuditorium(ctx context.Context, req *CreateAuditoriumRequest) (*Auditorium, error) {
	auditorium := &Auditorium{
		Name:        req.Name,
		Rows:        req.Rows,
		SeatsPerRow: req.SeatsPerRow,
	}
	if err := s.repo.CreateAuditorium(ctx, auditorium); err != nil {
		return nil, fmt.Errorf("failed to create auditorium: %w", err)
	}
	return auditorium, nil
}

func (s *service) ListAuditoriums(ctx context.Context) ([]Auditorium, error) {
	return s.repo.ListAuditoriums(ctx)
}

func (s *service) CreateScreening(ctx context.Context, req *CreateScreeningRequest, createdBy uuid.UUID) (*ScreeningResponse, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	if req.StartTime.Before(time.Now()) {
		return nil, ErrScreeningInPast
	}

	auditoriumID, err := uuid.Parse(req.AuditoriumID)
	if err != nil {
		return nil, fmt.Errorf("invalid auditorium id: %w", err)
	}
	auditorium, err := s.repo.GetAuditoriumByID(ctx, auditoriumID)
	if err != nil {
		return nil, err
	}

	screening := &Screening{
		MovieTitle:   req.MovieTitle,
		AuditoriumID: auditorium.ID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Format:       Format(req.Format),
		Status:       StatusActive,
		BasePrice:    req.BasePrice,
		CreatedBy:    createdBy,
	}
	if err := s.repo.CreateScreening(ctx, screening); err != nil {
		return nil, fmt.Errorf("failed to create screening: %w", err)
	}

	if err := s.materializer.MaterializeScreening(ctx, screening.ID, auditorium.Rows, auditorium.SeatsPerRow); err != nil {
		return nil, fmt.Errorf("failed to materialize seats for screening %s: %w", screening.ID, err)
	}

	s.logger.Info("screening created",
		"screening_id", screening.ID,
		"movie_title", screening.MovieTitle,
		"auditorium", auditorium.Name,
		"seats", auditorium.Rows*auditorium.SeatsPerRow)

	screening.Auditorium = auditorium
	resp := screening.ToResponse()
	return &resp, nil
}

func (s *service) GetScreening(ctx context.Context, id uuid.UUID) (*ScreeningResponse, error) {
	cacheKey := cache.ScreeningKey(id.String())

	var cached ScreeningResponse
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	screening, err := s.repo.GetScreeningByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := screening.ToResponse()
	if err := s.cache.Set(ctx, cacheKey, resp, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache screening", "screening_id", id, "error", err)
	}
	return &resp, nil
}

func (s *service) ListScreenings(ctx context.Context, query *ScreeningListQuery) (*PaginatedScreenings, error) {
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 20
	}

	list, totalCount, err := s.repo.ListScreenings(ctx, query)
	if err != nil {
		return nil, err
	}

	responses := make([]ScreeningResponse, 0, len(list))
	for i := range list {
		responses = append(responses, list[i].ToResponse())
	}

	totalPages := int((totalCount + int64(query.Limit) - 1) / int64(query.Limit))
	return &PaginatedScreenings{
		Screenings: responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *service) CancelScreening(ctx context.Context, id uuid.UUID) error {
	screening, err := s.repo.GetScreeningByID(ctx, id)
	if err != nil {
		return err
	}
	if screening.Status != StatusActive {
		return ErrScreeningNotActive
	}
	if err := s.repo.UpdateScreeningStatus(ctx, id, StatusCancelled); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cache.ScreeningKey(id.String())); err != nil {
		s.logger.Warn("failed to invalidate screening cache", "screening_id", id, "error", err)
	}
	return nil
}
