package screenings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("screening not found")

type Repository interface {
	CreateAuditorium(ctx context.Context, auditorium *Auditorium) error
	GetAuditoriumByID(ctx context.Context, id uuid.UUID) (*Auditorium, error)
	ListAuditoriums(ctx context.Context) ([]Auditorium, error)
	CreateScreening(ctx context.Context, screening *Screening) error
	GetScreeningByID(ctx context.Context, id uuid.UUID) (*Screening, error)
	ListScreenings(ctx context.Context, query *ScreeningListQuery) ([]Screening, int64, error)
	ListActiveScreenings(ctx context.Context) ([]Screening, error)
	UpdateScreeningStatus(ctx context.Context, id uuid.UUID, status ScreeningStatus) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateAuditorium(ctx context.Context, auditorium *Auditorium) error {
	return r.db.WithContext(ctx).Create(auditorium).Error
}

func (r *repository) GetAuditoriumByID(ctx context.Context, id uuid.UUID) (*Auditorium, error) {
	var auditorium Auditorium
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&auditorium).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &auditorium, nil
}

func (r *repository) ListAuditoriums(ctx context.Context) ([]Auditorium, error) {
	var auditoriums []Auditorium
	err := r.db.WithContext(ctx).Order("name ASC").Find(&auditoriums).Error
	return auditoriums, err
}

func (r *repository) CreateScreening(ctx context.Context, screening *Screening) error {
	return r.db.WithContext(ctx).Create(screening).Error
}

func (r *repository) GetScreeningByID(ctx context.Context, id uuid.UUID) (*Screening, error) {
	var screening Screening
	err := r.db.WithContext(ctx).Preload("Auditorium").Where("id = ?", id).First(&screening).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &screening, nil
}

func (r *repository) ListScreenings(ctx context.Context, query *ScreeningListQuery) ([]Screening, int64, error) {
	db := r.db.WithContext(ctx).Model(&Screening{})

	if query.Search != "" {
		db = db.Where("movie_title ILIKE ?", "%"+query.Search+"%")
	}
	if query.Format != "" {
		db = db.Where("format = ?", query.Format)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	} else {
		db = db.Where("status = ?", StatusActive)
	}
	if query.DateFrom != "" {
		if from, err := time.Parse("2006-01-02", query.DateFrom); err == nil {
			db = db.Where("start_time >= ?", from)
		}
	}
	if query.DateTo != "" {
		if to, err := time.Parse("2006-01-02", query.DateTo); err == nil {
			db = db.Where("start_time < ?", to.AddDate(0, 0, 1))
		}
	}

	var totalCount int64
	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	var result []Screening
	err := db.Preload("Auditorium").
		Order("start_time ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&result).Error
	return result, totalCount, err
}

func (r *repository) ListActiveScreenings(ctx context.Context) ([]Screening, error) {
	var result []Screening
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusActive).
		Find(&result).Error
	return result, err
}

func (r *repository) UpdateScreeningStatus(ctx context.Context, id uuid.UUID, status ScreeningStatus) error {
	result := r.db.WithContext(ctx).Model(&Screening{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
