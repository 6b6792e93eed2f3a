package screenings

import (
	"time"

	"github.com/google/uuid"
)

type Auditorium struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:100;uniqueIndex"`
	Rows        int       `json:"rows" gorm:"not null;check:rows > 0"`
	SeatsPerRow int       `json:"seats_per_row" gorm:"not null;check:seats_per_row > 0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Auditorium) TableName() string {
	return "auditoriums"
}

type Screening struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	MovieTitle   string          `json:"movie_title" gorm:"not null;size:255"`
	AuditoriumID uuid.UUID       `json:"auditorium_id" gorm:"type:uuid;not null;index"`
	Auditorium   *Auditorium     `json:"auditorium,omitempty" gorm:"foreignKey:AuditoriumID"`
	StartTime    time.Time       `json:"start_time" gorm:"not null;index"`
	EndTime      time.Time       `json:"end_time" gorm:"not null"`
	Format       Format          `json:"format" gorm:"type:varchar(10);not null"`
	Status       ScreeningStatus `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`
	BasePrice    float64         `json:"base_price" gorm:"not null;check:base_price >= 0"`
	CreatedBy    uuid.UUID       `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Screening) TableName() string {
	return "screenings"
}

type CreateAuditoriumRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Rows        int    `json:"rows" binding:"required,min=1,max=50"`
	SeatsPerRow int    `json:"seats_per_row" binding:"required,min=1,max=60"`
}

type CreateScreeningRequest struct {
	MovieTitle   string    `json:"movie_title" binding:"required,min=1,max=255"`
	AuditoriumID string    `json:"auditorium_id" binding:"required,uuid"`
	StartTime    time.Time `json:"start_time" binding:"required,notpast"`
	EndTime      time.Time `json:"end_time" binding:"required"`
	Format       string    `json:"format" binding:"required,oneof=2D 3D IMAX"`
	BasePrice    float64   `json:"base_price" binding:"required,min=0"`
}

type ScreeningResponse struct {
	ID           string          `json:"id"`
	MovieTitle   string          `json:"movie_title"`
	AuditoriumID string          `json:"auditorium_id"`
	Auditorium   string          `json:"auditorium,omitempty"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      time.Time       `json:"end_time"`
	Format       Format          `json:"format"`
	Status       ScreeningStatus `json:"status"`
	BasePrice    float64         `json:"base_price"`
	CreatedAt    time.Time       `json:"created_at"`
}

type ScreeningListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Format   string `form:"format" binding:"omitempty,oneof=2D 3D IMAX"`
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE CANCELLED FINISHED"`
}

type PaginatedScreenings struct {
	Screenings []ScreeningResponse `json:"screenings"`
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}

func (s *Screening) ToResponse() ScreeningResponse {
	resp := ScreeningResponse{
		ID:           s.ID.String(),
		MovieTitle:   s.MovieTitle,
		AuditoriumID: s.AuditoriumID.String(),
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Format:       s.Format,
		Status:       s.Status,
		BasePrice:    s.BasePrice,
		CreatedAt:    s.CreatedAt,
	}
	if s.Auditorium != nil {
		resp.Auditorium = s.Auditorium.Name
	}
	return resp
}
