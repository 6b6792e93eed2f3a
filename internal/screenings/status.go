package screenings

// Format is the projection format of a screening
type Format string

const (
	Format2D   Format = "2D"
	Format3D   Format = "3D"
	FormatIMAX Format = "IMAX"
)

func IsValidFormat(f string) bool {
	switch Format(f) {
	case Format2D, Format3D, FormatIMAX:
		return true
	}
	return false
}

// ScreeningStatus tracks the lifecycle of a screening
type ScreeningStatus string

const (
	StatusActive    ScreeningStatus = "ACTIVE"
	StatusCancelled ScreeningStatus = "CANCELLED"
	StatusFinished  ScreeningStatus = "FINISHED"
)

// IsBookable reports whether new bookings may target this screening
func (s ScreeningStatus) IsBookable() bool {
	return s == StatusActive
}
