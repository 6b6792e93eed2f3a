package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"cinebook/internal/auth"
	"cinebook/internal/screenings"
	"cinebook/internal/seats"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/database"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a development database with an admin, a few customers, two
// auditoriums and a week of screenings with full seat inventories.
func main() {
	fmt.Println("Starting cinebook database seeder...")

	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s := &seeder{db: db, ctx: ctx}

	fmt.Println("Cleaning database...")
	if err := s.clean(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding users...")
	if err := s.seedUsers(); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	fmt.Println("Seeding auditoriums and screenings...")
	if err := s.seedCatalog(); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	fmt.Println("Done.")
}

type seeder struct {
	db  *database.DB
	ctx context.Context
}

func (s *seeder) clean() error {
	gdb := s.db.GetPostgreSQL()
	for _, table := range []string{"payments", "booking_seats", "bookings", "seats", "screenings", "auditoriums", "users"} {
		if err := gdb.Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

func (s *seeder) seedUsers() error {
	repo := auth.NewRepository(s.db.GetPostgreSQL())

	users := []struct {
		name     string
		email    string
		password string
		role     auth.Role
	}{
		{"Admin", "admin@cinebook.local", "admin123", auth.RoleAdmin},
		{"Alice Walker", "alice@example.com", "password1", auth.RoleUser},
		{"Bob Tran", "bob@example.com", "password2", auth.RoleUser},
		{"Chitra Rao", "chitra@example.com", "password3", auth.RoleUser},
	}

	for _, u := range users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if err := repo.CreateUser(s.ctx, &auth.User{
			Name:     u.name,
			Email:    u.email,
			Password: string(hashed),
			Role:     u.role,
		}); err != nil {
			return fmt.Errorf("create user %s: %w", u.email, err)
		}
		fmt.Printf("  user %s (%s)\n", u.email, u.role)
	}
	return nil
}

func (s *seeder) seedCatalog() error {
	screeningRepo := screenings.NewRepository(s.db.GetPostgreSQL())
	seatRepo := seats.NewRepository(s.db.GetPostgreSQL())

	auditoriums := []screenings.Auditorium{
		{Name: "Screen 1", Rows: 10, SeatsPerRow: 12},
		{Name: "Screen 2 (IMAX)", Rows: 14, SeatsPerRow: 18},
	}
	for i := range auditoriums {
		if err := screeningRepo.CreateAuditorium(s.ctx, &auditoriums[i]); err != nil {
			return fmt.Errorf("create auditorium %s: %w", auditoriums[i].Name, err)
		}
		fmt.Printf("  auditorium %s (%d seats)\n", auditoriums[i].Name, auditoriums[i].Rows*auditoriums[i].SeatsPerRow)
	}

	admin, err := auth.NewRepository(s.db.GetPostgreSQL()).GetUserByEmail(s.ctx, "admin@cinebook.local")
	if err != nil {
		return err
	}

	movies := []struct {
		title    string
		format   screenings.Format
		price    float64
		runtime  time.Duration
		audIndex int
	}{
		{"The Long Winter", screenings.Format2D, 9.50, 2 * time.Hour, 0},
		{"Starfall", screenings.Format3D, 12.00, 2*time.Hour + 20*time.Minute, 0},
		{"Ocean Deep", screenings.FormatIMAX, 16.50, 2*time.Hour + 45*time.Minute, 1},
	}

	base := time.Now().Truncate(24 * time.Hour)
	for day := 1; day <= 7; day++ {
		for i, m := range movies {
			start := base.Add(time.Duration(day)*24*time.Hour + time.Duration(14+i*3)*time.Hour)
			aud := auditoriums[m.audIndex]
			screening := &screenings.Screening{
				MovieTitle:   m.title,
				AuditoriumID: aud.ID,
				StartTime:    start,
				EndTime:      start.Add(m.runtime),
				Format:       m.format,
				Status:       screenings.StatusActive,
				BasePrice:    m.price,
				CreatedBy:    admin.ID,
			}
			if err := screeningRepo.CreateScreening(s.ctx, screening); err != nil {
				return fmt.Errorf("create screening %s: %w", m.title, err)
			}

			if err := materializeSeats(s.ctx, seatRepo, screening, aud); err != nil {
				return err
			}
		}
	}
	fmt.Printf("  %d screenings over 7 days\n", 7*len(movies))
	return nil
}

func materializeSeats(ctx context.Context, repo seats.Repository, screening *screenings.Screening, aud screenings.Auditorium) error {
	// the HTTP server rebuilds its own ledger at startup, the seeder
	// only needs the durable rows
	rows := make([]seats.Seat, 0, aud.Rows*aud.SeatsPerRow)
	for r := 0; r < aud.Rows; r++ {
		label := string(rune('A' + r))
		if r >= 26 {
			label = string(rune('A'+r/26-1)) + string(rune('A'+r%26))
		}
		for n := 1; n <= aud.SeatsPerRow; n++ {
			rows = append(rows, seats.Seat{
				ScreeningID: screening.ID,
				RowLabel:    label,
				Number:      n,
				Status:      seats.StatusAvailable,
			})
		}
	}
	if err := repo.CreateSeats(ctx, rows); err != nil {
		return fmt.Errorf("create seats for %s: %w", screening.MovieTitle, err)
	}
	return nil
}
