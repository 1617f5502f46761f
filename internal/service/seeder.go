package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	mrand "math/rand/v2"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/backoffice/api/internal/model"
)

// MaxSeedCount bounds a single seeding request per entity
const MaxSeedCount = 1000

// DefaultSeedPassword is the password of every seeded user
const DefaultSeedPassword = "password"

// SeederService generates mock data for testing and development
type SeederService struct {
	customers CustomerRepository
	users     UserRepository
	enabled   bool
}

// SeederServiceConfig holds the dependencies of SeederService
type SeederServiceConfig struct {
	CustomerRepo CustomerRepository
	UserRepo     UserRepository
	Enabled      bool
}

// NewSeederService creates a new seeder service
func NewSeederService(cfg SeederServiceConfig) *SeederService {
	return &SeederService{
		customers: cfg.CustomerRepo,
		users:     cfg.UserRepo,
		enabled:   cfg.Enabled,
	}
}

// SeedRequest configures a seeding run
type SeedRequest struct {
	Customers int `json:"customers"`
	Users     int `json:"users"`
	// Prefix for seeded user emails to identify them for cleanup
	Prefix string `json:"prefix,omitempty"`
}

// SeedResult contains the results of a seeding operation
type SeedResult struct {
	Customers   int     `json:"customers"`
	Users       int     `json:"users"`
	CustomerIDs []int64 `json:"customer_ids"`
	UserIDs     []int64 `json:"user_ids"`
	Duration    int64   `json:"duration_ms"`
}

// Sample data for realistic generation
var (
	firstNames = []string{
		"Emma", "Liam", "Olivia", "Noah", "Ava", "Ethan", "Sophia", "Mason",
		"Isabella", "William", "Mia", "James", "Charlotte", "Benjamin", "Amelia",
		"Lucas", "Harper", "Henry", "Evelyn", "Alexander", "Abigail", "Michael",
		"Emily", "Daniel", "Elizabeth", "Jacob", "Sofia", "Logan", "Avery", "Jackson",
		"Jane", "Janet", "Maria", "Jose", "Andres", "Liza", "Paolo", "Bea",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
		"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
		"Santos", "Reyes", "Cruz", "Bautista", "Ocampo", "Mendoza", "Villanueva",
		"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson",
	}
	streets = []string{
		"Rizal Ave", "Mabini St", "Bonifacio Dr", "Main St", "Oak Ave", "Elm St",
		"Ayala Ave", "Katipunan Ave", "Maple Rd", "Pine St", "Lakeview Dr",
	}
	places = []struct{ City, Province, Zip string }{
		{"Makati", "Metro Manila", "1226"},
		{"Quezon City", "Metro Manila", "1100"},
		{"Cebu City", "Cebu", "6000"},
		{"Davao City", "Davao del Sur", "8000"},
		{"Baguio", "Benguet", "2600"},
		{"Iloilo City", "Iloilo", "5000"},
		{"Springfield", "Illinois", "62701"},
		{"Portland", "Oregon", "97201"},
		{"Austin", "Texas", "73301"},
	}
)

// Seed creates the requested number of fake customers and users
func (s *SeederService) Seed(ctx context.Context, req SeedRequest) (*SeedResult, error) {
	if !s.enabled {
		return nil, ErrSeedDisabled
	}
	if req.Customers < 0 || req.Customers > MaxSeedCount || req.Users < 0 || req.Users > MaxSeedCount {
		return nil, fmt.Errorf("%w: counts must be between 0 and %d", ErrSeedCountInvalid, MaxSeedCount)
	}
	if req.Prefix == "" {
		req.Prefix = "seed_"
	}

	start := time.Now()
	result := &SeedResult{
		CustomerIDs: make([]int64, 0, req.Customers),
		UserIDs:     make([]int64, 0, req.Users),
	}

	for i := 0; i < req.Customers; i++ {
		customer := fakeCustomer()
		if err := s.customers.Create(ctx, customer); err != nil {
			return nil, fmt.Errorf("seed customer %d: %w", i+1, err)
		}
		result.CustomerIDs = append(result.CustomerIDs, customer.ID)
	}

	if req.Users > 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(DefaultSeedPassword), bcrypt.MinCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		for i := 0; i < req.Users; i++ {
			first, last := pick(firstNames), pick(lastNames)
			user := &model.User{
				Name:         first + " " + last,
				Email:        strings.ToLower(fmt.Sprintf("%s%s.%s.%s@test.local", req.Prefix, first, last, randomID())),
				PasswordHash: string(hash),
				Role:         model.UserRoleUser,
			}
			if err := s.users.Create(ctx, user); err != nil {
				return nil, fmt.Errorf("seed user %d: %w", i+1, err)
			}
			result.UserIDs = append(result.UserIDs, user.ID)
		}
	}

	result.Customers = len(result.CustomerIDs)
	result.Users = len(result.UserIDs)
	result.Duration = time.Since(start).Milliseconds()

	slog.InfoContext(ctx, "seeded data",
		slog.Int("customers", result.Customers),
		slog.Int("users", result.Users),
		slog.Int64("duration_ms", result.Duration),
	)
	return result, nil
}

// SeedIfEmpty seeds only when both tables are empty. Used on startup.
func (s *SeederService) SeedIfEmpty(ctx context.Context, req SeedRequest) (*SeedResult, error) {
	nc, err := s.customers.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	nu, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if nc > 0 || nu > 0 {
		return &SeedResult{CustomerIDs: []int64{}, UserIDs: []int64{}}, nil
	}
	return s.Seed(ctx, req)
}

func fakeCustomer() *model.Customer {
	first, last := pick(firstNames), pick(lastNames)
	place := places[mrand.IntN(len(places))]

	email := strings.ToLower(fmt.Sprintf("%s.%s%d@example.com", first, last, mrand.IntN(1000)))
	phone := fmt.Sprintf("+63 9%02d %03d %04d", mrand.IntN(100), mrand.IntN(1000), mrand.IntN(10000))
	address := fmt.Sprintf("%d %s", 1+mrand.IntN(999), pick(streets))

	return &model.Customer{
		Name:     first + " " + last,
		Email:    &email,
		Phone:    &phone,
		Address:  &address,
		City:     &place.City,
		Province: &place.Province,
		Zip:      &place.Zip,
	}
}

func pick(values []string) string {
	return values[mrand.IntN(len(values))]
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
