package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"admissions/internal/config"
	"admissions/internal/db"
	"admissions/internal/logging"
	"admissions/internal/model"
	"admissions/internal/repository"
	"admissions/internal/service"
)

//go:embed seed.json
var defaultSeed []byte

// SeedData is the seed document, embedded or fetched from -source.
type SeedData struct {
	Staff         []StaffSeed        `json:"staff"`
	Programs      []ProgramSeed      `json:"programs"`
	Announcements []AnnouncementSeed `json:"announcements"`
}

// StaffSeed is a staff account. Its password comes from SEED_STAFF_PASSWORD.
type StaffSeed struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// ProgramSeed is a program with its fee as a decimal string.
type ProgramSeed struct {
	Name           string `json:"name"`
	Degree         string `json:"degree"`
	ApplicationFee string `json:"application_fee"`
	Deadline       string `json:"deadline"`
	Open           bool   `json:"open"`
}

// AnnouncementSeed is an announcement; an empty audience targets everyone.
type AnnouncementSeed struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Audience    string    `json:"audience"`
	PublishedAt time.Time `json:"published_at"`
}

func main() {
	source := flag.String("source", "", "URL of a seed document (default: embedded data)")
	flag.Parse()

	cfg, err := config.LoadAPI()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	data, err := loadSeed(*source)
	if err != nil {
		logger.Error("load seed data", slog.String("error", err.Error()))
		os.Exit(1)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Error("connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Error("migrate", slog.String("error", err.Error()))
		os.Exit(1)
	}

	password := os.Getenv("SEED_STAFF_PASSWORD")
	if password == "" {
		password = "ChangeMe123!"
		logger.Warn("SEED_STAFF_PASSWORD not set, using the default staff password")
	}

	ctx := context.Background()
	s := seeder{
		roles:         repository.NewRoleRepository(gormDB),
		users:         repository.NewUserRepository(gormDB),
		programs:      service.NewProgramService(repository.NewProgramRepository(gormDB), nil, 0),
		announcements: service.NewAnnouncementService(repository.NewAnnouncementRepository(gormDB)),
		logger:        logger,
	}
	if err := s.run(ctx, data, password); err != nil {
		logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("seed completed")
}

// loadSeed parses the embedded document, or fetches source when set.
func loadSeed(source string) (*SeedData, error) {
	raw := defaultSeed
	if source != "" {
		resp, err := resty.New().SetTimeout(30 * time.Second).R().Get(source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode())
		}
		raw = resp.Body()
	}

	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &data, nil
}

type seeder struct {
	roles         repository.RoleRepository
	users         repository.UserRepository
	programs      service.ProgramService
	announcements service.AnnouncementService
	logger        *slog.Logger
}

func (s seeder) run(ctx context.Context, data *SeedData, password string) error {
	roles := make(map[model.RoleName]*model.RoleRecord)
	for _, name := range []model.RoleName{model.RoleApplicant, model.RoleAdmissionOfficer, model.RoleAdmin} {
		role, err := s.roles.Ensure(ctx, name)
		if err != nil {
			return fmt.Errorf("ensure role %s: %w", name, err)
		}
		roles[name] = role
	}
	s.logger.Info("roles ready", slog.Int("count", len(roles)))

	created, updated, err := s.seedStaff(ctx, data.Staff, roles, password)
	if err != nil {
		return err
	}
	s.logger.Info("staff seeded", slog.Int("created", created), slog.Int("updated", updated))

	programs, err := toPrograms(data.Programs)
	if err != nil {
		return err
	}
	n, err := s.programs.Save(ctx, programs)
	if err != nil {
		return err
	}
	s.logger.Info("programs seeded", slog.Int("count", n))

	published := 0
	for _, a := range toAnnouncements(data.Announcements) {
		ok, err := s.announcements.Publish(ctx, &a)
		if err != nil {
			return err
		}
		if ok {
			published++
		}
	}
	s.logger.Info("announcements seeded", slog.Int("published", published))
	return nil
}

func (s seeder) seedStaff(ctx context.Context, staff []StaffSeed, roles map[model.RoleName]*model.RoleRecord, password string) (created, updated int, err error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, 0, fmt.Errorf("hash password: %w", err)
	}

	for _, item := range staff {
		name := model.ParseRoleName(item.Role)
		role, ok := roles[name]
		if !ok || !name.IsStaff() {
			s.logger.Warn("skipping staff entry with invalid role", slog.String("email", item.Email), slog.String("role", item.Role))
			continue
		}
		email := strings.ToLower(strings.TrimSpace(item.Email))

		existing, err := s.users.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, updated, fmt.Errorf("find %s: %w", email, err)
		}
		if existing != nil {
			existing.FullName = item.FullName
			existing.RoleID = role.ID
			if err := s.users.Save(ctx, existing); err != nil {
				return created, updated, fmt.Errorf("update %s: %w", email, err)
			}
			updated++
			continue
		}

		user := &model.User{
			FullName:     item.FullName,
			Email:        email,
			PasswordHash: string(hash),
			RoleID:       role.ID,
			Verified:     true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return created, updated, fmt.Errorf("create %s: %w", email, err)
		}
		created++
	}
	return created, updated, nil
}

func toPrograms(items []ProgramSeed) ([]model.Program, error) {
	out := make([]model.Program, 0, len(items))
	for _, item := range items {
		fee, err := decimal.NewFromString(item.ApplicationFee)
		if err != nil {
			return nil, fmt.Errorf("program %s: invalid fee %q: %w", item.Name, item.ApplicationFee, err)
		}
		if fee.IsNegative() {
			return nil, fmt.Errorf("program %s: negative fee", item.Name)
		}
		deadline, err := time.Parse(time.DateOnly, item.Deadline)
		if err != nil {
			return nil, fmt.Errorf("program %s: invalid deadline %q: %w", item.Name, item.Deadline, err)
		}
		out = append(out, model.Program{
			Name:           item.Name,
			Degree:         item.Degree,
			ApplicationFee: fee,
			Deadline:       deadline,
			Open:           item.Open,
		})
	}
	return out, nil
}

func toAnnouncements(items []AnnouncementSeed) []model.Announcement {
	out := make([]model.Announcement, 0, len(items))
	for _, item := range items {
		out = append(out, model.Announcement{
			Title:       item.Title,
			Body:        item.Body,
			Audience:    model.ParseRoleName(item.Audience),
			PublishedAt: item.PublishedAt,
		})
	}
	return out
}
