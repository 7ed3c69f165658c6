package lead

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var (
	ErrValidation = errors.New("validation error")
	ErrBadStatus  = errors.New("invalid lead status")
)

// validStatuses is the pipeline a lead moves through. There is no enforced
// ordering; sales flows skip stages all the time.
var validStatuses = map[string]bool{
	"new":       true,
	"contacted": true,
	"qualified": true,
	"won":       true,
	"lost":      true,
}

type Lead struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Repository interface {
	Save(ctx context.Context, l *Lead) error
	Get(ctx context.Context, ownerID, id string) (*Lead, error)
	List(ctx context.Context, ownerID, status string) ([]Lead, error)
	Update(ctx context.Context, l *Lead) error
	Delete(ctx context.Context, ownerID, id string) error
	Count(ctx context.Context) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, l *Lead) error {
	if err := validate(l); err != nil {
		return err
	}
	if l.Status == "" {
		l.Status = "new"
	}
	if err := s.repo.Save(ctx, l); err != nil {
		return err
	}
	slog.InfoContext(ctx, "lead created", "lead_id", l.ID, "owner_id", l.OwnerID)
	return nil
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (*Lead, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List returns the owner's leads, optionally filtered by pipeline status.
func (s *Service) List(ctx context.Context, ownerID, status string) ([]Lead, error) {
	if status != "" && !validStatuses[status] {
		return nil, fmt.Errorf("%w: %q", ErrBadStatus, status)
	}
	return s.repo.List(ctx, ownerID, status)
}

// Update overwrites the mutable fields of an existing lead. The row must
// belong to the owner; the repo enforces the scope.
func (s *Service) Update(ctx context.Context, l *Lead) error {
	if err := validate(l); err != nil {
		return err
	}
	current, err := s.repo.Get(ctx, l.OwnerID, l.ID)
	if err != nil {
		return err
	}
	if l.Status == "" {
		l.Status = current.Status
	}
	return s.repo.Update(ctx, l)
}

func (s *Service) UpdateStatus(ctx context.Context, ownerID, id, status string) (*Lead, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("%w: %q", ErrBadStatus, status)
	}
	l, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	l.Status = status
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.repo.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, ownerID, id)
}

func validate(l *Lead) error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(l.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !strings.Contains(l.Email, "@") {
		return fmt.Errorf("%w: email %q is not valid", ErrValidation, l.Email)
	}
	if l.Status != "" && !validStatuses[l.Status] {
		return fmt.Errorf("%w: %q", ErrBadStatus, l.Status)
	}
	return nil
}
