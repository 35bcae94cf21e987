package users

import (
	"context"
	"strings"

	"github.com/alonsohii/Suscribe/pkg/db"
	pkgerrors "github.com/alonsohii/Suscribe/pkg/errors"
	"github.com/alonsohii/Suscribe/pkg/logger"
)

const (
	msgRegistered        = "User registered successfully"
	msgAlreadyRegistered = "User already registered"
)

// Service defines registration operations.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService wires user dependencies.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Register creates the user unless the email is already taken, in which case
// it reports the existing owner. The unique index on email decides races; a
// concurrent insert that loses falls back to the winner's row.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return &RegisterResponse{UserID: existing.ID, Message: msgAlreadyRegistered}, nil
	}
	if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up email")
	}

	user, err := s.repo.Create(ctx, name, email)
	if err != nil {
		if db.IsUniqueViolation(err) {
			winner, findErr := s.repo.FindByEmail(ctx, email)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "resolving registration race")
			}
			return &RegisterResponse{UserID: winner.ID, Message: msgAlreadyRegistered}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating user")
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID), "user registered")
	return &RegisterResponse{UserID: user.ID, Message: msgRegistered}, nil
}
