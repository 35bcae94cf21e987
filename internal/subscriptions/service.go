package subscriptions

import (
	"context"

	"github.com/alonsohii/Suscribe/internal/messaging"
	"github.com/alonsohii/Suscribe/internal/users"
	"github.com/alonsohii/Suscribe/pkg/db"
	"github.com/alonsohii/Suscribe/pkg/enums"
	pkgerrors "github.com/alonsohii/Suscribe/pkg/errors"
	"github.com/alonsohii/Suscribe/pkg/logger"
)

// Subscribe outcome strings carried in the accepted response body.
const (
	StatusProcessing        = "processing"
	StatusUserNotFound      = "user not found"
	StatusAlreadySubscribed = "already subscribed"
)

// Publisher enqueues one message onto a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, body any) error
}

// Service defines the synchronous subscription operations.
type Service interface {
	Subscribe(ctx context.Context, req SubscribeRequest) (*SubscribeResponse, error)
	Get(ctx context.Context, userID int64) (*SubscriptionDTO, error)
	GetAll(ctx context.Context) ([]SubscriptionDTO, error)
	Cancel(ctx context.Context, userID int64) (*SubscriptionDTO, error)
}

type service struct {
	repo      *Repository
	usersRepo *users.Repository
	publisher Publisher
	queue     string
	logg      *logger.Logger
}

// NewService wires subscription dependencies. The queue names the destination
// for activation requests.
func NewService(repo *Repository, usersRepo *users.Repository, publisher Publisher, queue string, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriptions repository required")
	}
	if usersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if publisher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "publisher required")
	}
	if queue == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscription queue name required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, usersRepo: usersRepo, publisher: publisher, queue: queue, logg: logg}, nil
}

// Subscribe validates the request against current state and enqueues an
// activation message. Unknown users and duplicate subscriptions are reported
// in the response body rather than as errors; the request itself was accepted.
// Activation happens asynchronously, so the final state is not known here.
func (s *service) Subscribe(ctx context.Context, req SubscribeRequest) (*SubscribeResponse, error) {
	ctx = s.logg.WithUserID(ctx, req.UserID)

	if _, err := s.usersRepo.FindByID(ctx, req.UserID); err != nil {
		if db.IsNotFound(err) {
			return &SubscribeResponse{Status: StatusUserNotFound}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up user")
	}

	if _, err := s.repo.FindCurrentByUserID(ctx, req.UserID); err == nil {
		return &SubscribeResponse{Status: StatusAlreadySubscribed}, nil
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking current subscription")
	}

	msg := messaging.SubscriptionCreatedMessage{
		UserID:        req.UserID,
		PaymentMethod: req.PaymentMethod,
	}
	if err := s.publisher.Publish(ctx, s.queue, msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enqueuing subscription request")
	}

	s.logg.Info(ctx, "subscription request enqueued")
	return &SubscribeResponse{Status: StatusProcessing}, nil
}

// Get returns the user's most recent subscription with its owner's email.
func (s *service) Get(ctx context.Context, userID int64) (*SubscriptionDTO, error) {
	row, err := s.repo.FindLatestWithUser(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading subscription")
	}

	dto := fromModel(&row.Subscription)
	dto.UserEmail = row.UserEmail
	return dto, nil
}

// GetAll returns every subscription with owner emails, newest first.
func (s *service) GetAll(ctx context.Context) ([]SubscriptionDTO, error) {
	rows, err := s.repo.ListWithUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing subscriptions")
	}

	dtos := make([]SubscriptionDTO, 0, len(rows))
	for i := range rows {
		dto := fromModel(&rows[i].Subscription)
		dto.UserEmail = rows[i].UserEmail
		dtos = append(dtos, *dto)
	}
	return dtos, nil
}

// Cancel moves the user's latest subscription to Cancelled. Cancelling an
// already cancelled subscription is a no-op success.
func (s *service) Cancel(ctx context.Context, userID int64) (*SubscriptionDTO, error) {
	ctx = s.logg.WithUserID(ctx, userID)

	sub, err := s.repo.FindLatestByUserID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading subscription")
	}

	if sub.Status == enums.SubscriptionStatusCancelled {
		return fromModel(sub), nil
	}

	if err := sub.Cancel(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "cancelling subscription")
	}
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving subscription")
	}

	s.logg.Info(ctx, "subscription cancelled")
	return fromModel(sub), nil
}
