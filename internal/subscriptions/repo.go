package subscriptions

import (
	"context"

	"github.com/alonsohii/Suscribe/pkg/db/models"
	"github.com/alonsohii/Suscribe/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes subscription persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a subscriptions repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repo to an open transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new subscription row.
func (r *Repository) Create(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// Save writes the full subscription row back.
func (r *Repository) Save(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

// FindByID loads a subscription by its primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindCurrentByUserID returns the user's live subscription, meaning the one
// row that is not Cancelled. The partial unique index guarantees at most one.
func (r *Repository) FindCurrentByUserID(ctx context.Context, userID int64) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, enums.SubscriptionStatusCancelled).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindLatestByUserID returns the user's most recent subscription regardless
// of status.
func (r *Repository) FindLatestByUserID(ctx context.Context, userID int64) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// SubscriptionWithUser pairs a subscription row with its owner.
type SubscriptionWithUser struct {
	Subscription models.Subscription `gorm:"embedded"`
	UserEmail    string
}

// FindLatestWithUser returns the user's most recent subscription joined with
// the owning user's email.
func (r *Repository) FindLatestWithUser(ctx context.Context, userID int64) (*SubscriptionWithUser, error) {
	var row SubscriptionWithUser
	err := r.db.WithContext(ctx).
		Table("subscriptions").
		Select("subscriptions.*, users.email AS user_email").
		Joins("JOIN users ON users.id = subscriptions.user_id").
		Where("subscriptions.user_id = ?", userID).
		Order("subscriptions.id DESC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListWithUsers returns every subscription joined with its owner's email,
// newest first.
func (r *Repository) ListWithUsers(ctx context.Context) ([]SubscriptionWithUser, error) {
	var rows []SubscriptionWithUser
	err := r.db.WithContext(ctx).
		Table("subscriptions").
		Select("subscriptions.*, users.email AS user_email").
		Joins("JOIN users ON users.id = subscriptions.user_id").
		Order("subscriptions.id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
