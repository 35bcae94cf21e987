package subscriptions

import (
	"context"
	"testing"

	"github.com/alonsohii/Suscribe/internal/messaging"
	"github.com/alonsohii/Suscribe/internal/users"
	"github.com/alonsohii/Suscribe/pkg/enums"
	pkgerrors "github.com/alonsohii/Suscribe/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, db *gorm.DB, publisher Publisher) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), users.NewRepository(db), publisher, "subscription-queue", testLogger())
	require.NoError(t, err)
	return svc
}

func TestSubscribeEnqueuesActivationMessage(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	user := seedUser(t, db, "ada@example.com")
	publisher := &fakePublisher{}
	svc := newTestService(t, db, publisher)

	resp, err := svc.Subscribe(context.Background(), SubscribeRequest{
		UserID:        user.ID,
		PaymentMethod: "credit_card",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, resp.Status)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, "subscription-queue", publisher.published[0].queue)
	msg, ok := publisher.published[0].body.(messaging.SubscriptionCreatedMessage)
	require.True(t, ok)
	assert.Equal(t, user.ID, msg.UserID)
	assert.Equal(t, "credit_card", msg.PaymentMethod)
}

func TestSubscribeUnknownUser(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	publisher := &fakePublisher{}
	svc := newTestService(t, db, publisher)

	resp, err := svc.Subscribe(context.Background(), SubscribeRequest{
		UserID:        999,
		PaymentMethod: "credit_card",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusUserNotFound, resp.Status)
	assert.Empty(t, publisher.published)
}

func TestSubscribeAlreadySubscribed(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	user := seedUser(t, db, "ada@example.com")
	seedSubscription(t, db, user.ID, enums.SubscriptionStatusActive)
	publisher := &fakePublisher{}
	svc := newTestService(t, db, publisher)

	resp, err := svc.Subscribe(context.Background(), SubscribeRequest{
		UserID:        user.ID,
		PaymentMethod: "credit_card",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadySubscribed, resp.Status)
	assert.Empty(t, publisher.published)
}

func TestSubscribeAfterCancelEnqueuesAgain(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	user := seedUser(t, db, "ada@example.com")
	seedSubscription(t, db, user.ID, enums.SubscriptionStatusCancelled)
	publisher := &fakePublisher{}
	svc := newTestService(t, db, publisher)

	resp, err := svc.Subscribe(context.Background(), SubscribeRequest{
		UserID:        user.ID,
		PaymentMethod: "paypal",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, resp.Status)
	assert.Len(t, publisher.published, 1)
}

func TestSubscribePublishFailureIsDependencyError(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	user := seedUser(t, db, "ada@example.com")
	publisher := &fakePublisher{err: assert.AnError}
	svc := newTestService(t, db, publisher)

	_, err := svc.Subscribe(context.Background(), SubscribeRequest{
		UserID:        user.ID,
		PaymentMethod: "credit_card",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestGetReturnsLatestSubscriptionWithEmail(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	user := seedUser(t, db, "ada@example.com")
	seedSubscription(t, db, user.ID, enums.SubscriptionStatusCancelled)
	latest := seedSubscription(t, db, user.ID, enums.SubscriptionStatusActive)
	svc := newTestService(t, db, &fakePublisher{})

	dto, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, dto.SubscriptionID)
	assert.Equal(t, user.ID, dto.UserID)
	assert.Equal(t, "ada@example.com", dto.UserEmail)
	assert.Equal(t, enums.SubscriptionStatusActive, dto.Status)
}

func TestGetUnknownUserIsNotFound(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	svc := newTestService(t, db, &fakePublisher{})

	_, err := svc.Get(context.Background(), 42)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetAllReturnsNewestFirst(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	ada := seedUser(t, db, "ada@example.com")
	grace := seedUser(t, db, "grace@example.com")
	seedSubscription(t, db, ada.ID, enums.SubscriptionStatusActive)
	seedSubscription(t, db, grace.ID, enums.SubscriptionStatusPending)
	svc := newTestService(t, db, &fakePublisher{})

	dtos, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, "grace@example.com", dtos[0].UserEmail)
	assert.Equal(t, "ada@example.com", dtos[1].UserEmail)
}

func TestCancelPendingSubscription(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	user := seedUser(t, db, "ada@example.com")
	seedSubscription(t, db, user.ID, enums.SubscriptionStatusPending)
	svc := newTestService(t, db, &fakePublisher{})

	dto, err := svc.Cancel(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SubscriptionStatusCancelled, dto.Status)
}

func TestCancelIsIdempotent(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	user := seedUser(t, db, "ada@example.com")
	seedSubscription(t, db, user.ID, enums.SubscriptionStatusCancelled)
	svc := newTestService(t, db, &fakePublisher{})

	dto, err := svc.Cancel(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SubscriptionStatusCancelled, dto.Status)
}

func TestCancelPaymentFailedClearsTheWayToResubscribe(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	user := seedUser(t, db, "ada@example.com")
	seedSubscription(t, db, user.ID, enums.SubscriptionStatusPaymentFailed)
	publisher := &fakePublisher{}
	svc := newTestService(t, db, publisher)

	dto, err := svc.Cancel(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SubscriptionStatusCancelled, dto.Status)

	resp, err := svc.Subscribe(context.Background(), SubscribeRequest{
		UserID:        user.ID,
		PaymentMethod: "credit_card",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, resp.Status)
	assert.Len(t, publisher.published, 1)
}

func TestCancelMissingSubscriptionIsNotFound(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	svc := newTestService(t, db, &fakePublisher{})

	_, err := svc.Cancel(context.Background(), 42)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
