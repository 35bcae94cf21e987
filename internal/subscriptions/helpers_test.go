package subscriptions

import (
	"context"
	"fmt"
	"testing"

	"github.com/alonsohii/Suscribe/pkg/db/models"
	"github.com/alonsohii/Suscribe/pkg/enums"
	"github.com/alonsohii/Suscribe/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSubscriptionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	usersTable := `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`
	subscriptionsTable := `
CREATE TABLE IF NOT EXISTS subscriptions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'Pending',
  created_at DATETIME
);`
	liveIndex := `
CREATE UNIQUE INDEX IF NOT EXISTS uq_subscriptions_user_current
  ON subscriptions (user_id)
  WHERE status <> 'Cancelled';`

	require.NoError(t, db.Exec(usersTable).Error)
	require.NoError(t, db.Exec(subscriptionsTable).Error)
	require.NoError(t, db.Exec(liveIndex).Error)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Test User", Email: email}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedSubscription(t *testing.T, db *gorm.DB, userID int64, status enums.SubscriptionStatus) *models.Subscription {
	t.Helper()
	sub := &models.Subscription{UserID: userID, Status: status}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

// fakePublisher records published messages and optionally fails.
type fakePublisher struct {
	published []publishedMessage
	err       error
}

type publishedMessage struct {
	queue string
	body  any
}

func (p *fakePublisher) Publish(_ context.Context, queue string, body any) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, publishedMessage{queue: queue, body: body})
	return nil
}

// testTxRunner satisfies TxRunner over a plain test database handle.
type testTxRunner struct {
	db *gorm.DB
}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
