package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartSubscriptionCleaner moves users whose premium plan has lapsed back to
// the free plan every interval until ctx is done.
func StartSubscriptionCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := db.ExecContext(ctx, `
                    UPDATE users
                       SET subscription_type = 'free', subscription_end = NULL
                     WHERE subscription_type = 'premium'
                       AND subscription_end < $1
                `, time.Now().UTC())
				if err != nil {
					log.Error("failed to downgrade lapsed subscriptions", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("downgraded lapsed subscriptions", zap.Int64("users", rows))
				}
			}
		}
	}()
}
