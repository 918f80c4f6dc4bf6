package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/ContentAI/internal/models"
)

// DefaultDurationDays is the premium length when the request names none.
const DefaultDurationDays = 30

const maxDurationDays = 366

// SubscriptionService reads and changes plans.
type SubscriptionService struct {
	repo UserRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewSubscriptionService(repo UserRepository, log *zap.Logger) *SubscriptionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SubscriptionService{repo: repo, log: log, now: time.Now}
}

// Status returns the user with a lapsed premium plan already moved to free.
func (s *SubscriptionService) Status(ctx context.Context, userID int64) (models.User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if u.SubscriptionType == models.PlanPremium && !u.Active(s.now()) {
		if err := s.repo.UpdateSubscription(ctx, u.ID, models.PlanFree, nil); err != nil {
			return models.User{}, err
		}
		s.log.Info("premium subscription lapsed", zap.Int64("user_id", u.ID))
		u.SubscriptionType = models.PlanFree
		u.SubscriptionEnd = nil
	}
	return u, nil
}

// Update switches the user to plan. Premium runs for days (DefaultDurationDays
// when zero) from now; free clears the end date.
func (s *SubscriptionService) Update(ctx context.Context, userID int64, plan string, days int) (models.User, error) {
	var end *time.Time
	switch plan {
	case models.PlanFree:
	case models.PlanPremium:
		if days == 0 {
			days = DefaultDurationDays
		}
		if days < 0 || days > maxDurationDays {
			return models.User{}, invalid("duration", "must be between 1 and 366 days")
		}
		t := s.now().UTC().Add(time.Duration(days) * 24 * time.Hour)
		end = &t
	default:
		return models.User{}, invalid("subscription_type", "must be free or premium")
	}

	if err := s.repo.UpdateSubscription(ctx, userID, plan, end); err != nil {
		return models.User{}, err
	}
	s.log.Info("subscription updated", zap.Int64("user_id", userID), zap.String("plan", plan))
	return s.repo.GetUserByID(ctx, userID)
}
