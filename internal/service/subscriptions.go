package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/internal/store"
	"github.com/athenkosimagada/careerhive.server/pkg/idx"
)

// SubscriptionService opts users in and out of new-job notifications.
// Unsubscribing flips the active flag rather than deleting the row, so
// resubscribing reuses it.
type SubscriptionService struct {
	Store store.Store
}

// Subscribe enrolls the email for the user. Resubscribing a deactivated
// address reactivates it; an already-active one fails AlreadyExists.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, email string) error {
	existing, err := s.Store.Subscriptions().GetSubscriptionByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.UserID != userID {
			return fmt.Errorf("%w: email belongs to another subscriber", ErrForbidden)
		}
		if existing.Active {
			return fmt.Errorf("%w: already subscribed", ErrAlreadyExists)
		}
		existing.Active = true
		return s.Store.Subscriptions().UpdateSubscription(ctx, existing)

	case errors.Is(err, store.ErrNotFound):
		return s.Store.Subscriptions().CreateSubscription(ctx, domain.Subscription{
			ID:     idx.New().String(),
			UserID: userID,
			Email:  email,
			Active: true,
		})

	default:
		return err
	}
}

// Unsubscribe deactivates the email's subscription. Only its owner may do so.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, email string) error {
	existing, err := s.Store.Subscriptions().GetSubscriptionByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: no subscription for that email", ErrNotFound)
		}
		return err
	}
	if existing.UserID != userID {
		return fmt.Errorf("%w: email belongs to another subscriber", ErrForbidden)
	}
	if !existing.Active {
		return fmt.Errorf("%w: not currently subscribed", ErrInvalidArgument)
	}

	existing.Active = false
	return s.Store.Subscriptions().UpdateSubscription(ctx, existing)
}
