// AngelaMos | 2026
// service.go

package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/angelamos/learnify/internal/core"
	"github.com/angelamos/learnify/internal/course"
	"github.com/angelamos/learnify/internal/payment"
	"github.com/angelamos/learnify/internal/user"
)

// ErrAlreadyPurchased is returned when the user already holds a
// completed purchase for the course.
var ErrAlreadyPurchased = errors.New("course already purchased")

type Service struct {
	repo      Repository
	courses   course.Repository
	users     user.Repository
	processor payment.Processor
	clientURL string
}

func NewService(
	repo Repository,
	courses course.Repository,
	users user.Repository,
	processor payment.Processor,
	clientURL string,
) *Service {
	return &Service{
		repo:      repo,
		courses:   courses,
		users:     users,
		processor: processor,
		clientURL: clientURL,
	}
}

// Checkout creates a pending purchase and a hosted checkout session.
// The course price is copied onto the purchase so the charge is fixed
// at checkout time.
func (s *Service) Checkout(
	ctx context.Context,
	userID uuid.UUID,
	req CheckoutRequest,
) (*CheckoutResponse, error) {
	c, err := s.courses.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	purchased, err := s.repo.HasCompleted(ctx, userID, c.ID)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if purchased {
		return nil, ErrAlreadyPurchased
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	method := req.PaymentMethod
	if method == "" {
		method = "card"
	}

	p := &Purchase{
		UserID:        userID,
		CourseID:      c.ID,
		Amount:        c.Price,
		Status:        StatusPending,
		PaymentMethod: method,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	session, err := s.processor.CreateCheckoutSession(ctx, payment.CheckoutInput{
		PurchaseID:  p.ID.String(),
		CourseID:    c.ID.String(),
		CourseTitle: c.Title,
		Amount:      c.Price,
		UserEmail:   u.Email,
		SuccessURL:  s.clientURL + "/course-progress/" + c.ID.String(),
		CancelURL:   s.clientURL + "/course-detail/" + c.ID.String(),
	})
	if err != nil {
		return nil, core.ExternalServiceError("payment", err)
	}

	if err := s.repo.SetSession(ctx, p.ID, session.SessionID); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	return &CheckoutResponse{
		PurchaseID:  p.ID,
		RedirectURL: session.RedirectURL,
	}, nil
}

// HandleWebhook applies a verified payment event. Unknown event types
// are acknowledged and ignored so the provider does not keep retrying.
func (s *Service) HandleWebhook(
	ctx context.Context,
	event *payment.WebhookEvent,
) error {
	switch event.Type {
	case payment.EventCheckoutCompleted:
		p, err := s.repo.MarkCompletedAndEnroll(ctx, event.Data.SessionID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				// Replay or unknown session; nothing to do.
				slog.InfoContext(ctx, "webhook for non-pending session",
					"session_id", event.Data.SessionID,
				)
				return nil
			}
			return fmt.Errorf("handle webhook: %w", err)
		}

		slog.InfoContext(ctx, "purchase completed",
			"purchase_id", p.ID,
			"course_id", p.CourseID,
			"user_id", p.UserID,
		)
		return nil

	case payment.EventCheckoutFailed:
		err := s.repo.MarkFailed(ctx, event.Data.SessionID)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("handle webhook: %w", err)
		}
		return nil

	default:
		slog.DebugContext(ctx, "ignoring webhook event", "type", event.Type)
		return nil
	}
}

// Status reports the course together with whether the caller holds a
// completed purchase for it.
func (s *Service) Status(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (*StatusResponse, error) {
	c, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("purchase status: %w", err)
	}

	purchased, err := s.repo.HasCompleted(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("purchase status: %w", err)
	}

	return &StatusResponse{Course: c, IsPurchased: purchased}, nil
}

func (s *Service) PurchasedCourses(
	ctx context.Context,
	userID uuid.UUID,
) ([]PurchasedCourse, error) {
	return s.repo.ListPurchasedCourses(ctx, userID)
}
