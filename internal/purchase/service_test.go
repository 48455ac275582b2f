// AngelaMos | 2026
// service_test.go

package purchase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/learnify/internal/core"
	"github.com/angelamos/learnify/internal/course"
	"github.com/angelamos/learnify/internal/payment"
	"github.com/angelamos/learnify/internal/user"
)

type fakeRepo struct {
	Repository
	purchases map[uuid.UUID]*Purchase
	enrolled  map[[2]uuid.UUID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		purchases: map[uuid.UUID]*Purchase{},
		enrolled:  map[[2]uuid.UUID]bool{},
	}
}

func (f *fakeRepo) Create(_ context.Context, p *Purchase) error {
	p.ID = uuid.New()
	f.purchases[p.ID] = p
	return nil
}

func (f *fakeRepo) SetSession(
	_ context.Context,
	id uuid.UUID,
	sessionID string,
) error {
	p, ok := f.purchases[id]
	if !ok {
		return core.ErrNotFound
	}
	p.SessionID = sessionID
	return nil
}

func (f *fakeRepo) HasCompleted(
	_ context.Context,
	userID, courseID uuid.UUID,
) (bool, error) {
	for _, p := range f.purchases {
		if p.UserID == userID && p.CourseID == courseID &&
			p.Status == StatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) MarkCompletedAndEnroll(
	_ context.Context,
	sessionID string,
) (*Purchase, error) {
	for _, p := range f.purchases {
		if p.SessionID == sessionID && p.Status == StatusPending {
			p.Status = StatusCompleted
			f.enrolled[[2]uuid.UUID{p.UserID, p.CourseID}] = true
			return p, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) MarkFailed(_ context.Context, sessionID string) error {
	for _, p := range f.purchases {
		if p.SessionID == sessionID && p.Status == StatusPending {
			p.Status = StatusFailed
			return nil
		}
	}
	return core.ErrNotFound
}

type fakeCourseRepo struct {
	course.Repository
	courses map[uuid.UUID]*course.Course
}

func (f *fakeCourseRepo) GetByID(
	_ context.Context,
	id uuid.UUID,
) (*course.Course, error) {
	if c, ok := f.courses[id]; ok {
		return c, nil
	}
	return nil, core.ErrNotFound
}

type fakeUserRepo struct {
	user.Repository
	users map[uuid.UUID]*user.User
}

func (f *fakeUserRepo) GetByID(
	_ context.Context,
	id uuid.UUID,
) (*user.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, core.ErrNotFound
}

type fakeProcessor struct {
	lastInput payment.CheckoutInput
	fail      bool
}

func (f *fakeProcessor) CreateCheckoutSession(
	_ context.Context,
	input payment.CheckoutInput,
) (*payment.CheckoutSession, error) {
	if f.fail {
		return nil, assert.AnError
	}
	f.lastInput = input
	return &payment.CheckoutSession{
		SessionID:   "sess_" + input.PurchaseID,
		RedirectURL: "https://pay.example.com/" + input.PurchaseID,
	}, nil
}

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	processor *fakeProcessor
	userID    uuid.UUID
	courseID  uuid.UUID
}

func newFixture() *fixture {
	userID := uuid.New()
	courseID := uuid.New()

	courses := &fakeCourseRepo{courses: map[uuid.UUID]*course.Course{
		courseID: {ID: courseID, Title: "Profiling Go", Price: 7900},
	}}
	users := &fakeUserRepo{users: map[uuid.UUID]*user.User{
		userID: {ID: userID, Email: "buyer@example.com"},
	}}

	repo := newFakeRepo()
	processor := &fakeProcessor{}

	return &fixture{
		svc: NewService(
			repo, courses, users, processor, "https://app.example.com",
		),
		repo:      repo,
		processor: processor,
		userID:    userID,
		courseID:  courseID,
	}
}

func TestCheckoutCopiesPriceAndCreatesPending(t *testing.T) {
	fx := newFixture()

	resp, err := fx.svc.Checkout(context.Background(), fx.userID, CheckoutRequest{
		CourseID: fx.courseID,
	})
	require.NoError(t, err)

	p := fx.repo.purchases[resp.PurchaseID]
	require.NotNil(t, p)
	assert.Equal(t, int64(7900), p.Amount)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, "card", p.PaymentMethod)
	assert.Equal(t, "sess_"+resp.PurchaseID.String(), p.SessionID)

	assert.Equal(t, "buyer@example.com", fx.processor.lastInput.UserEmail)
	assert.Contains(t, resp.RedirectURL, "https://pay.example.com/")
}

func TestCheckoutUnknownCourse(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.Checkout(context.Background(), fx.userID, CheckoutRequest{
		CourseID: uuid.New(),
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCheckoutAlreadyPurchased(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	resp, err := fx.svc.Checkout(ctx, fx.userID, CheckoutRequest{
		CourseID: fx.courseID,
	})
	require.NoError(t, err)
	fx.repo.purchases[resp.PurchaseID].Status = StatusCompleted

	_, err = fx.svc.Checkout(ctx, fx.userID, CheckoutRequest{
		CourseID: fx.courseID,
	})
	assert.ErrorIs(t, err, ErrAlreadyPurchased)
}

func TestCheckoutProcessorFailure(t *testing.T) {
	fx := newFixture()
	fx.processor.fail = true

	_, err := fx.svc.Checkout(context.Background(), fx.userID, CheckoutRequest{
		CourseID: fx.courseID,
	})
	require.Error(t, err)
	assert.True(t, core.IsAppError(err))
}

func TestWebhookCompletedEnrollsBuyer(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	resp, err := fx.svc.Checkout(ctx, fx.userID, CheckoutRequest{
		CourseID: fx.courseID,
	})
	require.NoError(t, err)

	event := &payment.WebhookEvent{Type: payment.EventCheckoutCompleted}
	event.Data.SessionID = fx.repo.purchases[resp.PurchaseID].SessionID

	require.NoError(t, fx.svc.HandleWebhook(ctx, event))

	p := fx.repo.purchases[resp.PurchaseID]
	assert.Equal(t, StatusCompleted, p.Status)
	assert.True(t, fx.repo.enrolled[[2]uuid.UUID{fx.userID, fx.courseID}])

	// Replayed delivery is acknowledged without error.
	assert.NoError(t, fx.svc.HandleWebhook(ctx, event))
}

func TestWebhookFailedMarksPurchase(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	resp, err := fx.svc.Checkout(ctx, fx.userID, CheckoutRequest{
		CourseID: fx.courseID,
	})
	require.NoError(t, err)

	event := &payment.WebhookEvent{Type: payment.EventCheckoutFailed}
	event.Data.SessionID = fx.repo.purchases[resp.PurchaseID].SessionID

	require.NoError(t, fx.svc.HandleWebhook(ctx, event))
	assert.Equal(t, StatusFailed, fx.repo.purchases[resp.PurchaseID].Status)
	assert.False(t, fx.repo.enrolled[[2]uuid.UUID{fx.userID, fx.courseID}])
}

func TestWebhookUnknownEventIgnored(t *testing.T) {
	fx := newFixture()

	event := &payment.WebhookEvent{Type: "invoice.created"}
	assert.NoError(t, fx.svc.HandleWebhook(context.Background(), event))
}

func TestStatusReflectsCompletedPurchaseOnly(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	status, err := fx.svc.Status(ctx, fx.userID, fx.courseID)
	require.NoError(t, err)
	assert.False(t, status.IsPurchased)
	assert.Equal(t, "Profiling Go", status.Course.Title)

	resp, err := fx.svc.Checkout(ctx, fx.userID, CheckoutRequest{
		CourseID: fx.courseID,
	})
	require.NoError(t, err)

	// Pending purchases do not grant access.
	status, err = fx.svc.Status(ctx, fx.userID, fx.courseID)
	require.NoError(t, err)
	assert.False(t, status.IsPurchased)

	fx.repo.purchases[resp.PurchaseID].Status = StatusCompleted

	status, err = fx.svc.Status(ctx, fx.userID, fx.courseID)
	require.NoError(t, err)
	assert.True(t, status.IsPurchased)
}
