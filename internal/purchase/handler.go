// AngelaMos | 2026
// handler.go

package purchase

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/angelamos/learnify/internal/core"
	"github.com/angelamos/learnify/internal/middleware"
	"github.com/angelamos/learnify/internal/payment"
)

const maxWebhookBody = 1 << 20

type Handler struct {
	service       *Service
	webhookSecret string
	validator     *validator.Validate
}

func NewHandler(service *Service, webhookSecret string) *Handler {
	return &Handler{
		service:       service,
		webhookSecret: webhookSecret,
		validator:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/webhook", h.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/create-checkout-session", h.Checkout)
			r.Get("/courses/{courseID}/purchase-status", h.Status)
			r.Get("/purchased-courses", h.PurchasedCourses)
		})
	})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Checkout(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "course")
		case errors.Is(err, ErrAlreadyPurchased):
			core.Conflict(w, "purchase")
		default:
			core.JSONError(w, err)
		}
		return
	}

	core.CreatedMessage(w, "checkout session created", resp)
}

// Webhook receives payment provider callbacks. The body is read raw
// because the HMAC signature covers the exact bytes on the wire.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		core.BadRequest(w, "unreadable request body")
		return
	}

	signature := r.Header.Get("X-Webhook-Signature")
	if !payment.VerifySignature(body, signature, h.webhookSecret) {
		core.Unauthorized(w, "invalid webhook signature")
		return
	}

	var event payment.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		core.BadRequest(w, "invalid webhook payload")
		return
	}

	if err := h.service.HandleWebhook(r.Context(), &event); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "webhook processed", nil)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		core.BadRequest(w, "invalid course id")
		return
	}

	resp, err := h.service.Status(
		r.Context(),
		middleware.GetUserID(r.Context()),
		courseID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "course")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) PurchasedCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.PurchasedCourses(
		r.Context(),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Collection(w, len(courses), courses)
}
