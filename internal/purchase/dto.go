// AngelaMos | 2026
// dto.go

package purchase

import (
	"github.com/google/uuid"

	"github.com/angelamos/learnify/internal/course"
)

type CheckoutRequest struct {
	CourseID      uuid.UUID `json:"courseId"      validate:"required"`
	PaymentMethod string    `json:"paymentMethod" validate:"omitempty,oneof=card paypal"`
}

type CheckoutResponse struct {
	PurchaseID  uuid.UUID `json:"purchaseId"`
	RedirectURL string    `json:"redirectUrl"`
}

type StatusResponse struct {
	Course      *course.Course `json:"course"`
	IsPurchased bool           `json:"isPurchased"`
}
