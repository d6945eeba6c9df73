package order

// Order status state machine:
// processing -> confirmed -> shipped -> delivered (terminal)
// cancelled is terminal and reachable only from processing or confirmed.
const (
	StatusProcessing = "processing"
	StatusConfirmed  = "confirmed"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

const (
	PaymentMethodCOD    = "cash_on_delivery"
	PaymentMethodStripe = "stripe"
	PaymentMethodPayPal = "paypal"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

var transitions = map[string][]string{
	StatusProcessing: {StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled},
	StatusConfirmed:  {StatusShipped, StatusDelivered, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order may still be cancelled. Once shipped
// the stock has left the building.
func Cancellable(status string) bool {
	return status == StatusProcessing || status == StatusConfirmed
}

func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodStripe, PaymentMethodPayPal:
		return true
	}
	return false
}

func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}
