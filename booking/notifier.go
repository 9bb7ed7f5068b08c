package booking

// TemplateKind selects the message template the notification collaborator
// renders. Delivery is best-effort, a failed send never rolls back a booking.
type TemplateKind string

const (
	TemplateAdvanceReminder  TemplateKind = "ADVANCE_REMINDER"
	TemplateBookingConfirmed TemplateKind = "BOOKING_CONFIRMED"
	TemplateBookingCancelled TemplateKind = "BOOKING_CANCELLED"
)

// Snapshot is the read-only booking view handed to the notifier.
type Snapshot struct {
	BookingCode   string
	VenueName     string
	Date          string
	SlotTimes     []string
	TotalAmount   float64
	AdvanceAmount float64
}

type Notifier interface {
	Notify(phone string, kind TemplateKind, snap Snapshot) error
}

// NopNotifier drops every notification. Used when no gateway is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(string, TemplateKind, Snapshot) error { return nil }
