package orders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/fftopup/internal/models"
)

//go:generate mockgen -destination=mocks/mock_ports.go -package=mocks github.com/example/fftopup/internal/orders OrderRepository,OfferRepository,ProfileRepository,Publisher,Notifier

// OrderRepository persists diamond and offer orders.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOfferOrder(ctx context.Context, order *models.OfferOrder) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOfferOrder(ctx context.Context, id uuid.UUID) (*models.OfferOrder, error)
	// ListOrders returns every diamond order, newest first.
	ListOrders(ctx context.Context) ([]models.Order, error)
	// ListOfferOrders returns every offer order with its offer, newest first.
	ListOfferOrders(ctx context.Context) ([]models.OfferOrder, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, int64, error)
	ListOfferOrdersByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.OfferOrder, int64, error)
	// UpdateStatus changes only the status of the row with id in the table
	// for kind. It returns gorm.ErrRecordNotFound when no row matched.
	UpdateStatus(ctx context.Context, kind Kind, id uuid.UUID, status Status) error
	// TransitionStatus changes the status only while the row still holds
	// from. A row that moved on in the meantime yields ErrIllegalTransition.
	TransitionStatus(ctx context.Context, kind Kind, id uuid.UUID, from, to Status) error
}

// OfferRepository reads the pass catalog.
type OfferRepository interface {
	FindActive(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	ListActive(ctx context.Context) ([]models.Offer, error)
}

// ProfileRepository reads and updates user profiles.
type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	// List returns every profile, newest first.
	List(ctx context.Context) ([]models.Profile, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
}

// Event types published for order changes.
const (
	EventOrderSubmitted     = "order.submitted"
	EventOrderStatusChanged = "order.status_changed"
)

// Event describes a change to an order.
type Event struct {
	Type       string    `json:"event_type"`
	OrderID    uuid.UUID `json:"order_id"`
	Kind       Kind      `json:"kind"`
	UserID     uuid.UUID `json:"user_id"`
	From       Status    `json:"from,omitempty"`
	Status     Status    `json:"status"`
	Override   bool      `json:"override,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers order events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Notifier alerts operators about orders.
type Notifier interface {
	NotifyNewOrder(ctx context.Context, entry TimelineEntry) error
	NotifyStatusChange(ctx context.Context, entry TimelineEntry, from Status) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

type nopNotifier struct{}

func (nopNotifier) NotifyNewOrder(context.Context, TimelineEntry) error { return nil }

func (nopNotifier) NotifyStatusChange(context.Context, TimelineEntry, Status) error { return nil }
