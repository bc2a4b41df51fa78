// Package orders implements order submission and admin reconciliation for
// diamond top-ups and pass purchases.
package orders

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/fftopup/internal/models"
	"github.com/example/fftopup/internal/storage"
)

// Service coordinates repositories, proof storage and notifications.
type Service struct {
	orders    OrderRepository
	offers    OfferRepository
	profiles  ProfileRepository
	blobs     storage.BlobStore
	publisher Publisher
	notifier  Notifier
	now       func() time.Time

	alerts sync.WaitGroup
}

// Option customises a Service.
type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(orders OrderRepository, offers OfferRepository, profiles ProfileRepository, blobs storage.BlobStore, opts ...Option) *Service {
	s := &Service{
		orders:    orders,
		offers:    offers,
		profiles:  profiles,
		blobs:     blobs,
		publisher: nopPublisher{},
		notifier:  nopNotifier{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dispatch runs send in the background with a context that outlives the
// request. Failures are logged.
func (s *Service) dispatch(ctx context.Context, what string, id uuid.UUID, send func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	s.alerts.Add(1)
	go func() {
		defer s.alerts.Done()
		if err := send(ctx); err != nil {
			log.Printf("[Orders] %s notification for %s failed: %v", what, id, err)
		}
	}()
}

// Wait blocks until every in-flight notification has finished.
func (s *Service) Wait() {
	s.alerts.Wait()
}

// TimelineEntry is a diamond or offer order flattened for the admin view.
type TimelineEntry struct {
	Kind            Kind            `json:"kind"`
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	UID             string          `json:"uid"`
	IGN             string          `json:"ign"`
	PaymentMethod   string          `json:"payment_method"`
	TransactionID   *string         `json:"transaction_id,omitempty"`
	PaymentProofURL string          `json:"payment_proof_url"`
	Notes           *string         `json:"notes,omitempty"`
	Status          Status          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	Diamonds        int             `json:"diamonds,omitempty"`
	OfferName       string          `json:"offer_name,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func entryFromOrder(o models.Order) TimelineEntry {
	return TimelineEntry{
		Kind:            KindDiamond,
		ID:              o.ID,
		UserID:          o.UserID,
		UID:             o.UID,
		IGN:             o.IGN,
		PaymentMethod:   o.PaymentMethod,
		TransactionID:   o.TransactionID,
		PaymentProofURL: o.PaymentProofURL,
		Notes:           o.Notes,
		Status:          Status(o.Status),
		Amount:          o.PackagePrice,
		Diamonds:        o.PackageDiamonds,
		CreatedAt:       o.CreatedAt,
	}
}

// entryFromOfferOrder prefers the name frozen at purchase and falls back to
// the joined offer for rows written before names were frozen.
func entryFromOfferOrder(o models.OfferOrder) TimelineEntry {
	name := o.OfferName
	if name == "" && o.Offer != nil {
		name = o.Offer.Name
	}
	return TimelineEntry{
		Kind:            KindOffer,
		ID:              o.ID,
		UserID:          o.UserID,
		UID:             o.UID,
		IGN:             o.IGN,
		PaymentMethod:   o.PaymentMethod,
		TransactionID:   o.TransactionID,
		PaymentProofURL: o.PaymentProofURL,
		Notes:           o.Notes,
		Status:          Status(o.Status),
		Amount:          o.OfferPrice,
		OfferName:       name,
		CreatedAt:       o.CreatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
