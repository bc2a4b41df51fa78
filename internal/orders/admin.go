package orders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/example/fftopup/internal/models"
	"github.com/example/fftopup/internal/storage"
)

// ErrInvalidRole is returned for roles other than user and admin.
var ErrInvalidRole = errors.New("invalid role")

// Stats summarises every order across both kinds.
type Stats struct {
	TotalOrders  int             `json:"total_orders"`
	Pending      int             `json:"pending"`
	Processing   int             `json:"processing"`
	Completed    int             `json:"completed"`
	Rejected     int             `json:"rejected"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalUsers   int             `json:"total_users"`
}

// Dashboard is one consistent snapshot of orders and users.
type Dashboard struct {
	Timeline []TimelineEntry  `json:"timeline"`
	Profiles []models.Profile `json:"profiles"`
	Stats    Stats            `json:"stats"`
}

// LoadDashboard fetches diamond orders, offer orders and profiles
// concurrently. Any failed fetch fails the whole load.
func (s *Service) LoadDashboard(ctx context.Context) (*Dashboard, error) {
	var (
		diamondOrders []models.Order
		offerOrders   []models.OfferOrder
		profiles      []models.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		diamondOrders, err = s.orders.ListOrders(gctx)
		if err != nil {
			return fmt.Errorf("load orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		offerOrders, err = s.orders.ListOfferOrders(gctx)
		if err != nil {
			return fmt.Errorf("load offer orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		profiles, err = s.profiles.List(gctx)
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Printf("[Orders] dashboard load failed: %v", err)
		return nil, err
	}

	timeline := make([]TimelineEntry, 0, len(diamondOrders)+len(offerOrders))
	for _, o := range diamondOrders {
		timeline = append(timeline, entryFromOrder(o))
	}
	for _, o := range offerOrders {
		timeline = append(timeline, entryFromOfferOrder(o))
	}
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].CreatedAt.After(timeline[j].CreatedAt)
	})

	stats := ComputeStats(timeline)
	stats.TotalUsers = len(profiles)

	return &Dashboard{Timeline: timeline, Profiles: profiles, Stats: stats}, nil
}

// ComputeStats counts entries per status. Revenue only includes completed
// orders, at the price recorded on each order.
func ComputeStats(entries []TimelineEntry) Stats {
	stats := Stats{TotalOrders: len(entries), TotalRevenue: decimal.Zero}
	for _, e := range entries {
		switch e.Status {
		case StatusPending:
			stats.Pending++
		case StatusProcessing:
			stats.Processing++
		case StatusCompleted:
			stats.Completed++
			stats.TotalRevenue = stats.TotalRevenue.Add(e.Amount)
		case StatusRejected:
			stats.Rejected++
		}
	}
	return stats
}

// UpdateOrderStatus moves one order to status to. In ModeAction the move
// must be in the transition table and is applied only if the stored status
// is still the one read here. In ModeOverride any status is accepted and
// moves outside the table are flagged on the published event.
func (s *Service) UpdateOrderStatus(ctx context.Context, kind Kind, id uuid.UUID, to Status, mode Mode) (*TimelineEntry, error) {
	if _, err := ParseStatus(string(to)); err != nil {
		return nil, err
	}

	entry, err := s.findEntry(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	from := entry.Status

	outside := !CanTransition(from, to)
	switch mode {
	case ModeAction:
		if outside {
			return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
		}
	case ModeOverride:
		if outside {
			log.Printf("[Orders] override outside transition table: %s order %s %s -> %s", kind, id, from, to)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	if mode == ModeAction {
		err = s.orders.TransitionStatus(ctx, kind, id, from, to)
	} else {
		err = s.orders.UpdateStatus(ctx, kind, id, to)
	}
	if err != nil {
		log.Printf("[Orders] status update failed for %s order %s: %v", kind, id, err)
		return nil, fmt.Errorf("update status: %w", err)
	}
	entry.Status = to

	event := Event{
		Type:       EventOrderStatusChanged,
		OrderID:    id,
		Kind:       kind,
		UserID:     entry.UserID,
		From:       from,
		Status:     to,
		Override:   mode == ModeOverride && outside,
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[Orders] publish %s for %s failed: %v", event.Type, id, err)
	}
	changed := entry
	s.dispatch(ctx, "status", id, func(ctx context.Context) error {
		return s.notifier.NotifyStatusChange(ctx, changed, from)
	})

	return &entry, nil
}

func (s *Service) findEntry(ctx context.Context, kind Kind, id uuid.UUID) (TimelineEntry, error) {
	switch kind {
	case KindDiamond:
		o, err := s.orders.FindOrder(ctx, id)
		if err != nil {
			return TimelineEntry{}, err
		}
		return entryFromOrder(*o), nil
	case KindOffer:
		o, err := s.orders.FindOfferOrder(ctx, id)
		if err != nil {
			return TimelineEntry{}, err
		}
		return entryFromOfferOrder(*o), nil
	}
	return TimelineEntry{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// ApplyStatus sets the status of the entry with id and leaves every other
// entry untouched. It reports whether an entry matched.
func ApplyStatus(entries []TimelineEntry, id uuid.UUID, status Status) bool {
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Status = status
			return true
		}
	}
	return false
}

// UpdateUserRole changes a profile's role. Admin checks read the role on
// every request, so the change applies from the next request on.
func (s *Service) UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) (*models.Profile, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if err := s.profiles.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	log.Printf("[Orders] user %s role set to %s", userID, role)
	return s.profiles.FindByID(ctx, userID)
}

// UserOrders lists a customer's own orders of both kinds, newest first.
type UserOrders struct {
	Orders           []models.Order      `json:"orders"`
	OfferOrders      []models.OfferOrder `json:"offer_orders"`
	TotalOrders      int64               `json:"total_orders"`
	TotalOfferOrders int64               `json:"total_offer_orders"`
}

func (s *Service) ListUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int) (*UserOrders, error) {
	out := &UserOrders{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Orders, out.TotalOrders, err = s.orders.ListOrdersByUser(gctx, userID, limit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		out.OfferOrders, out.TotalOfferOrders, err = s.orders.ListOfferOrdersByUser(gctx, userID, limit, offset)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// OpenProof streams a stored payment proof.
func (s *Service) OpenProof(ctx context.Context, path string) (io.ReadCloser, error) {
	return s.blobs.Open(ctx, storage.ProofBucket, path)
}
