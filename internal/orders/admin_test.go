package orders_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/fftopup/internal/models"
	"github.com/example/fftopup/internal/orders"
)

func diamondOrder(status orders.Status, price int64, created time.Time) models.Order {
	o := models.Order{PackagePrice: decimal.NewFromInt(price), PackageDiamonds: 115, Status: string(status)}
	o.ID = uuid.New()
	o.CreatedAt = created
	return o
}

func offerOrder(status orders.Status, price int64, created time.Time) models.OfferOrder {
	o := models.OfferOrder{OfferName: "Weekly Pass", OfferPrice: decimal.NewFromInt(price), Status: string(status)}
	o.ID = uuid.New()
	o.CreatedAt = created
	return o
}

func TestLoadDashboard(t *testing.T) {
	f := newFixture(t)
	base := fixedNow

	d1 := diamondOrder(orders.StatusCompleted, 410, base.Add(-3*time.Hour))
	d2 := diamondOrder(orders.StatusPending, 100, base.Add(-1*time.Hour))
	o1 := offerOrder(orders.StatusCompleted, 220, base.Add(-2*time.Hour))
	o2 := offerOrder(orders.StatusRejected, 1050, base)
	// Legacy row without a frozen name falls back to the joined offer.
	o3 := offerOrder(orders.StatusProcessing, 80, base.Add(-4*time.Hour))
	o3.OfferName = ""
	o3.Offer = &models.Offer{Name: "Weekly Lite"}

	f.repo.EXPECT().ListOrders(gomock.Any()).Return([]models.Order{d2, d1}, nil)
	f.repo.EXPECT().ListOfferOrders(gomock.Any()).Return([]models.OfferOrder{o2, o1, o3}, nil)
	f.profiles.EXPECT().List(gomock.Any()).Return([]models.Profile{{Email: "a@x.com"}, {Email: "b@x.com"}}, nil)

	d, err := f.svc.LoadDashboard(context.Background())
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(d.Timeline))
	for _, e := range d.Timeline {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []uuid.UUID{o2.ID, d2.ID, o1.ID, d1.ID, o3.ID}, ids)
	assert.Equal(t, "Weekly Lite", d.Timeline[4].OfferName)
	assert.Equal(t, orders.KindOffer, d.Timeline[0].Kind)
	assert.Equal(t, orders.KindDiamond, d.Timeline[1].Kind)

	assert.Equal(t, 5, d.Stats.TotalOrders)
	assert.Equal(t, 1, d.Stats.Pending)
	assert.Equal(t, 1, d.Stats.Processing)
	assert.Equal(t, 2, d.Stats.Completed)
	assert.Equal(t, 1, d.Stats.Rejected)
	assert.Equal(t, 2, d.Stats.TotalUsers)
	assert.True(t, d.Stats.TotalRevenue.Equal(decimal.NewFromInt(630)), "got %s", d.Stats.TotalRevenue)
}

func TestLoadDashboard_AnyFailureAbortsLoad(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().ListOrders(gomock.Any()).Return([]models.Order{diamondOrder(orders.StatusPending, 100, fixedNow)}, nil).AnyTimes()
	f.repo.EXPECT().ListOfferOrders(gomock.Any()).Return(nil, errors.New("timeout")).AnyTimes()
	f.profiles.EXPECT().List(gomock.Any()).Return(nil, nil).AnyTimes()

	d, err := f.svc.LoadDashboard(context.Background())
	assert.Nil(t, d)
	assert.ErrorContains(t, err, "load offer orders")
}

func TestUpdateOrderStatus_Action(t *testing.T) {
	f := newFixture(t)
	order := diamondOrder(orders.StatusPending, 100, fixedNow)

	f.repo.EXPECT().FindOrder(gomock.Any(), order.ID).Return(&order, nil)
	f.repo.EXPECT().TransitionStatus(gomock.Any(), orders.KindDiamond, order.ID, orders.StatusPending, orders.StatusCompleted).Return(nil).Times(1)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e orders.Event) error {
		assert.Equal(t, orders.EventOrderStatusChanged, e.Type)
		assert.Equal(t, orders.StatusPending, e.From)
		assert.Equal(t, orders.StatusCompleted, e.Status)
		assert.False(t, e.Override)
		return nil
	})
	f.notifier.EXPECT().NotifyStatusChange(gomock.Any(), gomock.Any(), orders.StatusPending).Return(nil)

	entry, err := f.svc.UpdateOrderStatus(context.Background(), orders.KindDiamond, order.ID, orders.StatusCompleted, orders.ModeAction)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCompleted, entry.Status)
	assert.Equal(t, order.ID, entry.ID)
}

func TestUpdateOrderStatus_ActionRejectsIllegalMove(t *testing.T) {
	tests := []struct {
		from, to orders.Status
	}{
		{orders.StatusCompleted, orders.StatusPending},
		{orders.StatusRejected, orders.StatusCompleted},
		{orders.StatusPending, orders.StatusProcessing},
		{orders.StatusProcessing, orders.StatusRejected},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			f := newFixture(t)
			order := offerOrder(tt.from, 220, fixedNow)
			f.repo.EXPECT().FindOfferOrder(gomock.Any(), order.ID).Return(&order, nil)

			_, err := f.svc.UpdateOrderStatus(context.Background(), orders.KindOffer, order.ID, tt.to, orders.ModeAction)
			assert.ErrorIs(t, err, orders.ErrIllegalTransition)
		})
	}
}

func TestUpdateOrderStatus_ActionLosesToConcurrentChange(t *testing.T) {
	f := newFixture(t)
	order := diamondOrder(orders.StatusPending, 100, fixedNow)

	f.repo.EXPECT().FindOrder(gomock.Any(), order.ID).Return(&order, nil)
	f.repo.EXPECT().TransitionStatus(gomock.Any(), orders.KindDiamond, order.ID, orders.StatusPending, orders.StatusRejected).
		Return(fmt.Errorf("%w: diamond order %s is no longer pending", orders.ErrIllegalTransition, order.ID))

	entry, err := f.svc.UpdateOrderStatus(context.Background(), orders.KindDiamond, order.ID, orders.StatusRejected, orders.ModeAction)
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, orders.ErrIllegalTransition)
}

func TestUpdateOrderStatus_OverrideIsFlagged(t *testing.T) {
	f := newFixture(t)
	order := offerOrder(orders.StatusCompleted, 220, fixedNow)

	f.repo.EXPECT().FindOfferOrder(gomock.Any(), order.ID).Return(&order, nil)
	f.repo.EXPECT().UpdateStatus(gomock.Any(), orders.KindOffer, order.ID, orders.StatusPending).Return(nil)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e orders.Event) error {
		assert.True(t, e.Override)
		return nil
	})
	f.notifier.EXPECT().NotifyStatusChange(gomock.Any(), gomock.Any(), orders.StatusCompleted).Return(nil)

	entry, err := f.svc.UpdateOrderStatus(context.Background(), orders.KindOffer, order.ID, orders.StatusPending, orders.ModeOverride)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, entry.Status)
}

func TestUpdateOrderStatus_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.UpdateOrderStatus(ctx, orders.KindDiamond, uuid.New(), "shipped", orders.ModeOverride)
		assert.ErrorIs(t, err, orders.ErrInvalidStatus)
	})

	t.Run("unknown kind", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.UpdateOrderStatus(ctx, "bundle", uuid.New(), orders.StatusCompleted, orders.ModeAction)
		assert.ErrorIs(t, err, orders.ErrUnknownKind)
	})

	t.Run("update error leaves no event", func(t *testing.T) {
		f := newFixture(t)
		order := diamondOrder(orders.StatusPending, 100, fixedNow)
		f.repo.EXPECT().FindOrder(gomock.Any(), order.ID).Return(&order, nil)
		f.repo.EXPECT().TransitionStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("deadlock"))

		entry, err := f.svc.UpdateOrderStatus(ctx, orders.KindDiamond, order.ID, orders.StatusRejected, orders.ModeAction)
		assert.Nil(t, entry)
		assert.ErrorContains(t, err, "deadlock")
	})
}

func TestApplyStatus(t *testing.T) {
	a := orders.TimelineEntry{ID: uuid.New(), Status: orders.StatusPending}
	b := orders.TimelineEntry{ID: uuid.New(), Status: orders.StatusPending}
	c := orders.TimelineEntry{ID: uuid.New(), Status: orders.StatusProcessing}
	entries := []orders.TimelineEntry{a, b, c}

	assert.True(t, orders.ApplyStatus(entries, b.ID, orders.StatusCompleted))
	assert.Equal(t, orders.StatusPending, entries[0].Status)
	assert.Equal(t, orders.StatusCompleted, entries[1].Status)
	assert.Equal(t, orders.StatusProcessing, entries[2].Status)

	assert.False(t, orders.ApplyStatus(entries, uuid.New(), orders.StatusRejected))
}

func TestUpdateUserRole(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	_, err := f.svc.UpdateUserRole(context.Background(), id, "owner")
	assert.ErrorIs(t, err, orders.ErrInvalidRole)

	f.profiles.EXPECT().UpdateRole(gomock.Any(), id, models.RoleAdmin).Return(nil)
	f.profiles.EXPECT().FindByID(gomock.Any(), id).Return(&models.Profile{Role: models.RoleAdmin}, nil)

	p, err := f.svc.UpdateUserRole(context.Background(), id, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())
}

func TestComputeStatsIgnoresUnfinishedRevenue(t *testing.T) {
	stats := orders.ComputeStats([]orders.TimelineEntry{
		{Status: orders.StatusPending, Amount: decimal.NewFromInt(100)},
		{Status: orders.StatusRejected, Amount: decimal.NewFromInt(200)},
	})
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.Equal(t, 2, stats.TotalOrders)
}
