package orders_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/fftopup/internal/catalog"
	"github.com/example/fftopup/internal/models"
	"github.com/example/fftopup/internal/orders"
	"github.com/example/fftopup/internal/orders/mocks"
	"github.com/example/fftopup/internal/storage"
	storagemocks "github.com/example/fftopup/internal/storage/mocks"
	"github.com/example/fftopup/internal/validation"
)

var fixedNow = time.Date(2026, 1, 15, 14, 30, 0, 0, time.UTC)

type fixture struct {
	repo      *mocks.MockOrderRepository
	offers    *mocks.MockOfferRepository
	profiles  *mocks.MockProfileRepository
	blobs     *storagemocks.MockBlobStore
	publisher *mocks.MockPublisher
	notifier  *mocks.MockNotifier
	svc       *orders.Service
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		repo:      mocks.NewMockOrderRepository(ctrl),
		offers:    mocks.NewMockOfferRepository(ctrl),
		profiles:  mocks.NewMockProfileRepository(ctrl),
		blobs:     storagemocks.NewMockBlobStore(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		notifier:  mocks.NewMockNotifier(ctrl),
	}
	f.svc = orders.NewService(f.repo, f.offers, f.profiles, f.blobs,
		orders.WithPublisher(f.publisher),
		orders.WithNotifier(f.notifier),
		orders.WithClock(func() time.Time { return fixedNow }),
	)
	t.Cleanup(f.svc.Wait)
	return f
}

func validForm() validation.TopUpForm {
	return validation.TopUpForm{
		UID:           "123456789",
		IGN:           "Pro_Gamer1",
		PaymentMethod: catalog.PaymentESewa,
		TransactionID: " TXN123 ",
	}
}

func pngProof() *orders.Proof {
	return &orders.Proof{
		Filename:    "receipt.png",
		ContentType: "image/png",
		Size:        4 * 1024 * 1024,
		Body:        bytes.NewReader([]byte("png")),
	}
}

func submissionError(t *testing.T, err error) *orders.SubmissionError {
	t.Helper()
	var serr *orders.SubmissionError
	require.True(t, errors.As(err, &serr), "want *SubmissionError, got %v", err)
	return serr
}

func TestSubmitDiamondOrder_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	wantPath := storage.ProofPath(userID, fixedNow, "receipt.png")

	f.blobs.EXPECT().Upload(ctx, storage.ProofBucket, wantPath, gomock.Any(), "image/png").Return(nil)
	f.repo.EXPECT().CreateOrder(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, o *models.Order) error {
		o.ID = uuid.New()
		return nil
	})
	f.publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e orders.Event) error {
		assert.Equal(t, orders.EventOrderSubmitted, e.Type)
		assert.Equal(t, orders.KindDiamond, e.Kind)
		assert.Equal(t, orders.StatusPending, e.Status)
		return nil
	})
	f.notifier.EXPECT().NotifyNewOrder(gomock.Any(), gomock.Any()).Return(nil)

	receipt, err := f.svc.SubmitDiamondOrder(ctx, userID, validForm(), 410, pngProof())
	require.NoError(t, err)

	o := receipt.Order
	assert.Equal(t, catalog.DiamondOrderConfirmation, receipt.Message)
	assert.Equal(t, string(orders.StatusPending), o.Status)
	assert.Equal(t, userID, o.UserID)
	assert.Equal(t, wantPath, o.PaymentProofURL)
	assert.True(t, o.PackagePrice.Equal(decimal.NewFromInt(410)))
	assert.Equal(t, 480, o.PackageDiamonds)
	require.NotNil(t, o.TransactionID)
	assert.Equal(t, "TXN123", *o.TransactionID)
	assert.Nil(t, o.Notes)
}

func TestSubmitDiamondOrder_InvalidInputHasNoSideEffects(t *testing.T) {
	tests := []struct {
		name      string
		form      validation.TopUpForm
		price     int64
		proof     *orders.Proof
		wantField string
	}{
		{
			name:      "unknown package",
			form:      validForm(),
			price:     150,
			proof:     pngProof(),
			wantField: "package_price",
		},
		{
			name:      "missing proof",
			form:      validForm(),
			price:     100,
			wantField: "payment_proof",
		},
		{
			name:  "pdf proof",
			form:  validForm(),
			price: 100,
			proof: &orders.Proof{Filename: "a.pdf", ContentType: "application/pdf", Size: 10, Body: bytes.NewReader(nil)},
			wantField: "payment_proof",
		},
		{
			name:      "oversize proof",
			form:      validForm(),
			price:     100,
			proof:     &orders.Proof{Filename: "a.png", ContentType: "image/png", Size: 6 * 1024 * 1024, Body: bytes.NewReader(nil)},
			wantField: "payment_proof",
		},
		{
			name: "short uid",
			form: func() validation.TopUpForm {
				f := validForm()
				f.UID = "12345"
				return f
			}(),
			price:     100,
			proof:     pngProof(),
			wantField: "uid",
		},
		{
			name: "bad ign",
			form: func() validation.TopUpForm {
				f := validForm()
				f.IGN = "name!"
				return f
			}(),
			price:     100,
			proof:     pngProof(),
			wantField: "ign",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No expectations are set: any upload or insert fails the test.
			f := newFixture(t)
			for i := 0; i < 2; i++ {
				receipt, err := f.svc.SubmitDiamondOrder(context.Background(), uuid.New(), tt.form, tt.price, tt.proof)
				assert.Nil(t, receipt)
				serr := submissionError(t, err)
				assert.Equal(t, orders.ErrKindValidation, serr.Kind)
				assert.Contains(t, serr.Fields, tt.wantField)
			}
		})
	}
}

func TestSubmitDiamondOrder_UploadFailure(t *testing.T) {
	f := newFixture(t)
	f.blobs.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err := f.svc.SubmitDiamondOrder(context.Background(), uuid.New(), validForm(), 100, pngProof())
	serr := submissionError(t, err)
	assert.Equal(t, orders.ErrKindUpload, serr.Kind)
	assert.Equal(t, "Failed to upload payment proof", serr.Message)
}

func TestSubmitDiamondOrder_InsertFailureRemovesProof(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	path := storage.ProofPath(userID, fixedNow, "receipt.png")
	insertErr := errors.New("connection reset")

	gomock.InOrder(
		f.blobs.EXPECT().Upload(gomock.Any(), storage.ProofBucket, path, gomock.Any(), gomock.Any()).Return(nil),
		f.repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(insertErr),
		f.blobs.EXPECT().Delete(gomock.Any(), storage.ProofBucket, path).Return(nil),
	)

	_, err := f.svc.SubmitDiamondOrder(context.Background(), userID, validForm(), 100, pngProof())
	serr := submissionError(t, err)
	assert.Equal(t, orders.ErrKindInsert, serr.Kind)
	assert.ErrorIs(t, err, insertErr)
	assert.Empty(t, serr.OrphanPath)
}

func TestSubmitDiamondOrder_FailedCleanupReportsOrphan(t *testing.T) {
	f := newFixture(t)
	f.blobs.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))
	f.blobs.EXPECT().Delete(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("permission denied"))

	userID := uuid.New()
	_, err := f.svc.SubmitDiamondOrder(context.Background(), userID, validForm(), 100, pngProof())
	serr := submissionError(t, err)
	assert.Equal(t, storage.ProofPath(userID, fixedNow, "receipt.png"), serr.OrphanPath)
}

func TestSubmitDiamondOrder_NotificationFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.blobs.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
	f.notifier.EXPECT().NotifyNewOrder(gomock.Any(), gomock.Any()).Return(errors.New("telegram down"))

	receipt, err := f.svc.SubmitDiamondOrder(context.Background(), uuid.New(), validForm(), 100, pngProof())
	require.NoError(t, err)
	assert.NotNil(t, receipt.Order)
}

func TestSubmitDiamondOrder_NotificationDoesNotBlockRequest(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	notified := make(chan error, 1)

	f.blobs.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	f.notifier.EXPECT().NotifyNewOrder(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ orders.TimelineEntry) error {
		<-release
		notified <- ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	receipt, err := f.svc.SubmitDiamondOrder(ctx, uuid.New(), validForm(), 100, pngProof())
	require.NoError(t, err)
	assert.NotNil(t, receipt.Order)

	// The request is over; the alert must still go out.
	cancel()
	close(release)
	f.svc.Wait()
	assert.NoError(t, <-notified)
}

func TestSubmitOfferOrder_FreezesOfferTerms(t *testing.T) {
	f := newFixture(t)
	offer := &models.Offer{Name: "Weekly Pass", Price: decimal.NewFromInt(220), Active: true}
	offer.ID = uuid.New()

	f.offers.EXPECT().FindActive(gomock.Any(), offer.ID).Return(offer, nil)
	f.blobs.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.repo.EXPECT().CreateOfferOrder(gomock.Any(), gomock.Any()).Return(nil)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	f.notifier.EXPECT().NotifyNewOrder(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e orders.TimelineEntry) error {
		assert.Equal(t, "Weekly Pass", e.OfferName)
		return nil
	})

	receipt, err := f.svc.SubmitOfferOrder(context.Background(), uuid.New(), offer.ID, validForm(), pngProof())
	require.NoError(t, err)
	assert.Equal(t, catalog.OfferOrderConfirmation, receipt.Message)
	assert.Equal(t, "Weekly Pass", receipt.Order.OfferName)
	assert.True(t, receipt.Order.OfferPrice.Equal(decimal.NewFromInt(220)))
	assert.Equal(t, offer.ID, receipt.Order.OfferID)
	assert.Equal(t, string(orders.StatusPending), receipt.Order.Status)
}

func TestSubmitOfferOrder_InactiveOffer(t *testing.T) {
	f := newFixture(t)
	f.offers.EXPECT().FindActive(gomock.Any(), gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.SubmitOfferOrder(context.Background(), uuid.New(), uuid.New(), validForm(), pngProof())
	assert.ErrorIs(t, err, orders.ErrOfferNotFound)
}

func TestSubmitOfferOrder_MissingFields(t *testing.T) {
	f := newFixture(t)
	form := validForm()
	form.IGN = "  "

	_, err := f.svc.SubmitOfferOrder(context.Background(), uuid.New(), uuid.New(), form, nil)
	serr := submissionError(t, err)
	assert.Equal(t, orders.ErrKindValidation, serr.Kind)
	assert.Equal(t, "Please fill all required fields and upload payment proof", serr.Message)
	assert.Contains(t, serr.Fields, "ign")
	assert.Contains(t, serr.Fields, "payment_proof")
	assert.NotContains(t, serr.Fields, "uid")
}
