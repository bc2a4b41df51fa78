package orders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fftopup/internal/catalog"
	"github.com/example/fftopup/internal/models"
	"github.com/example/fftopup/internal/storage"
	"github.com/example/fftopup/internal/validation"
)

// ErrOfferNotFound is returned for missing or inactive offers.
var ErrOfferNotFound = errors.New("offer not found")

// ErrorKind classifies a failed submission.
type ErrorKind string

const (
	// ErrKindValidation means nothing was uploaded or inserted.
	ErrKindValidation ErrorKind = "validation"
	// ErrKindUpload means the proof upload failed and no order was inserted.
	ErrKindUpload ErrorKind = "upload"
	// ErrKindInsert means the order insert failed after the proof was stored.
	ErrKindInsert ErrorKind = "insert"
)

const (
	msgSelectPackage = "Please select a diamond package"
	msgUploadProof   = "Please upload payment proof"
	msgMissingFields = "Please fill all required fields and upload payment proof"
	msgFixForm       = "Please fix the errors in the form"
	msgUploadFailed  = "Failed to upload payment proof"
	msgInsertFailed  = "Failed to create order"
)

// SubmissionError reports why an order was not created.
type SubmissionError struct {
	Kind    ErrorKind
	Message string
	Fields  validation.FieldErrors
	// OrphanPath is set when the stored proof could not be removed after a
	// failed insert.
	OrphanPath string
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Proof is an uploaded payment screenshot.
type Proof struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DiamondReceipt is returned for an accepted diamond top-up.
type DiamondReceipt struct {
	Order   *models.Order `json:"order"`
	Message string        `json:"message"`
}

// OfferReceipt is returned for an accepted pass purchase.
type OfferReceipt struct {
	Order   *models.OfferOrder `json:"order"`
	Message string             `json:"message"`
}

// SubmitDiamondOrder validates the form, stores the proof and inserts a
// pending order for the package priced at packagePrice.
func (s *Service) SubmitDiamondOrder(ctx context.Context, userID uuid.UUID, form validation.TopUpForm, packagePrice int64, proof *Proof) (*DiamondReceipt, error) {
	pkg, err := catalog.PackageByPrice(packagePrice)
	if err != nil {
		return nil, invalid(msgSelectPackage, validation.FieldErrors{"package_price": msgSelectPackage})
	}
	if proof == nil {
		return nil, invalid(msgUploadProof, validation.FieldErrors{"payment_proof": msgUploadProof})
	}
	form, err = checkSubmission(form, proof)
	if err != nil {
		return nil, err
	}

	path, err := s.uploadProof(ctx, userID, proof)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:          userID,
		UID:             form.UID,
		IGN:             form.IGN,
		PackagePrice:    pkg.PriceDecimal(),
		PackageDiamonds: pkg.Diamonds,
		PaymentMethod:   form.PaymentMethod,
		TransactionID:   optional(form.TransactionID),
		PaymentProofURL: path,
		Notes:           optional(form.Notes),
		Status:          string(StatusPending),
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, s.discardProof(ctx, path, err)
	}

	log.Printf("[Orders] diamond order %s created for user %s (%d diamonds)", order.ID, userID, pkg.Diamonds)
	s.announce(ctx, entryFromOrder(*order))
	return &DiamondReceipt{Order: order, Message: catalog.DiamondOrderConfirmation}, nil
}

// SubmitOfferOrder is SubmitDiamondOrder for an active pass. The offer's
// name and price are copied onto the order.
func (s *Service) SubmitOfferOrder(ctx context.Context, userID, offerID uuid.UUID, form validation.TopUpForm, proof *Proof) (*OfferReceipt, error) {
	if strings.TrimSpace(form.UID) == "" || strings.TrimSpace(form.IGN) == "" || proof == nil {
		fields := validation.FieldErrors{}
		if strings.TrimSpace(form.UID) == "" {
			fields["uid"] = msgMissingFields
		}
		if strings.TrimSpace(form.IGN) == "" {
			fields["ign"] = msgMissingFields
		}
		if proof == nil {
			fields["payment_proof"] = msgUploadProof
		}
		return nil, invalid(msgMissingFields, fields)
	}

	offer, err := s.ActiveOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	form, err = checkSubmission(form, proof)
	if err != nil {
		return nil, err
	}

	path, err := s.uploadProof(ctx, userID, proof)
	if err != nil {
		return nil, err
	}

	order := &models.OfferOrder{
		UserID:          userID,
		OfferID:         offer.ID,
		OfferName:       offer.Name,
		OfferPrice:      offer.Price,
		UID:             form.UID,
		IGN:             form.IGN,
		PaymentMethod:   form.PaymentMethod,
		TransactionID:   optional(form.TransactionID),
		PaymentProofURL: path,
		Notes:           optional(form.Notes),
		Status:          string(StatusPending),
	}
	if err := s.orders.CreateOfferOrder(ctx, order); err != nil {
		return nil, s.discardProof(ctx, path, err)
	}

	log.Printf("[Orders] offer order %s created for user %s (%s)", order.ID, userID, offer.Name)
	s.announce(ctx, entryFromOfferOrder(*order))
	return &OfferReceipt{Order: order, Message: catalog.OfferOrderConfirmation}, nil
}

// ActiveOffer returns the offer with id when it is on sale.
func (s *Service) ActiveOffer(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	offer, err := s.offers.FindActive(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load offer: %w", err)
	}
	return offer, nil
}

// ActiveOffers lists the offers on sale.
func (s *Service) ActiveOffers(ctx context.Context) ([]models.Offer, error) {
	return s.offers.ListActive(ctx)
}

// checkSubmission validates the proof and returns the sanitized form.
func checkSubmission(form validation.TopUpForm, proof *Proof) (validation.TopUpForm, error) {
	if err := validation.ValidateImageFile(proof.ContentType, proof.Size); err != nil {
		return form, invalid(err.Error(), validation.FieldErrors{"payment_proof": err.Error()})
	}

	form = validation.SanitizeTopUpForm(form)
	if fields := validation.ValidateTopUpForm(form); len(fields) > 0 {
		return form, invalid(msgFixForm, fields)
	}
	return form, nil
}

func invalid(message string, fields validation.FieldErrors) *SubmissionError {
	return &SubmissionError{Kind: ErrKindValidation, Message: message, Fields: fields}
}

func (s *Service) uploadProof(ctx context.Context, userID uuid.UUID, proof *Proof) (string, error) {
	path := storage.ProofPath(userID, s.now(), proof.Filename)
	if err := s.blobs.Upload(ctx, storage.ProofBucket, path, proof.Body, proof.ContentType); err != nil {
		log.Printf("[Orders] proof upload failed for user %s: %v", userID, err)
		return "", &SubmissionError{Kind: ErrKindUpload, Message: msgUploadFailed, Err: err}
	}
	return path, nil
}

// discardProof removes a stored proof whose order could not be inserted.
func (s *Service) discardProof(ctx context.Context, path string, cause error) error {
	log.Printf("[Orders] order insert failed, removing proof %s: %v", path, cause)
	serr := &SubmissionError{Kind: ErrKindInsert, Message: msgInsertFailed, Err: cause}
	if err := s.blobs.Delete(context.WithoutCancel(ctx), storage.ProofBucket, path); err != nil {
		log.Printf("[Orders] proof %s left orphaned: %v", path, err)
		serr.OrphanPath = path
	}
	return serr
}

// announce publishes the submission event and alerts operators in the
// background. Failures are logged and never fail the submission.
func (s *Service) announce(ctx context.Context, entry TimelineEntry) {
	event := Event{
		Type:       EventOrderSubmitted,
		OrderID:    entry.ID,
		Kind:       entry.Kind,
		UserID:     entry.UserID,
		Status:     entry.Status,
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[Orders] publish %s for %s failed: %v", event.Type, entry.ID, err)
	}
	s.dispatch(ctx, "new order", entry.ID, func(ctx context.Context) error {
		return s.notifier.NotifyNewOrder(ctx, entry)
	})
}
