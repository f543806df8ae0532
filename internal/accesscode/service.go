package accesscode

import (
	"context"
	"errors"
	"fmt"

	"github.com/skellish-aws/kellish-yir-website/internal/pkg/logger"
	"github.com/skellish-aws/kellish-yir-website/internal/storage"
)

// User-facing messages. A code that simply doesn't exist gets the same
// generic message as any other rejection so the endpoint can't be used to
// probe which codes are live; a malformed entry gets a format hint since
// it is almost always a typo.
const (
	msgBadFormat = "That doesn't look like an invitation code. Codes look like KEL-XXXX-XXXX."
	msgInvalid   = "Invalid invitation code."
	msgUsed      = "This invitation code has already been used."
	msgValid     = "Welcome!"
)

// CodeStore is the persistence the service needs.
type CodeStore interface {
	PutAccessCode(ctx context.Context, rec *storage.AccessCodeRecord) error
	GetAccessCodeByCode(ctx context.Context, code string) (*storage.AccessCodeRecord, error)
	MarkAccessCodeUsed(ctx context.Context, codeID, usedBy string) error
}

// Outcome is the result of checking or redeeming a code. Valid means the
// code can be (or just was) used; Exists distinguishes a real-but-used code
// from one that was never issued.
type Outcome struct {
	Valid         bool   `json:"valid"`
	Exists        bool   `json:"exists"`
	Used          bool   `json:"used,omitempty"`
	Message       string `json:"message"`
	CodeID        string `json:"codeId,omitempty"`
	RecipientName string `json:"recipientName,omitempty"`
}

// Service checks and redeems invitation codes.
type Service struct {
	store CodeStore
}

// NewService creates a code service over the given store.
func NewService(store CodeStore) *Service {
	return &Service{store: store}
}

// Check validates a user-entered code without consuming it. It never
// returns an error for a bad code, only for store failures: bad input is a
// normal outcome, not a fault.
func (s *Service) Check(ctx context.Context, raw string) (*Outcome, error) {
	code := Normalize(raw)
	if !ValidFormat(code) {
		return &Outcome{Valid: false, Message: msgBadFormat}, nil
	}

	rec, err := s.store.GetAccessCodeByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &Outcome{Valid: false, Message: msgInvalid}, nil
		}
		return nil, fmt.Errorf("looking up access code: %w", err)
	}
	if rec.Used {
		return &Outcome{Valid: false, Exists: true, Used: true, Message: msgUsed}, nil
	}
	return &Outcome{
		Valid:         true,
		Exists:        true,
		Message:       msgValid,
		CodeID:        rec.ID,
		RecipientName: rec.RecipientName,
	}, nil
}

// Redeem validates and consumes a code in one step. A used code stays used:
// the store's conditional update keeps redemption one-way even under
// concurrent attempts.
func (s *Service) Redeem(ctx context.Context, raw, usedBy string) (*Outcome, error) {
	code := Normalize(raw)
	if !ValidFormat(code) {
		return &Outcome{Valid: false, Message: msgBadFormat}, nil
	}

	rec, err := s.store.GetAccessCodeByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &Outcome{Valid: false, Message: msgInvalid}, nil
		}
		return nil, fmt.Errorf("looking up access code: %w", err)
	}
	if rec.Used {
		return &Outcome{Valid: false, Exists: true, Used: true, Message: msgUsed}, nil
	}

	if err := s.store.MarkAccessCodeUsed(ctx, rec.ID, usedBy); err != nil {
		if errors.Is(err, storage.ErrCodeUsed) {
			// Lost the race to another redemption of the same code.
			return &Outcome{Valid: false, Exists: true, Used: true, Message: msgUsed}, nil
		}
		return nil, fmt.Errorf("redeeming access code: %w", err)
	}

	logger.Info("access code redeemed", "code", logger.RedactCode(code), "usedBy", usedBy)
	return &Outcome{
		Valid:         true,
		Exists:        true,
		Used:          true,
		Message:       msgValid,
		CodeID:        rec.ID,
		RecipientName: rec.RecipientName,
	}, nil
}

// CreateBatch generates and stores n new codes for the given recipients.
// recipientNames may be shorter than n; extra codes are stored unassigned.
func (s *Service) CreateBatch(ctx context.Context, n int, recipientNames []string) ([]storage.AccessCodeRecord, error) {
	codes, err := GenerateBatch(n)
	if err != nil {
		return nil, err
	}
	records := make([]storage.AccessCodeRecord, 0, n)
	for i, code := range codes {
		rec := storage.AccessCodeRecord{Code: code}
		if i < len(recipientNames) {
			rec.RecipientName = recipientNames[i]
		}
		if err := s.store.PutAccessCode(ctx, &rec); err != nil {
			return records, fmt.Errorf("storing access code %d of %d: %w", i+1, n, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
