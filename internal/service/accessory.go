package service

import (
	"context"
	"errors"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/repository"
)

type accessoryService struct {
	tx          repository.TxManager
	rentals     repository.RentalRepository
	accessories repository.AccessoryRepository
}

func NewAccessoryService(tx repository.TxManager, rentals repository.RentalRepository, accessories repository.AccessoryRepository) AccessoryService {
	return &accessoryService{tx: tx, rentals: rentals, accessories: accessories}
}

// assignAccessories is best effort: an item that is missing or already taken
// is reported as skipped and never fails the surrounding operation.
func assignAccessories(ctx context.Context, accessories repository.AccessoryRepository, rentalID int64, itemIDs []int64, notes string) ([]domain.AssignmentOutcome, error) {
	outcomes := make([]domain.AssignmentOutcome, 0, len(itemIDs))
	seen := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		ok, err := accessories.Assign(ctx, id, rentalID, notes)
		if err != nil {
			return nil, err
		}
		outcome := domain.AssignmentOutcome{ItemID: id, Assigned: ok}
		if !ok {
			outcome.Reason = skipReason(ctx, accessories, id)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func skipReason(ctx context.Context, accessories repository.AccessoryRepository, itemID int64) string {
	item, err := accessories.GetByID(ctx, itemID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "item not found"
	case err != nil:
		return "item not available"
	case item.AssignedRentalID != nil:
		return "already assigned"
	default:
		return "item is " + string(item.Status)
	}
}

func (s *accessoryService) AssignAccessories(ctx context.Context, rentalID int64, itemIDs []int64, notes string) ([]domain.AssignmentOutcome, error) {
	logger.EnterMethod("accessoryService.AssignAccessories", "rentalID", rentalID, "items", len(itemIDs))

	if len(itemIDs) == 0 {
		err := domain.NewValidationError("item_ids", "at least one item is required")
		logger.ExitMethodWithError("accessoryService.AssignAccessories", err)
		return nil, err
	}

	var outcomes []domain.AssignmentOutcome
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		rental, err := s.rentals.GetForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental.Status.Terminal() {
			return &domain.StateError{Op: "assign accessories", Status: string(rental.Status)}
		}
		outcomes, err = assignAccessories(ctx, s.accessories, rentalID, itemIDs, notes)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("accessoryService.AssignAccessories", err)
		return nil, err
	}

	logger.ExitMethod("accessoryService.AssignAccessories", "rentalID", rentalID, "assigned", len(domain.AssignedItemIDs(outcomes)))
	return outcomes, nil
}
