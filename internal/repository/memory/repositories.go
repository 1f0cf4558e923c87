package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"evrental-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type vehicleRepository struct{ s *Store }

func (r *vehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	var out *domain.Vehicle
	err := r.s.read(ctx, func(st *state) error {
		v, ok := st.vehicles[id]
		if !ok {
			return domain.ErrVehicleNotFound
		}
		out = &v
		return nil
	})
	return out, err
}

func (r *vehicleRepository) Allocate(ctx context.Context, id int64) (*domain.Vehicle, error) {
	var out *domain.Vehicle
	err := r.s.write(ctx, func(st *state) error {
		v, ok := st.vehicles[id]
		if !ok {
			return domain.ErrVehicleNotFound
		}
		if v.Quantity <= 0 {
			return domain.ErrOutOfStock
		}
		v.Quantity--
		v.Status = domain.StatusForQuantity(v.Quantity)
		v.UpdatedAt = time.Now().UTC()
		st.vehicles[id] = v
		out = &v
		return nil
	})
	return out, err
}

func (r *vehicleRepository) Release(ctx context.Context, id int64) error {
	return r.s.write(ctx, func(st *state) error {
		v, ok := st.vehicles[id]
		if !ok {
			return domain.ErrVehicleNotFound
		}
		v.Quantity++
		v.Status = domain.VehicleStatusAvailable
		v.UpdatedAt = time.Now().UTC()
		st.vehicles[id] = v
		return nil
	})
}

type planRepository struct{ s *Store }

func (r *planRepository) GetByID(ctx context.Context, id int64) (*domain.Plan, error) {
	var out *domain.Plan
	err := r.s.read(ctx, func(st *state) error {
		p, ok := st.plans[id]
		if !ok {
			return domain.ErrPlanNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

type riderRepository struct{ s *Store }

func (r *riderRepository) GetByID(ctx context.Context, id int64) (*domain.Rider, error) {
	var out *domain.Rider
	err := r.s.read(ctx, func(st *state) error {
		rd, ok := st.riders[id]
		if !ok {
			return domain.ErrRiderNotFound
		}
		out = &rd
		return nil
	})
	return out, err
}

type rentalRepository struct{ s *Store }

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	return r.s.write(ctx, func(st *state) error {
		now := time.Now().UTC()
		rt.ID = st.nextID()
		rt.CreatedAt, rt.UpdatedAt = now, now
		st.rentals[rt.ID] = *rt
		return nil
	})
}

func (r *rentalRepository) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	var out *domain.Rental
	err := r.s.read(ctx, func(st *state) error {
		rt, ok := st.rentals[id]
		if !ok {
			return domain.ErrRentalNotFound
		}
		out = &rt
		return nil
	})
	return out, err
}

// GetForUpdate needs no row lock: transactions are already serialized.
func (r *rentalRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Rental, error) {
	return r.GetByID(ctx, id)
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, rt *domain.Rental) error {
	return r.s.write(ctx, func(st *state) error {
		cur, ok := st.rentals[rt.ID]
		if !ok {
			return domain.ErrRentalNotFound
		}
		cur.Status = rt.Status
		cur.ActualReturnDate = rt.ActualReturnDate
		cur.CancelReason = rt.CancelReason
		cur.UpdatedAt = time.Now().UTC()
		rt.UpdatedAt = cur.UpdatedAt
		st.rentals[rt.ID] = cur
		return nil
	})
}

func (r *rentalRepository) RecomputePaidTotal(ctx context.Context, id int64) (decimal.Decimal, error) {
	paid := decimal.Zero
	err := r.s.write(ctx, func(st *state) error {
		rt, ok := st.rentals[id]
		if !ok {
			return domain.ErrRentalNotFound
		}
		for _, p := range st.payments {
			if p.RentalID == id && p.Status == domain.PaymentStatusSuccess {
				paid = paid.Add(p.Amount)
			}
		}
		rt.PaidTotal = paid
		rt.UpdatedAt = time.Now().UTC()
		st.rentals[id] = rt
		return nil
	})
	return paid, err
}

func (r *rentalRepository) ApplySettlement(ctx context.Context, id int64, charges decimal.Decimal, settledAt time.Time) error {
	return r.s.write(ctx, func(st *state) error {
		rt, ok := st.rentals[id]
		if !ok {
			return domain.ErrRentalNotFound
		}
		if rt.SettledAt != nil {
			return &domain.StateError{Op: "settle", Hint: "rental already settled"}
		}
		rt.PayableTotal = rt.PayableTotal.Add(charges)
		rt.SettledAt = &settledAt
		rt.UpdatedAt = settledAt
		st.rentals[id] = rt
		return nil
	})
}

func (r *rentalRepository) List(ctx context.Context, f domain.RentalFilter) ([]domain.Rental, int32, error) {
	var out []domain.Rental
	var total int32
	err := r.s.read(ctx, func(st *state) error {
		var matched []domain.Rental
		for _, rt := range st.rentals {
			if (f.RiderID == 0 || rt.RiderID == f.RiderID) &&
				(f.VehicleID == 0 || rt.VehicleID == f.VehicleID) &&
				(f.Status == "" || rt.Status == f.Status) {
				matched = append(matched, rt)
			}
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
		total = int32(len(matched))

		limit, offset := f.Window()
		if offset >= int64(len(matched)) {
			return nil
		}
		end := min(offset+limit, int64(len(matched)))
		out = matched[offset:end]
		return nil
	})
	return out, total, err
}

func (r *rentalRepository) MarkOverdue(ctx context.Context, asOf time.Time) ([]int64, error) {
	var ids []int64
	err := r.s.write(ctx, func(st *state) error {
		now := time.Now().UTC()
		for id, rt := range st.rentals {
			if rt.Status == domain.RentalStatusOngoing && rt.ExpectedReturnDate.Before(asOf) {
				rt.Status = domain.RentalStatusOverdue
				rt.UpdatedAt = now
				st.rentals[id] = rt
				ids = append(ids, id)
			}
		}
		return nil
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, err
}

type paymentRepository struct{ s *Store }

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return r.s.write(ctx, func(st *state) error {
		p.ID = st.nextID()
		p.CreatedAt = time.Now().UTC()
		st.payments[p.ID] = *p
		return nil
	})
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var out *domain.Payment
	err := r.s.read(ctx, func(st *state) error {
		p, ok := st.payments[id]
		if !ok {
			return domain.ErrPaymentNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	return r.s.write(ctx, func(st *state) error {
		p, ok := st.payments[id]
		if !ok {
			return domain.ErrPaymentNotFound
		}
		p.Status = status
		st.payments[id] = p
		return nil
	})
}

func (r *paymentRepository) ListByRental(ctx context.Context, rentalID int64) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.s.read(ctx, func(st *state) error {
		for _, p := range st.payments {
			if p.RentalID == rentalID {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

type accessoryRepository struct{ s *Store }

func (r *accessoryRepository) GetByID(ctx context.Context, id int64) (*domain.MiscInventoryItem, error) {
	var out *domain.MiscInventoryItem
	err := r.s.read(ctx, func(st *state) error {
		it, ok := st.items[id]
		if !ok {
			return domain.ErrItemNotFound
		}
		out = &it
		return nil
	})
	return out, err
}

func (r *accessoryRepository) Assign(ctx context.Context, itemID, rentalID int64, notes string) (bool, error) {
	assigned := false
	err := r.s.write(ctx, func(st *state) error {
		it, ok := st.items[itemID]
		if !ok || it.AssignedRentalID != nil || !it.Status.Assignable() {
			return nil
		}
		id := rentalID
		it.AssignedRentalID = &id
		it.Status = domain.ItemStatusAssigned
		if notes != "" {
			it.Notes = notes
		}
		it.UpdatedAt = time.Now().UTC()
		st.items[itemID] = it
		assigned = true
		return nil
	})
	return assigned, err
}

func (r *accessoryRepository) ReleaseForRental(ctx context.Context, rentalID int64) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(st *state) error {
		for id, it := range st.items {
			if it.AssignedRentalID == nil || *it.AssignedRentalID != rentalID {
				continue
			}
			it.AssignedRentalID = nil
			if it.Status == domain.ItemStatusAssigned {
				it.Status = domain.ItemStatusInStock
			}
			it.UpdatedAt = time.Now().UTC()
			st.items[id] = it
			n++
		}
		return nil
	})
	return n, err
}

func (r *accessoryRepository) ListByRental(ctx context.Context, rentalID int64) ([]domain.MiscInventoryItem, error) {
	var out []domain.MiscInventoryItem
	err := r.s.read(ctx, func(st *state) error {
		for _, it := range st.items {
			if it.AssignedRentalID != nil && *it.AssignedRentalID == rentalID {
				out = append(out, it)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

type inspectionRepository struct{ s *Store }

func (r *inspectionRepository) Upsert(ctx context.Context, in *domain.ReturnInspection) error {
	return r.s.write(ctx, func(st *state) error {
		now := time.Now().UTC()
		for id, cur := range st.inspections {
			if cur.RentalID != in.RentalID {
				continue
			}
			if cur.Settled {
				return &domain.StateError{Op: "save inspection", Status: "settled", Hint: "settled inspections are frozen"}
			}
			in.ID, in.CreatedAt, in.UpdatedAt = id, cur.CreatedAt, now
			in.Settled, in.SettledAt = false, nil
			st.inspections[id] = *in
			return nil
		}
		in.ID = st.nextID()
		in.CreatedAt, in.UpdatedAt = now, now
		st.inspections[in.ID] = *in
		return nil
	})
}

func (r *inspectionRepository) GetByID(ctx context.Context, id int64) (*domain.ReturnInspection, error) {
	var out *domain.ReturnInspection
	err := r.s.read(ctx, func(st *state) error {
		in, ok := st.inspections[id]
		if !ok {
			return domain.ErrInspectionNotFound
		}
		out = &in
		return nil
	})
	return out, err
}

func (r *inspectionRepository) GetByRentalID(ctx context.Context, rentalID int64) (*domain.ReturnInspection, error) {
	var out *domain.ReturnInspection
	err := r.s.read(ctx, func(st *state) error {
		for _, in := range st.inspections {
			if in.RentalID == rentalID {
				out = &in
				return nil
			}
		}
		return domain.ErrInspectionNotFound
	})
	return out, err
}

func (r *inspectionRepository) GetForUpdate(ctx context.Context, id int64) (*domain.ReturnInspection, error) {
	return r.GetByID(ctx, id)
}

func (r *inspectionRepository) MarkSettled(ctx context.Context, in *domain.ReturnInspection, settledAt time.Time) (bool, error) {
	ok := false
	err := r.s.write(ctx, func(st *state) error {
		cur, found := st.inspections[in.ID]
		if !found {
			return domain.ErrInspectionNotFound
		}
		if cur.Settled {
			return nil
		}
		cur.InspectionTotals = in.InspectionTotals
		cur.Settled = true
		cur.SettledAt = &settledAt
		cur.UpdatedAt = settledAt
		st.inspections[in.ID] = cur
		*in = cur
		ok = true
		return nil
	})
	return ok, err
}

type settingsRepository struct{ s *Store }

func (r *settingsRepository) GetSettlement(ctx context.Context) (*domain.SettlementSettings, error) {
	var out *domain.SettlementSettings
	err := r.s.read(ctx, func(st *state) error {
		if st.settings == nil {
			return domain.ErrNotFound
		}
		s := *st.settings
		out = &s
		return nil
	})
	return out, err
}

func (r *settingsRepository) SaveSettlement(ctx context.Context, settings *domain.SettlementSettings) error {
	return r.s.write(ctx, func(st *state) error {
		s := *settings
		st.settings = &s
		return nil
	})
}

type staffRepository struct{ s *Store }

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	var out *domain.Staff
	err := r.s.read(ctx, func(st *state) error {
		for _, s := range st.staff {
			if strings.EqualFold(s.Email, email) {
				out = &s
				return nil
			}
		}
		return domain.ErrStaffNotFound
	})
	return out, err
}

func (r *staffRepository) GetByID(ctx context.Context, id int64) (*domain.Staff, error) {
	var out *domain.Staff
	err := r.s.read(ctx, func(st *state) error {
		s, ok := st.staff[id]
		if !ok {
			return domain.ErrStaffNotFound
		}
		out = &s
		return nil
	})
	return out, err
}
