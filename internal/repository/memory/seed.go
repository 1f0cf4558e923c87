package memory

import (
	"time"

	"evrental-backend/internal/domain"
)

// Seed helpers populate reference data that the core treats as read-only.

func (s *Store) AddVehicle(v domain.Vehicle) domain.Vehicle {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == 0 {
		v.ID = s.data.nextID()
	}
	v.Status = domain.StatusForQuantity(v.Quantity)
	v.CreatedAt, v.UpdatedAt = time.Now().UTC(), time.Now().UTC()
	s.data.vehicles[v.ID] = v
	return v
}

func (s *Store) AddPlan(p domain.Plan) domain.Plan {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.data.nextID()
	}
	p.CreatedAt = time.Now().UTC()
	s.data.plans[p.ID] = p
	return p
}

func (s *Store) AddRider(r domain.Rider) domain.Rider {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.data.nextID()
	}
	r.CreatedAt = time.Now().UTC()
	s.data.riders[r.ID] = r
	return r
}

func (s *Store) AddItem(it domain.MiscInventoryItem) domain.MiscInventoryItem {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if it.ID == 0 {
		it.ID = s.data.nextID()
	}
	if it.Status == "" {
		it.Status = domain.ItemStatusInStock
	}
	it.UpdatedAt = time.Now().UTC()
	s.data.items[it.ID] = it
	return it
}

func (s *Store) AddStaff(st domain.Staff) domain.Staff {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == 0 {
		st.ID = s.data.nextID()
	}
	st.CreatedAt = time.Now().UTC()
	s.data.staff[st.ID] = st
	return st
}

// Counts reports row counts, used to assert that failed transactions left no trace.
func (s *Store) Counts() (rentals, payments int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.rentals), len(s.data.payments)
}
