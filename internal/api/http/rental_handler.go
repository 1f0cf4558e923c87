package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/idempotency"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/service"
)

const (
	idempotencyKeyHeader    = "Idempotency-Key"
	idempotencyWriteTimeout = 5 * time.Second
)

type RentalHandler struct {
	rentalSvc    service.RentalService
	accessorySvc service.AccessoryService
	idem         idempotency.Store
}

func NewRentalHandler(rentalSvc service.RentalService, accessorySvc service.AccessoryService, idem idempotency.Store) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc, accessorySvc: accessorySvc, idem: idem}
}

type createRentalRequest struct {
	RiderID            int64                `json:"rider_id"`
	VehicleID          int64                `json:"vehicle_id"`
	PlanID             int64                `json:"plan_id"`
	StartDate          string               `json:"start_date"`
	ExpectedReturnDate string               `json:"expected_return_date"`
	PreBooked          bool                 `json:"pre_booked"`
	Payment            *domain.PaymentInput `json:"payment,omitempty"`
	AccessoryIDs       []int64              `json:"accessory_ids,omitempty"`
	AccessoryNotes     string               `json:"accessory_notes,omitempty"`
}

type startRentalRequest struct {
	Payment        domain.PaymentInput `json:"payment"`
	AccessoryIDs   []int64             `json:"accessory_ids,omitempty"`
	AccessoryNotes string              `json:"accessory_notes,omitempty"`
}

type cancelRentalRequest struct {
	Reason string `json:"reason"`
}

type assignAccessoriesRequest struct {
	ItemIDs []int64 `json:"item_ids"`
	Notes   string  `json:"notes"`
}

type listRentalsResponse struct {
	Rentals  []domain.Rental `json:"rentals"`
	Total    int32           `json:"total"`
	Page     int32           `json:"page"`
	PageSize int32           `json:"page_size"`
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v := &domain.ValidationError{}
	in := service.CreateRentalInput{
		RiderID:            req.RiderID,
		VehicleID:          req.VehicleID,
		PlanID:             req.PlanID,
		StartDate:          parseDate("start_date", req.StartDate, v),
		ExpectedReturnDate: parseDate("expected_return_date", req.ExpectedReturnDate, v),
		PreBooked:          req.PreBooked,
		Payment:            req.Payment,
		AccessoryIDs:       req.AccessoryIDs,
		AccessoryNotes:     req.AccessoryNotes,
	}
	if err := v.OrNil(); err != nil {
		writeError(w, r, err)
		return
	}

	key := r.Header.Get(idempotencyKeyHeader)
	if key == "" || h.idem == nil {
		res, err := h.rentalSvc.CreateRental(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
		return
	}

	stored, err := h.idem.Reserve(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if stored != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(stored.StatusCode)
		_, _ = w.Write(stored.Body)
		return
	}

	res, err := h.rentalSvc.CreateRental(r.Context(), in)
	if err != nil {
		bctx, cancel := idempotencyContext(r.Context())
		defer cancel()
		if relErr := h.idem.Release(bctx, key); relErr != nil {
			logger.WarnContext(r.Context(), "Failed to release idempotency key", "error", relErr)
		}
		writeError(w, r, err)
		return
	}
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(res); err != nil {
		writeError(w, r, err)
		return
	}
	bctx, cancel := idempotencyContext(r.Context())
	defer cancel()
	if err := h.idem.Complete(bctx, key, idempotency.Response{StatusCode: http.StatusCreated, Body: body.Bytes()}); err != nil {
		logger.WarnContext(r.Context(), "Failed to store idempotent response", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body.Bytes())
}

// idempotencyContext outlives client disconnects so a key is never left
// reserved after the create has finished.
func idempotencyContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), idempotencyWriteTimeout)
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentalSvc.GetRental(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	v := &domain.ValidationError{}
	page := queryInt64(r, "page", v)
	pageSize := queryInt64(r, "page_size", v)
	if page > domain.MaxPage {
		v.Add("page", fmt.Sprintf("must not exceed %d", domain.MaxPage))
	}
	if pageSize > domain.MaxPageSize {
		v.Add("page_size", fmt.Sprintf("must not exceed %d", domain.MaxPageSize))
	}
	filter := domain.RentalFilter{
		RiderID:   queryInt64(r, "rider_id", v),
		VehicleID: queryInt64(r, "vehicle_id", v),
		Status:    domain.RentalStatus(r.URL.Query().Get("status")),
	}
	if err := v.OrNil(); err != nil {
		writeError(w, r, err)
		return
	}
	filter.Page, filter.PageSize = int32(page), int32(pageSize)

	rentals, total, err := h.rentalSvc.ListRentals(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rentals == nil {
		rentals = []domain.Rental{}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = domain.DefaultPageSize
	}
	writeJSON(w, http.StatusOK, listRentalsResponse{Rentals: rentals, Total: total, Page: filter.Page, PageSize: filter.PageSize})
}

func (h *RentalHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req startRentalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.rentalSvc.StartRental(r.Context(), service.StartRentalInput{
		RentalID:       id,
		Payment:        req.Payment,
		AccessoryIDs:   req.AccessoryIDs,
		AccessoryNotes: req.AccessoryNotes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *RentalHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentalSvc.ReturnRental(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req cancelRentalRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	rental, err := h.rentalSvc.CancelRental(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) MarkOverdue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentalSvc.MarkOverdue(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) AssignAccessories(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req assignAccessoriesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	outcomes, err := h.accessorySvc.AssignAccessories(r.Context(), id, req.ItemIDs, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accessories": outcomes})
}
