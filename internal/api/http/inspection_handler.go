package http

import (
	"net/http"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/service"
)

type InspectionHandler struct {
	inspectionSvc service.InspectionService
}

func NewInspectionHandler(inspectionSvc service.InspectionService) *InspectionHandler {
	return &InspectionHandler{inspectionSvc: inspectionSvc}
}

type saveInspectionRequest struct {
	Odometer            int64                      `json:"odometer"`
	ChargePercent       int32                      `json:"charge_percent"`
	AccessoriesReturned []domain.ReturnedAccessory `json:"accessories_returned"`
	BatteryMissing      bool                       `json:"battery_missing"`
	PhotoURLs           []string                   `json:"photo_urls"`
	Notes               string                     `json:"notes"`
	domain.InspectionCharges
}

func (h *InspectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	rentalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	inspection, err := h.inspectionSvc.GetInspection(r.Context(), rentalID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inspection)
}

func (h *InspectionHandler) Save(w http.ResponseWriter, r *http.Request) {
	rentalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req saveInspectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inspection, err := h.inspectionSvc.SaveInspection(r.Context(), service.SaveInspectionInput{
		RentalID:            rentalID,
		Odometer:            req.Odometer,
		ChargePercent:       req.ChargePercent,
		AccessoriesReturned: req.AccessoriesReturned,
		BatteryMissing:      req.BatteryMissing,
		PhotoURLs:           req.PhotoURLs,
		Notes:               req.Notes,
		Charges:             req.InspectionCharges,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inspection)
}

func (h *InspectionHandler) Settle(w http.ResponseWriter, r *http.Request) {
	inspectionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	inspection, rental, err := h.inspectionSvc.SettleInspection(r.Context(), inspectionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inspection": inspection, "rental": rental})
}
