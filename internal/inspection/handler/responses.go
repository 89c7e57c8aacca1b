package handler

import (
	"time"

	"lettings/internal/inspection/models"
)

type SlotResponse struct {
	InspectionID      string    `json:"inspection_id"`
	InspectionIndex   int       `json:"inspection_index"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	ReservedCount     int       `json:"reserved_count"`
	ReservedTenantIDs []string  `json:"reserved_tenant_ids,omitempty"`
	HeldByMe          bool      `json:"held_by_me,omitempty"`
}

type SlotsResponse struct {
	Slots []SlotResponse `json:"slots"`
}

type ReservationResponse struct {
	BookingID       string    `json:"booking_id"`
	PropertyID      string    `json:"property_id"`
	TenantID        string    `json:"tenant_id"`
	InspectionIndex int       `json:"inspection_index"`
	ReservedAt      time.Time `json:"reserved_at"`
	Created         bool      `json:"created"`
}

// MyReservationResponse drives the tenant's Book/Cancel buttons.
type MyReservationResponse struct {
	Reserved        bool   `json:"reserved"`
	InspectionIndex *int   `json:"inspection_index,omitempty"`
	BookingID       string `json:"booking_id,omitempty"`
}

func toSlotResponse(v models.SlotView) SlotResponse {
	resp := SlotResponse{
		InspectionID:    v.InspectionID.String(),
		InspectionIndex: v.Index,
		Start:           v.Start,
		End:             v.End,
		ReservedCount:   v.ReservedCount,
		HeldByMe:        v.HeldByCaller,
	}
	for _, t := range v.ReservedTenantIDs {
		resp.ReservedTenantIDs = append(resp.ReservedTenantIDs, t.String())
	}
	return resp
}

func toSlotViews(slots []models.Slot) []SlotResponse {
	out := make([]SlotResponse, len(slots))
	for i, slot := range slots {
		out[i] = toSlotResponse(models.SlotView{
			InspectionID:      slot.InspectionID,
			Index:             slot.Index,
			Start:             slot.Start,
			End:               slot.End,
			ReservedCount:     len(slot.ReservedTenantIDs),
			ReservedTenantIDs: slot.ReservedTenantIDs,
		})
	}
	return out
}

func toReservationResponse(r models.Reservation, created bool) ReservationResponse {
	return ReservationResponse{
		BookingID:       r.BookingID.String(),
		PropertyID:      r.PropertyID.String(),
		TenantID:        r.TenantID.String(),
		InspectionIndex: r.InspectionIndex,
		ReservedAt:      r.ReservedAt,
		Created:         created,
	}
}
