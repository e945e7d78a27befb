package core

import (
	"errors"
	"strings"
)

// ContributionType classifies a logged unit of activity.
type ContributionType string

const (
	TypeVehicleData   ContributionType = "vehicle_data"
	TypeImageUpload   ContributionType = "image_upload"
	TypeTimelineEvent ContributionType = "timeline_event"
	TypeVerification  ContributionType = "verification"
	TypeAnnotation    ContributionType = "annotation"
	TypeBusinessEvent ContributionType = "business_event"
)

type (
	// ContributionRecord is one unit of logged activity: an edit, an upload,
	// a verification. Records are owned by the data layer and are read-only
	// once fetched; the activity engine never mutates them.
	ContributionRecord struct {
		ID        string            `json:"id"`
		Type      ContributionType  `json:"type"`
		RawDate   string            `json:"date"`
		Count     int               `json:"count"`
		VehicleID string            `json:"related_vehicle_id,omitempty"`
		Metadata  map[string]string `json:"metadata,omitempty"`
	}

	// ContractorWork is a self-contained paid work record: hours at a shop
	// or for a client, with labor and materials valued directly on the row.
	ContractorWork struct {
		ID               string  `json:"id"`
		Description      string  `json:"description"`
		OccurredAt       string  `json:"occurred_at"`
		OrganizationID   string  `json:"organization_id,omitempty"`
		OrganizationName string  `json:"organization_name,omitempty"`
		VehicleID        string  `json:"vehicle_id,omitempty"`
		LaborHours       float64 `json:"labor_hours"`
		LaborValue       Money   `json:"labor_value"`
		MaterialsCost    Money   `json:"materials_cost"`
	}

	// TimelineEvent is a dated entry on a vehicle's history. Labor and parts
	// are kept as separate line items referencing the event.
	TimelineEvent struct {
		ID               string `json:"id"`
		Title            string `json:"title"`
		OccurredAt       string `json:"occurred_at"`
		VehicleID        string `json:"vehicle_id,omitempty"`
		VehicleName      string `json:"vehicle_name,omitempty"`
		VehicleImage     string `json:"vehicle_image,omitempty"`
		OrganizationID   string `json:"organization_id,omitempty"`
		OrganizationName string `json:"organization_name,omitempty"`
	}

	// LaborLine is one labor item attached to a timeline event.
	LaborLine struct {
		ID          string  `json:"id"`
		EventID     string  `json:"event_id"`
		Description string  `json:"description"`
		Hours       float64 `json:"hours"`
		Cost        Money   `json:"cost"`
	}

	// PartLine is one parts item attached to a timeline event.
	PartLine struct {
		ID       string `json:"id"`
		EventID  string `json:"event_id"`
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
		Price    Money  `json:"price"`
	}
)

var (
	ErrEmptyDate       = errors.New("empty date")
	ErrNegativeCount   = errors.New("negative count")
	ErrUnknownType     = errors.New("unknown contribution type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyDescriptor = errors.New("empty description")
)

// KnownType reports whether t is one of the recognized contribution types.
// Unknown types still aggregate (at the default weight), so this is a
// validation aid for the ingest path, not an engine precondition.
func KnownType(t ContributionType) bool {
	switch t {
	case TypeVehicleData, TypeImageUpload, TypeTimelineEvent,
		TypeVerification, TypeAnnotation, TypeBusinessEvent:
		return true
	}
	return false
}

func (r ContributionRecord) Validate() error {
	if r.Count < 0 {
		return ErrNegativeCount
	}
	if !KnownType(r.Type) {
		return ErrUnknownType
	}
	return nil
}

func (w ContractorWork) Validate() error {
	if len(strings.TrimSpace(w.Description)) == 0 {
		return ErrEmptyDescriptor
	}
	if strings.TrimSpace(w.OccurredAt) == "" {
		return ErrEmptyDate
	}
	if w.LaborHours < 0 {
		return ErrInvalidAmount
	}
	if w.LaborValue.Cents < 0 || w.MaterialsCost.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
