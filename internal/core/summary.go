package core

// SourceKind tells which collection a WorkEntry was normalized from.
type SourceKind string

const (
	SourceContractorWork SourceKind = "contractor_work"
	SourceTimelineEvent  SourceKind = "timeline_event"
)

// PartUse is a parts line folded into a WorkEntry.
type PartUse struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    Money  `json:"price"`
}

// WorkEntry is the normalized view shared by contractor-work records and
// timeline events with their labor/parts folded in. One shape, so the day
// receipt can roll both up without caring where a record came from.
type WorkEntry struct {
	ID               string     `json:"id"`
	SourceKind       SourceKind `json:"source_kind"`
	Description      string     `json:"description"`
	Timestamp        string     `json:"timestamp"`
	OrganizationID   string     `json:"organization_id,omitempty"`
	OrganizationName string     `json:"organization_name,omitempty"`
	LaborHours       float64    `json:"labor_hours"`
	LaborValue       Money      `json:"labor_value"`
	MaterialsCost    Money      `json:"materials_cost"`
	TotalValue       Money      `json:"total_value"`
	VehicleID        string     `json:"vehicle_id,omitempty"`
	Parts            []PartUse  `json:"parts,omitempty"`
}

// LocationSummary is the per-organization rollup inside a day receipt.
type LocationSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
	Value Money   `json:"value"`
}

// VehicleRef identifies a vehicle touched on a given day. The first image
// seen for a vehicle wins; later entries never overwrite it.
type VehicleRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// DaySummary is the itemized receipt for a single calendar day.
// TotalEarned is always exactly TotalLaborValue + TotalMaterialsCost.
type DaySummary struct {
	Date               string            `json:"date"`
	TotalLaborHours    float64           `json:"total_labor_hours"`
	TotalLaborValue    Money             `json:"total_labor_value"`
	TotalMaterialsCost Money             `json:"total_materials_cost"`
	TotalEarned        Money             `json:"total_earned"`
	Locations          []LocationSummary `json:"locations"`
	Vehicles           []VehicleRef      `json:"vehicles"`
	Entries            []WorkEntry       `json:"entries"`
}

// Empty reports whether the summary carries no entries at all.
func (s *DaySummary) Empty() bool {
	return len(s.Entries) == 0
}
