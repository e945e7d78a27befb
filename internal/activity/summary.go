package activity

import "garagelog/internal/core"

// Sources are the four record collections a day receipt draws from. The
// data layer prefilters them loosely; CompileDay re-filters by normalized
// date so the receipt and the calendar can never disagree on what counts
// as "that day".
type Sources struct {
	ContractorWork []core.ContractorWork
	TimelineEvents []core.TimelineEvent
	LaborLines     []core.LaborLine
	PartsLines     []core.PartLine
}

// CompileDay gathers every record touching one civil date into an itemized
// receipt: one WorkEntry per contractor-work record, one per timeline
// event with its labor and parts folded in, rolled up by organization and
// by vehicle, with cent-exact grand totals. A date with no records yields
// a well-formed empty summary, never an error.
func CompileDay(date Day, src Sources) *core.DaySummary {
	summary := &core.DaySummary{
		Date:      string(date),
		Locations: []core.LocationSummary{},
		Vehicles:  []core.VehicleRef{},
		Entries:   []core.WorkEntry{},
	}

	for _, w := range src.ContractorWork {
		if Normalize(w.OccurredAt) != date {
			continue
		}
		summary.Entries = append(summary.Entries, core.WorkEntry{
			ID:               w.ID,
			SourceKind:       core.SourceContractorWork,
			Description:      w.Description,
			Timestamp:        w.OccurredAt,
			OrganizationID:   w.OrganizationID,
			OrganizationName: w.OrganizationName,
			LaborHours:       w.LaborHours,
			LaborValue:       w.LaborValue,
			MaterialsCost:    w.MaterialsCost,
			TotalValue:       w.LaborValue.Add(w.MaterialsCost),
			VehicleID:        w.VehicleID,
		})
	}

	labor := make(map[string][]core.LaborLine)
	for _, l := range src.LaborLines {
		labor[l.EventID] = append(labor[l.EventID], l)
	}
	parts := make(map[string][]core.PartLine)
	for _, p := range src.PartsLines {
		parts[p.EventID] = append(parts[p.EventID], p)
	}

	for _, ev := range src.TimelineEvents {
		if Normalize(ev.OccurredAt) != date {
			continue
		}
		entry := core.WorkEntry{
			ID:               ev.ID,
			SourceKind:       core.SourceTimelineEvent,
			Description:      ev.Title,
			Timestamp:        ev.OccurredAt,
			OrganizationID:   ev.OrganizationID,
			OrganizationName: ev.OrganizationName,
			VehicleID:        ev.VehicleID,
		}
		for _, l := range labor[ev.ID] {
			entry.LaborHours += l.Hours
			entry.LaborValue = entry.LaborValue.Add(l.Cost)
		}
		for _, p := range parts[ev.ID] {
			entry.MaterialsCost = entry.MaterialsCost.Add(p.Price)
			entry.Parts = append(entry.Parts, core.PartUse{
				Name:     p.Name,
				Quantity: p.Quantity,
				Price:    p.Price,
			})
		}
		// An event with no lines still produces an entry; the day touched
		// the vehicle even when nothing was billed.
		entry.TotalValue = entry.LaborValue.Add(entry.MaterialsCost)
		summary.Entries = append(summary.Entries, entry)
	}

	rollUp(summary, src.TimelineEvents)
	return summary
}

// rollUp fills the per-organization and per-vehicle groupings plus the
// grand totals from the compiled entries.
func rollUp(summary *core.DaySummary, events []core.TimelineEvent) {
	vehicleNames := make(map[string]core.VehicleRef, len(events))
	for _, ev := range events {
		if ev.VehicleID == "" {
			continue
		}
		ref, seen := vehicleNames[ev.VehicleID]
		if !seen {
			ref = core.VehicleRef{ID: ev.VehicleID, Name: ev.VehicleName}
		}
		if ref.Image == "" {
			ref.Image = ev.VehicleImage
		}
		vehicleNames[ev.VehicleID] = ref
	}

	locIndex := make(map[string]int)
	vehIndex := make(map[string]int)
	for _, e := range summary.Entries {
		summary.TotalLaborHours += e.LaborHours
		summary.TotalLaborValue = summary.TotalLaborValue.Add(e.LaborValue)
		summary.TotalMaterialsCost = summary.TotalMaterialsCost.Add(e.MaterialsCost)

		if e.OrganizationID != "" {
			i, ok := locIndex[e.OrganizationID]
			if !ok {
				i = len(summary.Locations)
				locIndex[e.OrganizationID] = i
				summary.Locations = append(summary.Locations, core.LocationSummary{
					ID:   e.OrganizationID,
					Name: e.OrganizationName,
				})
			}
			summary.Locations[i].Hours += e.LaborHours
			summary.Locations[i].Value = summary.Locations[i].Value.Add(e.TotalValue)
			if summary.Locations[i].Name == "" {
				summary.Locations[i].Name = e.OrganizationName
			}
		}

		if e.VehicleID != "" {
			if _, ok := vehIndex[e.VehicleID]; !ok {
				vehIndex[e.VehicleID] = len(summary.Vehicles)
				ref := vehicleNames[e.VehicleID]
				ref.ID = e.VehicleID
				summary.Vehicles = append(summary.Vehicles, ref)
			}
		}
	}

	summary.TotalEarned = summary.TotalLaborValue.Add(summary.TotalMaterialsCost)
}
