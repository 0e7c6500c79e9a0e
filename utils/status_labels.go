package utils

// StatusPresentation is how a status is shown on the dashboard and pages.
type StatusPresentation struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

const (
	StatusKindBooking = "booking"
	StatusKindOrder   = "order"
)

// statusLabels is the only label/colour table; every page reads it through
// StatusLabel or GET /meta/statuses.
var statusLabels = map[string]map[string]StatusPresentation{
	StatusKindBooking: {
		"PENDING":   {Label: "Pending", Color: "yellow"},
		"CONFIRMED": {Label: "Confirmed", Color: "green"},
		"CANCELLED": {Label: "Cancelled", Color: "red"},
		"COMPLETED": {Label: "Completed", Color: "blue"},
	},
	StatusKindOrder: {
		"PENDING":   {Label: "Pending", Color: "yellow"},
		"PREPARING": {Label: "Preparing", Color: "orange"},
		"COMPLETED": {Label: "Completed", Color: "green"},
		"CANCELLED": {Label: "Cancelled", Color: "red"},
	},
}

var unknownStatus = StatusPresentation{Label: "Unknown", Color: "gray"}

func StatusLabel(kind, status string) StatusPresentation {
	if p, ok := statusLabels[kind][status]; ok {
		return p
	}
	return unknownStatus
}

// StatusLabels returns a copy of the whole table.
func StatusLabels() map[string]map[string]StatusPresentation {
	out := make(map[string]map[string]StatusPresentation, len(statusLabels))
	for kind, m := range statusLabels {
		inner := make(map[string]StatusPresentation, len(m))
		for k, v := range m {
			inner[k] = v
		}
		out[kind] = inner
	}
	return out
}
