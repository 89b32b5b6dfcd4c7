package google

import "github.com/harrisonrobin/taskday/pkg/model"

// Event colour ids from the Calendar API colors endpoint.
const (
	colorSage    = "2"
	colorBanana  = "5"
	colorTomato  = "11"
	colorDefault = ""
)

// colorID maps a task priority to an event colour. Unknown priorities
// keep whatever colour the event already has.
func colorID(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return colorTomato
	case model.PriorityMedium:
		return colorBanana
	case model.PriorityLow:
		return colorSage
	}
	return colorDefault
}
