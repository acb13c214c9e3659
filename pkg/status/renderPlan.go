package status

import "strings"

type SlotPosition string

const (
	BottomLeft   SlotPosition = "bottom-left"
	BottomCenter SlotPosition = "bottom-center"
	BottomRight  SlotPosition = "bottom-right"
)

const MaxSlots = 3

// layouts is keyed by the number of indicators only
var layouts = map[int][]SlotPosition{
	1: {BottomRight},
	2: {BottomLeft, BottomRight},
	3: {BottomLeft, BottomCenter, BottomRight},
}

type Slot struct {
	Position SlotPosition `json:"position"`
	Color    string       `json:"color"`
	Symbol   string       `json:"symbol"`
}

// RenderPlan is what a key shows for a snapshot: indicator slots in
// configuration order, and the symbol line used when no icon can be drawn
type RenderPlan struct {
	Slots []Slot `json:"slots"`
	Title string `json:"title"`
}

// BuildRenderPlan never reorders: slot i always shows status i
func BuildRenderPlan(statuses []Normalized) RenderPlan {
	count := len(statuses)
	if count > MaxSlots {
		count = MaxSlots
	}

	plan := RenderPlan{
		Slots: make([]Slot, 0, count),
		Title: Title(statuses),
	}
	for i, position := range layouts[count] {
		plan.Slots = append(plan.Slots, Slot{
			Position: position,
			Color:    statuses[i].Color,
			Symbol:   statuses[i].Symbol,
		})
	}

	return plan
}

// Title is the plain text fallback, one symbol per status
func Title(statuses []Normalized) string {
	symbols := make([]string, 0, len(statuses))
	for _, s := range statuses {
		symbols = append(symbols, s.Symbol)
	}
	return strings.Join(symbols, " ")
}
