package plg

import (
	"math/rand"
	"strconv"

	"github.com/google/uuid"
)

// EventTypes are the interaction types the demo site emits.
var EventTypes = []string{
	"page_view",
	"tool_usage",
	"contact_form_submit",
	"nav_click",
	"learn_more_click",
	"contact_us_click",
	"back_to_home_click",
	"back_to_homepage_click",
	"chat_with_us_click",
	"custom",
}

// Products and budgets offered by the contact form.
var (
	SimulatedProducts = []string{"Product One", "Product Two", "General"}
	BudgetRanges      = []string{"< $1,000", "$1,000 - $5,000", "$5,000 - $10,000", "> $10,000"}
)

// SessionDetails is attached to every simulated event.
type SessionDetails struct {
	Session string `json:"session"`
	Step    int    `json:"step"`
}

// Session builds the event sequence of one simulated visitor: a landing
// page view, a browse through the product list, and a random tail of
// product interactions. Only the landing event carries details in place of
// a tool name, so it exercises the details fallback.
func Session(r *rand.Rand) []Event {
	id := uuid.NewString()
	product := SimulatedProducts[r.Intn(len(SimulatedProducts)-1)]

	events := []Event{
		{Type: "page_view", Details: SessionDetails{Session: id, Step: 0}},
		{Type: "nav_click", ToolName: "our_products"},
		{Type: "learn_more_click", ToolName: product},
	}

	tail := []string{"chat_with_us_click", "back_to_homepage_click", "contact_us_click", "tool_usage"}
	for i, n := 0, r.Intn(len(tail)+1); i < n; i++ {
		events = append(events, Event{Type: tail[r.Intn(len(tail))], ToolName: product})
	}
	return events
}

// Lead builds a random contact message.
func Lead(r *rand.Rand) ContactMessage {
	n := r.Intn(10000)
	return ContactMessage{
		Name:    "Simulated Lead " + strconv.Itoa(n),
		Email:   "lead" + strconv.Itoa(n) + "@example.com",
		Company: "Example Co",
		Budget:  BudgetRanges[r.Intn(len(BudgetRanges))],
		Message: "Simulated inquiry",
		Product: SimulatedProducts[r.Intn(len(SimulatedProducts))],
	}
}
