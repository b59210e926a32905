package models

import "time"

// Event represents a recorded user interaction.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	ToolName  string    `json:"toolName"`
	Timestamp time.Time `json:"timestamp"`
}

// Interaction types emitted by the site and the traffic simulator.
const (
	PageView            = "page_view"
	ToolUsage           = "tool_usage"
	ContactFormSubmit   = "contact_form_submit" // logged for every accepted contact message
	NavClick            = "nav_click"
	LearnMoreClick      = "learn_more_click"
	ContactUsClick      = "contact_us_click"
	SendMessageClick    = "send_message_click"
	BackToHomeClick     = "back_to_home_click"
	BackToHomepageClick = "back_to_homepage_click"
	ChatWithUsClick     = "chat_with_us_click"
	Custom              = "custom"
)

// OtherEventType labels any type outside EventTypes in metrics.
const OtherEventType = "other"

// EventTypes lists the known interaction types. Any string is accepted as an
// event type; this set only bounds metric labels.
var EventTypes = []string{
	PageView,
	ToolUsage,
	ContactFormSubmit,
	NavClick,
	LearnMoreClick,
	ContactUsClick,
	SendMessageClick,
	BackToHomeClick,
	BackToHomepageClick,
	ChatWithUsClick,
	Custom,
}

var knownEventTypes = func() map[string]bool {
	m := make(map[string]bool, len(EventTypes))
	for _, t := range EventTypes {
		m[t] = true
	}
	return m
}()

// EventTypeLabel returns eventType when it is known, else OtherEventType.
func EventTypeLabel(eventType string) string {
	if knownEventTypes[eventType] {
		return eventType
	}
	return OtherEventType
}
