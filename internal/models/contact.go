package models

import "time"

// ContactMessage represents a submitted lead-capture form.
type ContactMessage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Phone     string    `json:"phone"`
	Budget    string    `json:"budget"`
	Message   string    `json:"message"`
	Product   string    `json:"product"`
	Timestamp time.Time `json:"timestamp"`
}
