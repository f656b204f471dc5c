package domain

// Caller identifies who is performing an economy operation
type Caller struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// Ground is the pseudo owner of items discarded on the floor
const Ground = ""
