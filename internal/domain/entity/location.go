package entity

import "time"

// Location ubicación física (bin, rack, gabinete o máquina) con su código legible ("B1", "R3", "S2").
type Location struct {
	ID        string
	Kind      LocationKind
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
