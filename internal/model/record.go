// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Record is a single row of either entity. Livre and Couleur share the same
// shape; which collection a Record belongs to is decided by the Kind it is
// stored under, not by the struct itself.
//
// The `json:"..."` tags give the wire shape:
//
//	{"id":"2f1c...","name":"Rouge","createdAt":"...","updatedAt":"..."}
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Kind names one of the two independent collections.
type Kind struct {
	Name  string // singular, used in messages: "Couleur not found"
	Table string // table name in the store
}

var (
	Livre   = Kind{Name: "Livre", Table: "Livres"}
	Couleur = Kind{Name: "Couleur", Table: "Couleurs"}
)

// Kinds lists every collection the store must carry.
var Kinds = []Kind{Livre, Couleur}

func (k Kind) String() string {
	return k.Name
}
