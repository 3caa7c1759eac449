package model

import (
	"fmt"
	"math"
	"strings"
)

// Byte limits per text field, carried over from the on-chain account layout.
const (
	MaxTitleLen       = 50
	MaxDescriptionLen = 200
	MaxCountryLen     = 50
	MaxCityLen        = 50
	MaxLocationLen    = 100
	MaxCategoryLen    = 30
	MaxImageURLLen    = 200

	// MaxCapacity is the largest participant list a record can hold.
	MaxCapacity = 255
)

// CreateTableRequest is the payload for creating a new record.
type CreateTableRequest struct {
	Title           string `json:"title"           yaml:"title"`
	Description     string `json:"description"     yaml:"description"`
	MaxParticipants int    `json:"max_participants" yaml:"max_participants"`
	Country         string `json:"country"         yaml:"country"`
	City            string `json:"city"            yaml:"city"`
	Location        string `json:"location"        yaml:"location"`
	Price           uint64 `json:"price"           yaml:"price"`
	Date            int64  `json:"date"            yaml:"date"`
	Category        string `json:"category"        yaml:"category"`
	ImageURL        string `json:"image_url"       yaml:"image_url"`
}

// Validate checks that every field is present and within bounds. Values are
// never rewritten; a whitespace-only field counts as missing.
func (r *CreateTableRequest) Validate(kind Kind) error {
	for _, f := range r.textFields() {
		if strings.TrimSpace(*f.value) == "" {
			return InvalidInput(kind, f.name, f.name+" is required")
		}
		if len(*f.value) > f.max {
			return InvalidInput(kind, f.name, fmt.Sprintf("%s cannot exceed %d bytes", f.name, f.max))
		}
	}
	if r.MaxParticipants <= 0 {
		return InvalidInput(kind, "max_participants", "max_participants must be a positive integer")
	}
	if r.MaxParticipants > MaxCapacity {
		return InvalidInput(kind, "max_participants", fmt.Sprintf("max_participants cannot exceed %d", MaxCapacity))
	}
	// Stored in signed 64-bit columns.
	if r.Price > math.MaxInt64 {
		return InvalidInput(kind, "price", "price is out of range")
	}
	return nil
}

type textField struct {
	name  string
	value *string
	max   int
}

func (r *CreateTableRequest) textFields() []textField {
	return []textField{
		{"title", &r.Title, MaxTitleLen},
		{"description", &r.Description, MaxDescriptionLen},
		{"country", &r.Country, MaxCountryLen},
		{"city", &r.City, MaxCityLen},
		{"location", &r.Location, MaxLocationLen},
		{"category", &r.Category, MaxCategoryLen},
		{"image_url", &r.ImageURL, MaxImageURLLen},
	}
}
