// Package calendar exports records as iCalendar documents.
package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/Shivanand-hulikatti/sola-table/internal/model"
)

// ProductID identifies this service in the PRODID property.
const ProductID = "-//sola-table//tables//EN"

// UID returns the globally unique calendar id of a record.
func UID(t *model.Table) string {
	return t.ID + "@sola-table"
}

// Encode writes a VCALENDAR holding a single VEVENT for t. stamp becomes DTSTAMP.
func Encode(w io.Writer, t *model.Table, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, UID(t))
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, time.Unix(t.Date, 0).UTC())
	event.Props.SetText(ical.PropSummary, t.Title)
	event.Props.SetText(ical.PropDescription, t.Description)
	event.Props.SetText(ical.PropLocation, location(t))
	event.Props.SetText(ical.PropCategories, t.Category)
	cal.Children = append(cal.Children, event.Component)

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func location(t *model.Table) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Location, t.City, t.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
