package notifications

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"roombook/pkg/model"
)

const (
	templateCreated   = "booking_created.html"
	templateCancelled = "booking_cancelled.html"

	dateLayout = "Mon 2 Jan 2006 15:04 MST"
)

//go:embed templates/*.html
var templatesFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}

type emailView struct {
	BookingID   int64
	Title       string
	RoomTitle   string
	Start       string
	End         string
	Description string
	BookerName  string
	CancelledBy string
}

func newEmailView(event model.BookingEvent, loc *time.Location) emailView {
	name := event.BookerName
	if name == "" {
		name = event.BookerEmail
	}
	return emailView{
		BookingID:   event.BookingID,
		Title:       event.Title,
		RoomTitle:   event.RoomTitle,
		Start:       event.StartTime.In(loc).Format(dateLayout),
		End:         event.EndTime.In(loc).Format(dateLayout),
		Description: event.Description,
		BookerName:  name,
		CancelledBy: event.CancelledBy,
	}
}

func render(tmpl *template.Template, name string, view emailView) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
