package schema

// AdminEventTable represents the 'admin.event' table
type AdminEventTable struct {
	Table       string
	ID          string
	Title       string
	Slug        string
	Description string
	Location    string
	Image       string
	Status      string
	StartDate   string
	EndDate     string
	CreatedAt   string
	UpdatedAt   string
}

// AdminEvent is the schema definition for admin.event
var AdminEvent = AdminEventTable{
	Table:       "admin.event",
	ID:          "id",
	Title:       "title",
	Slug:        "slug",
	Description: "description",
	Location:    "location",
	Image:       "image",
	Status:      "status",
	StartDate:   "startdate",
	EndDate:     "enddate",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t AdminEventTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Description, t.Location, t.Image,
		t.Status, t.StartDate, t.EndDate, t.CreatedAt, t.UpdatedAt,
	}
}
