package schema

// AdminContactTable represents the 'admin.contact' table
type AdminContactTable struct {
	Table     string
	ID        string
	Email     string
	FirstName string
	LastName  string
	Status    string
	CreatedAt string
	UpdatedAt string
}

// AdminContact is the schema definition for admin.contact
var AdminContact = AdminContactTable{
	Table:     "admin.contact",
	ID:        "id",
	Email:     "email",
	FirstName: "firstname",
	LastName:  "lastname",
	Status:    "status",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t AdminContactTable) Columns() []string {
	return []string{t.ID, t.Email, t.FirstName, t.LastName, t.Status, t.CreatedAt, t.UpdatedAt}
}
