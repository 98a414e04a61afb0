package schema

// AdminAccountTable represents the 'admin.account' table
type AdminAccountTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsVerified   string
	OTP          string
	OTPExpiry    string
	CreatedAt    string
	UpdatedAt    string
}

// AdminAccount is the schema definition for admin.account
var AdminAccount = AdminAccountTable{
	Table:        "admin.account",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	PasswordHash: "passwordhash",
	IsVerified:   "isverified",
	OTP:          "otp",
	OTPExpiry:    "otpexpiry",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

func (t AdminAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.PasswordHash, t.IsVerified,
		t.OTP, t.OTPExpiry, t.CreatedAt, t.UpdatedAt,
	}
}
