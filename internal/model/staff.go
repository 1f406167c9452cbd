package model

type StaffRole string

const (
	StaffRoleDoctor       StaffRole = "doctor"
	StaffRoleNurse        StaffRole = "nurse"
	StaffRoleAdmin        StaffRole = "admin"
	StaffRoleReceptionist StaffRole = "receptionist"
)

// IDPrefix is the letter staff ids of this role start with.
func (r StaffRole) IDPrefix() string {
	switch r {
	case StaffRoleDoctor:
		return "D"
	case StaffRoleNurse:
		return "N"
	case StaffRoleAdmin:
		return "A"
	default:
		return "R"
	}
}

type StaffUser struct {
	ID             string    `json:"id"`
	Password       string    `json:"password"`
	Name           string    `json:"name"`
	Role           StaffRole `json:"role"`
	Department     string    `json:"department,omitempty"`
	Specialization string    `json:"specialization,omitempty"`
	ContactNumber  string    `json:"contactNumber,omitempty"`
}
