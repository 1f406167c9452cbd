package model

// SessionRole names one of the four portals.
type SessionRole string

const (
	SessionPatient SessionRole = "patient"
	SessionDoctor  SessionRole = "doctor"
	SessionNurse   SessionRole = "nurse"
	SessionAdmin   SessionRole = "admin"
)

var SessionRoles = []SessionRole{SessionPatient, SessionDoctor, SessionNurse, SessionAdmin}

func (r SessionRole) Valid() bool {
	for _, role := range SessionRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Key is the storage key of the portal's session blob.
func (r SessionRole) Key() string {
	return string(r) + "_session"
}

// Session is the logged-in identity for one portal. Patients carry ID,
// staff carry StaffID.
type Session struct {
	ID         string `json:"id,omitempty"`
	StaffID    string `json:"staffId,omitempty"`
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
}

// Subject returns whichever identifier the session carries.
func (s *Session) Subject() string {
	if s.StaffID != "" {
		return s.StaffID
	}
	return s.ID
}
