package model

type ActiveVisitStatus string

const (
	ActiveVisitWaiting    ActiveVisitStatus = "waiting"
	ActiveVisitInProgress ActiveVisitStatus = "in-progress"
	ActiveVisitCompleted  ActiveVisitStatus = "completed"
)

func (s ActiveVisitStatus) Valid() bool {
	switch s {
	case ActiveVisitWaiting, ActiveVisitInProgress, ActiveVisitCompleted:
		return true
	}
	return false
}

// ActiveVisit is the same-day queue projection of a MedicalVisit, keyed by
// TokenNumber. Tokens restart at 001 every day.
type ActiveVisit struct {
	TokenNumber string            `json:"tokenNumber"`
	PatientID   string            `json:"patientId"`
	PatientName string            `json:"patientName"`
	Department  string            `json:"department"`
	Doctor      string            `json:"doctor"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Status      ActiveVisitStatus `json:"status"`
	CreatedAt   string            `json:"createdAt"`
	VisitID     string            `json:"visitId,omitempty"`
}
