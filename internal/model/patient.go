package model

type TestStatus string

const (
	TestStatusPending   TestStatus = "pending"
	TestStatusCompleted TestStatus = "completed"
)

type VisitStatus string

const (
	VisitStatusActive    VisitStatus = "active"
	VisitStatusCompleted VisitStatus = "completed"
	VisitStatusCancelled VisitStatus = "cancelled"
)

// PatientRecord is the permanent record of one patient, keyed by PatientID.
type PatientRecord struct {
	PatientID        string         `json:"patientId"`
	Password         string         `json:"password"`
	Name             string         `json:"name"`
	DOB              string         `json:"dob"`
	Age              int            `json:"age"`
	Gender           string         `json:"gender"`
	MedicalHistory   []MedicalVisit `json:"medicalHistory"`
	ContactNumber    string         `json:"contactNumber"`
	Allergies        string         `json:"allergies"`
	Email            string         `json:"email,omitempty"`
	Address          string         `json:"address,omitempty"`
	BloodGroup       string         `json:"bloodGroup,omitempty"`
	EmergencyContact string         `json:"emergencyContact,omitempty"`
	CurrentVisitID   string         `json:"currentVisitId,omitempty"`
}

// CurrentVisit returns the visit that clinical updates apply to.
// Records written before currentVisitId existed fall back to the last entry.
func (p *PatientRecord) CurrentVisit() *MedicalVisit {
	if len(p.MedicalHistory) == 0 {
		return nil
	}
	if p.CurrentVisitID != "" {
		for i := range p.MedicalHistory {
			if p.MedicalHistory[i].ID == p.CurrentVisitID {
				return &p.MedicalHistory[i]
			}
		}
	}
	return &p.MedicalHistory[len(p.MedicalHistory)-1]
}

// AppendVisit adds v to the history and makes it the current visit.
func (p *PatientRecord) AppendVisit(v MedicalVisit) *MedicalVisit {
	p.MedicalHistory = append(p.MedicalHistory, v)
	p.CurrentVisitID = v.ID
	return &p.MedicalHistory[len(p.MedicalHistory)-1]
}

// MedicalVisit is one encounter. VisitToken is only unique within its date.
type MedicalVisit struct {
	ID            string         `json:"id"`
	Date          string         `json:"date"`
	Department    string         `json:"department"`
	Doctor        string         `json:"doctor"`
	Symptoms      string         `json:"symptoms"`
	Diagnosis     string         `json:"diagnosis"`
	Treatment     string         `json:"treatment"`
	Tests         []Test         `json:"tests"`
	Prescriptions []Prescription `json:"prescriptions"`
	VisitToken    string         `json:"visitToken"`
	VisitStatus   VisitStatus    `json:"visitStatus"`
}

func (v *MedicalVisit) FindTest(id string) *Test {
	for i := range v.Tests {
		if v.Tests[i].ID == id {
			return &v.Tests[i]
		}
	}
	return nil
}

func (v *MedicalVisit) FindPrescription(id string) *Prescription {
	for i := range v.Prescriptions {
		if v.Prescriptions[i].ID == id {
			return &v.Prescriptions[i]
		}
	}
	return nil
}

// Test tracks IsPerformed separately from Status: a nurse can perform a
// test before any report exists.
type Test struct {
	ID               string      `json:"id"`
	Name             string      `json:"name" binding:"required"`
	Status           TestStatus  `json:"status" binding:"omitempty,oneof=pending completed"`
	Date             string      `json:"date"`
	Report           *TestReport `json:"report,omitempty"`
	IsPerformed      bool        `json:"isPerformed"`
	UploadedReport   string      `json:"uploadedReport,omitempty"`
	UploadedFileData string      `json:"uploadedFileData,omitempty"`
	UploadedFileType string      `json:"uploadedFileType,omitempty"`
}

type TestReport struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	FileName   string `json:"fileName,omitempty"`
	FileData   string `json:"fileData,omitempty"`
	FileType   string `json:"fileType,omitempty"`
	UploadedBy string `json:"uploadedBy,omitempty"`
	UploadedAt string `json:"uploadedAt,omitempty"`
}

type Prescription struct {
	ID       string `json:"id"`
	Medicine string `json:"medicine" binding:"required"`
	Dosage   string `json:"dosage"`
	Timing   string `json:"timing"`
	IsIssued bool   `json:"isIssued"`
}

// ReportUpload carries a nurse's report for one test. FileData is the
// inline (base64 data URL) attachment.
type ReportUpload struct {
	ReportName string `json:"report_name" binding:"required"`
	Content    string `json:"content"`
	FileData   string `json:"file_data"`
	FileType   string `json:"file_type"`
	UploadedBy string `json:"uploaded_by"`
}

// VisitUpdate changes the current visit. Nil slices and empty strings are
// left untouched.
type VisitUpdate struct {
	Tests         []Test         `json:"tests"`
	Prescriptions []Prescription `json:"prescriptions"`
	Diagnosis     string         `json:"diagnosis"`
	Treatment     string         `json:"treatment"`
}
