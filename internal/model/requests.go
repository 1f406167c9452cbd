package model

type RegisterPatientRequest struct {
	Name             string `json:"name" binding:"required"`
	DOB              string `json:"dob" binding:"required,datetime=2006-01-02"`
	Age              int    `json:"age" binding:"omitempty,min=0,max=150"`
	Gender           string `json:"gender" binding:"required"`
	ContactNumber    string `json:"contactNumber" binding:"required"`
	Email            string `json:"email" binding:"omitempty,email"`
	Password         string `json:"password" binding:"required"`
	Allergies        string `json:"allergies"`
	BloodGroup       string `json:"bloodGroup" binding:"omitempty,bloodgroup"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergencyContact"`
}

type AddStaffRequest struct {
	Name           string    `json:"name" binding:"required"`
	Role           StaffRole `json:"role" binding:"required,oneof=doctor nurse admin receptionist"`
	Password       string    `json:"password" binding:"required"`
	Department     string    `json:"department"`
	Specialization string    `json:"specialization"`
	ContactNumber  string    `json:"contactNumber"`
}

type LoginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type StaffLoginRequest struct {
	LoginRequest
	Portal SessionRole `json:"portal" binding:"required,oneof=doctor nurse admin"`
}

type BookVisitRequest struct {
	Department string `json:"department" binding:"required"`
	Doctor     string `json:"doctor" binding:"required"`
}

type UpdateVisitStatusRequest struct {
	Status ActiveVisitStatus `json:"status" binding:"required,oneof=waiting in-progress completed"`
}

type AddTestsRequest struct {
	Tests []Test `json:"tests" binding:"required,min=1,dive"`
}

type AddPrescriptionsRequest struct {
	Prescriptions []Prescription `json:"prescriptions" binding:"required,min=1,dive"`
}

type FlagRequest struct {
	Value *bool `json:"value" binding:"required"`
}
