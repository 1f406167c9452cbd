package handler

import "github.com/jwalitptl/hospital-portal/internal/model"

// PatientResponse is a patient record without its password.
type PatientResponse struct {
	*model.PatientRecord
	Password string `json:"password,omitempty"`
}

func NewPatientResponse(p *model.PatientRecord) PatientResponse {
	return PatientResponse{PatientRecord: p}
}

func NewPatientListResponse(patients []*model.PatientRecord) []PatientResponse {
	out := make([]PatientResponse, 0, len(patients))
	for _, p := range patients {
		out = append(out, NewPatientResponse(p))
	}
	return out
}

// StaffResponse is a staff member without their password.
type StaffResponse struct {
	*model.StaffUser
	Password string `json:"password,omitempty"`
}

func NewStaffResponse(u *model.StaffUser) StaffResponse {
	return StaffResponse{StaffUser: u}
}

func NewStaffListResponse(staff []*model.StaffUser) []StaffResponse {
	out := make([]StaffResponse, 0, len(staff))
	for _, u := range staff {
		out = append(out, NewStaffResponse(u))
	}
	return out
}
