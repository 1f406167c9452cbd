package records

import "github.com/jwalitptl/hospital-portal/internal/model"

func clonePatient(p *model.PatientRecord) *model.PatientRecord {
	if p == nil {
		return nil
	}
	out := *p
	if p.MedicalHistory != nil {
		out.MedicalHistory = make([]model.MedicalVisit, len(p.MedicalHistory))
		for i := range p.MedicalHistory {
			out.MedicalHistory[i] = *cloneVisit(&p.MedicalHistory[i])
		}
	}
	return &out
}

func cloneVisit(v *model.MedicalVisit) *model.MedicalVisit {
	out := *v
	out.Tests = cloneTests(v.Tests)
	if v.Prescriptions != nil {
		out.Prescriptions = append([]model.Prescription{}, v.Prescriptions...)
	}
	return &out
}

func cloneTests(tests []model.Test) []model.Test {
	if tests == nil {
		return nil
	}
	out := make([]model.Test, len(tests))
	for i := range tests {
		out[i] = *cloneTest(&tests[i])
	}
	return out
}

func cloneTest(t *model.Test) *model.Test {
	out := *t
	if t.Report != nil {
		report := *t.Report
		out.Report = &report
	}
	return &out
}

func cloneStaff(u *model.StaffUser) *model.StaffUser {
	out := *u
	return &out
}

func cloneActiveVisit(v *model.ActiveVisit) *model.ActiveVisit {
	out := *v
	return &out
}
