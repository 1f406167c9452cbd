package records

import (
	"time"

	"github.com/jwalitptl/hospital-portal/internal/model"
)

const defaultPatientPassword = "patient123"

// bootstrapPatients returns a fresh copy of the demo patients. Seeded
// reports are stamped with now.
func bootstrapPatients(now time.Time) map[string]*model.PatientRecord {
	uploadedAt := now.UTC().Format(time.RFC3339)
	report := func(title, content string) *model.TestReport {
		return &model.TestReport{
			Title:      title,
			Content:    content,
			FileName:   title + ".pdf",
			UploadedBy: "Nurse",
			UploadedAt: uploadedAt,
		}
	}

	return map[string]*model.PatientRecord{
		"P001": {
			PatientID:     "P001",
			Password:      defaultPatientPassword,
			Name:          "Vaseekar",
			DOB:           "1990-05-15",
			Age:           35,
			Gender:        "Male",
			ContactNumber: "+1-555-0123",
			Allergies:     "Penicillin",
			Email:         "vaseekar@email.com",
			BloodGroup:    "O+",
			MedicalHistory: []model.MedicalVisit{{
				ID:          "visit1",
				Date:        "2025-01-15",
				Department:  "Cardiology",
				Doctor:      "Dr. Kaviya",
				Symptoms:    "Chest pain, shortness of breath",
				Diagnosis:   "Hypertension",
				Treatment:   "Prescribed medication",
				VisitToken:  "001",
				VisitStatus: model.VisitStatusCompleted,
				Tests: []model.Test{
					{
						ID:             "test1",
						Name:           "Blood Test",
						Status:         model.TestStatusCompleted,
						Date:           "2025-01-15",
						Report:         report("Blood Test Report", "All parameters normal. Hemoglobin: 14.5 g/dL, WBC: 7000/µL, Platelets: 250,000/µL"),
						IsPerformed:    true,
						UploadedReport: "Blood Test Report.pdf",
					},
					{
						ID:             "test2",
						Name:           "ECG",
						Status:         model.TestStatusCompleted,
						Date:           "2025-01-15",
						Report:         report("ECG Report", "Normal sinus rhythm. Heart rate: 72 bpm. No abnormalities detected."),
						IsPerformed:    true,
						UploadedReport: "ECG Report.pdf",
					},
				},
				Prescriptions: []model.Prescription{
					{ID: "presc1", Medicine: "Aspirin", Dosage: "100mg", Timing: "Once daily", IsIssued: true},
					{ID: "presc2", Medicine: "Lisinopril", Dosage: "10mg", Timing: "Twice daily", IsIssued: true},
				},
			}},
			CurrentVisitID: "visit1",
		},
		"P002": {
			PatientID:     "P002",
			Password:      defaultPatientPassword,
			Name:          "Hariharan",
			DOB:           "1985-08-20",
			Age:           39,
			Gender:        "Male",
			ContactNumber: "+1-555-0124",
			Allergies:     "None",
			Email:         "hariharan@email.com",
			BloodGroup:    "A+",
			MedicalHistory: []model.MedicalVisit{{
				ID:          "visit2",
				Date:        "2024-12-20",
				Department:  "General Medicine",
				Doctor:      "Dr. Pragadish",
				Symptoms:    "Persistent cough, fever",
				Diagnosis:   "Common Cold",
				Treatment:   "Rest and fluids",
				VisitToken:  "002",
				VisitStatus: model.VisitStatusCompleted,
				Tests: []model.Test{{
					ID:             "test3",
					Name:           "Chest X-Ray",
					Status:         model.TestStatusCompleted,
					Date:           "2024-12-20",
					Report:         report("Chest X-Ray Report", "No significant findings. Lungs appear clear."),
					IsPerformed:    true,
					UploadedReport: "Chest X-Ray Report.pdf",
				}},
				Prescriptions: []model.Prescription{
					{ID: "presc3", Medicine: "Paracetamol", Dosage: "500mg", Timing: "Three times daily", IsIssued: true},
				},
			}},
			CurrentVisitID: "visit2",
		},
		"P003": {
			PatientID:      "P003",
			Password:       defaultPatientPassword,
			Name:           "sai dharan",
			DOB:            "1992-12-10",
			Age:            32,
			Gender:         "Male",
			ContactNumber:  "+1-555-0125",
			Allergies:      "Sulfa drugs",
			Email:          "sai.dharan@email.com",
			BloodGroup:     "B+",
			MedicalHistory: []model.MedicalVisit{},
		},
	}
}

func bootstrapStaff() map[string]*model.StaffUser {
	return map[string]*model.StaffUser{
		"D001": {ID: "D001", Password: "doctor123", Name: "Dr. Kaviya", Role: model.StaffRoleDoctor, Department: "Cardiology", Specialization: "Cardiologist", ContactNumber: "+1-555-1001"},
		"D002": {ID: "D002", Password: "doctor123", Name: "Dr. Pragadish", Role: model.StaffRoleDoctor, Department: "General Medicine", Specialization: "General Physician", ContactNumber: "+1-555-1002"},
		"N001": {ID: "N001", Password: "nurse123", Name: "Nurse Surya", Role: model.StaffRoleNurse, Department: "General", ContactNumber: "+1-555-2001"},
		"N002": {ID: "N002", Password: "nurse123", Name: "Nurse Rohith", Role: model.StaffRoleNurse, Department: "Emergency", ContactNumber: "+1-555-2002"},
		"A001": {ID: "A001", Password: "admin123", Name: "Admin Krishiv", Role: model.StaffRoleAdmin, ContactNumber: "+1-555-3001"},
		"R001": {ID: "R001", Password: "reception123", Name: "Reception Mary", Role: model.StaffRoleReceptionist, ContactNumber: "+1-555-4001"},
	}
}
