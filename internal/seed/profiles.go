package seed

import "clinical-intel/internal/models"

type med struct {
	name  string
	class models.MedicationClass
	dose  string
	route string
}

type lab struct {
	name string
	unit string
	mean float64
	sd   float64
}

// profile is a clinical presentation that synthetic patients are drawn from.
// Patients sharing a profile get overlapping note vocabulary, so they end up
// close in embedding space.
type profile struct {
	diagnosis  string
	department models.Department
	ageMin     int
	ageMax     int
	weight     int
	findings   []string
	plans      []string
	meds       []med
	labs       []lab
}

var profiles = []profile{
	{
		diagnosis:  "B-cell ALL",
		department: models.DepartmentOncology,
		ageMin:     2,
		ageMax:     12,
		weight:     4,
		findings: []string{
			"neutropenic fever to 38.9",
			"fatigue and pallor",
			"bruising over the lower extremities",
			"nausea and vomiting after chemotherapy",
			"mucositis with decreased oral intake",
			"bone pain in both legs",
		},
		plans: []string{
			"continue induction chemotherapy per protocol",
			"start cefepime for febrile neutropenia and obtain blood cultures",
			"ondansetron before each chemotherapy dose",
			"transfuse packed red cells for hemoglobin below 7",
			"repeat bone marrow aspirate at day 29",
		},
		meds: []med{
			{"Vincristine", models.MedicationClassChemotherapy, "1.5 mg/m2", "IV"},
			{"Methotrexate", models.MedicationClassChemotherapy, "12 mg", "Intrathecal"},
			{"Pegaspargase", models.MedicationClassChemotherapy, "2500 units/m2", "IV"},
			{"Dexamethasone", models.MedicationClassSteroid, "6 mg/m2/day", "PO"},
			{"Ondansetron", models.MedicationClassAntiemetic, "0.15 mg/kg", "IV"},
			{"Filgrastim", models.MedicationClassGrowthFactor, "5 mcg/kg", "SC"},
			{"Cefepime", models.MedicationClassAntibiotic, "50 mg/kg", "IV"},
		},
		labs: []lab{
			{"WBC", "K/uL", 2.1, 1.4},
			{"Hemoglobin", "g/dL", 8.4, 1.2},
			{"Platelets", "K/uL", 62, 30},
			{"ANC", "cells/uL", 450, 300},
		},
	},
	{
		diagnosis:  "Neuroblastoma",
		department: models.DepartmentOncology,
		ageMin:     1,
		ageMax:     6,
		weight:     2,
		findings: []string{
			"abdominal mass on exam",
			"periorbital ecchymosis",
			"irritability and poor appetite",
			"neutropenic fever after cycle 2",
			"constipation and abdominal distension",
		},
		plans: []string{
			"cycle of cyclophosphamide and doxorubicin",
			"G-CSF support until count recovery",
			"MIBG scan to reassess disease",
			"granisetron and aprepitant for chemotherapy-induced nausea",
		},
		meds: []med{
			{"Cyclophosphamide", models.MedicationClassChemotherapy, "1200 mg/m2", "IV"},
			{"Doxorubicin", models.MedicationClassChemotherapy, "25 mg/m2", "IV"},
			{"Pegfilgrastim", models.MedicationClassGrowthFactor, "0.1 mg/kg", "SC"},
			{"Granisetron", models.MedicationClassAntiemetic, "40 mcg/kg", "IV"},
			{"Morphine", models.MedicationClassAnalgesic, "0.05 mg/kg", "IV"},
		},
		labs: []lab{
			{"WBC", "K/uL", 3.0, 1.6},
			{"Hemoglobin", "g/dL", 9.0, 1.1},
			{"Platelets", "K/uL", 110, 45},
			{"LDH", "U/L", 780, 220},
		},
	},
	{
		diagnosis:  "Asthma exacerbation",
		department: models.DepartmentPulmonology,
		ageMin:     3,
		ageMax:     17,
		weight:     4,
		findings: []string{
			"wheezing and shortness of breath",
			"cough worse at night",
			"intercostal retractions",
			"oxygen saturation of 91 percent on room air",
			"prolonged expiratory phase",
		},
		plans: []string{
			"albuterol nebulizer every 2 hours and wean as tolerated",
			"oral prednisone for 5 days",
			"start fluticasone as controller therapy",
			"asthma action plan reviewed with family",
		},
		meds: []med{
			{"Albuterol", models.MedicationClassBronchodil, "2.5 mg", "Nebulized"},
			{"Ipratropium", models.MedicationClassBronchodil, "0.5 mg", "Nebulized"},
			{"Prednisone", models.MedicationClassSteroid, "2 mg/kg", "PO"},
			{"Fluticasone", models.MedicationClassSteroid, "88 mcg", "Inhaled"},
		},
		labs: []lab{
			{"WBC", "K/uL", 11.5, 3.0},
			{"Eosinophils", "%", 6.5, 2.5},
		},
	},
	{
		diagnosis:  "Community-acquired pneumonia",
		department: models.DepartmentGeneralPeds,
		ageMin:     1,
		ageMax:     14,
		weight:     3,
		findings: []string{
			"fever and productive cough",
			"crackles over the right lower lobe",
			"tachypnea with mild hypoxemia",
			"decreased appetite and fatigue",
		},
		plans: []string{
			"chest x-ray confirms right lower lobe consolidation",
			"ceftriaxone then transition to oral amoxicillin",
			"acetaminophen for fever",
			"supplemental oxygen to keep saturation above 92 percent",
		},
		meds: []med{
			{"Ceftriaxone", models.MedicationClassAntibiotic, "50 mg/kg", "IV"},
			{"Amoxicillin", models.MedicationClassAntibiotic, "45 mg/kg", "PO"},
			{"Acetaminophen", models.MedicationClassAnalgesic, "15 mg/kg", "PO"},
		},
		labs: []lab{
			{"WBC", "K/uL", 16.0, 4.0},
			{"CRP", "mg/dL", 8.5, 4.0},
			{"Hemoglobin", "g/dL", 12.0, 1.0},
		},
	},
	{
		diagnosis:  "Acute gastroenteritis",
		department: models.DepartmentEmergency,
		ageMin:     1,
		ageMax:     10,
		weight:     3,
		findings: []string{
			"vomiting and diarrhea for two days",
			"dry mucous membranes",
			"decreased urine output",
			"abdominal cramping",
		},
		plans: []string{
			"oral rehydration trial",
			"ondansetron once for vomiting",
			"IV fluid bolus for moderate dehydration",
			"return precautions reviewed",
		},
		meds: []med{
			{"Ondansetron", models.MedicationClassAntiemetic, "0.15 mg/kg", "PO"},
			{"Acetaminophen", models.MedicationClassAnalgesic, "15 mg/kg", "PO"},
		},
		labs: []lab{
			{"Sodium", "mmol/L", 136, 3},
			{"Potassium", "mmol/L", 3.8, 0.4},
			{"Bicarbonate", "mmol/L", 18, 3},
		},
	},
}

var (
	races   = []string{"White", "Black", "Asian", "Hispanic", "Other"}
	authors = []string{"Dr. Patel", "Dr. Nguyen", "Dr. Okafor", "Dr. Schmidt", "Dr. Rivera"}
	exams   = []string{
		"Vital signs reviewed.",
		"Child is alert and interactive.",
		"Lungs clear on the left.",
		"Parents at bedside and updated.",
		"No rash noted.",
	}
	// unparseable values seen in real lab feeds
	oddLabValues = []string{"pending", "hemolyzed", ">1000", "see comment"}
)
