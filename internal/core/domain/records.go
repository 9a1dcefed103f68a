package domain

import "time"

// NoteType selects which clinical note labels a retrieval targets.
type NoteType string

const (
	NoteTypeDischarge NoteType = "discharge"
	NoteTypeRadiology NoteType = "radiology"
	NoteTypeAll       NoteType = "all"
)

// Patient is a patient node. Property names follow the MIMIC-IV dataset.
type Patient struct {
	SubjectID       string     `json:"subject_id"`
	Gender          string     `json:"gender,omitempty"`
	AnchorAge       int        `json:"anchor_age,omitempty"`
	AnchorYear      int        `json:"anchor_year,omitempty"`
	AnchorYearGroup string     `json:"anchor_year_group,omitempty"`
	DOD             *time.Time `json:"dod,omitempty"`
}

// Admission is a hospital admission node.
type Admission struct {
	HadmID            string     `json:"hadm_id"`
	AdmissionType     string     `json:"admission_type,omitempty"`
	AdmitTime         *time.Time `json:"admittime,omitempty"`
	DischTime         *time.Time `json:"dischtime,omitempty"`
	DeathTime         *time.Time `json:"deathtime,omitempty"`
	AdmissionLocation string     `json:"admission_location,omitempty"`
	DischargeLocation string     `json:"discharge_location,omitempty"`
	Insurance         string     `json:"insurance,omitempty"`
	Language          string     `json:"language,omitempty"`
	MaritalStatus     string     `json:"marital_status,omitempty"`
	Race              string     `json:"race,omitempty"`
	EDRegTime         *time.Time `json:"edregtime,omitempty"`
	EDOutTime         *time.Time `json:"edouttime,omitempty"`
	HospitalExpire    int        `json:"hospital_expire_flag,omitempty"`
	AdmitProviderID   string     `json:"admit_provider_id,omitempty"`
}

// ClinicalNote is a discharge summary or radiology report.
type ClinicalNote struct {
	NoteID    string     `json:"note_id"`
	HadmID    string     `json:"hadm_id,omitempty"`
	SubjectID string     `json:"subject_id,omitempty"`
	NoteType  string     `json:"note_type"`
	Text      string     `json:"text"`
	NoteSeq   int        `json:"note_seq,omitempty"`
	ChartTime *time.Time `json:"charttime,omitempty"`
	StoreTime *time.Time `json:"storetime,omitempty"`
}

// NoteSearchResult is a clinical note matched by a note search. Score is
// the vector similarity for semantic matches and zero for text matches.
type NoteSearchResult struct {
	ClinicalNote
	Score float64 `json:"score,omitempty"`
}

// LabEvent is a single laboratory measurement.
type LabEvent struct {
	LabEventID    string     `json:"lab_event_id"`
	SubjectID     string     `json:"subject_id"`
	HadmID        string     `json:"hadm_id,omitempty"`
	ChartTime     *time.Time `json:"charttime,omitempty"`
	Label         string     `json:"label,omitempty"`
	ItemID        string     `json:"itemid,omitempty"`
	Category      string     `json:"category,omitempty"`
	Flag          string     `json:"flag,omitempty"`
	Value         string     `json:"value,omitempty"`
	Comments      string     `json:"comments,omitempty"`
	RefRangeUpper float64    `json:"ref_range_upper,omitempty"`
	RefRangeLower float64    `json:"ref_range_lower,omitempty"`
	Fluid         string     `json:"fluid,omitempty"`
	Priority      string     `json:"priority,omitempty"`
	StoreTime     *time.Time `json:"storetime,omitempty"`
}

// Medication is an administered or prescribed medication.
type Medication struct {
	Medication   string     `json:"medication"`
	Route        string     `json:"route,omitempty"`
	HadmID       string     `json:"hadm_id,omitempty"`
	SubjectID    string     `json:"subject_id,omitempty"`
	Frequency    string     `json:"frequency,omitempty"`
	VerifiedTime *time.Time `json:"verifiedtime,omitempty"`
}

// Diagnosis is an ICD-coded diagnosis.
type Diagnosis struct {
	ICDCode    string   `json:"icd_code"`
	LongTitle  string   `json:"long_title,omitempty"`
	Synonyms   []string `json:"synonyms,omitempty"`
	HadmID     string   `json:"hadm_id,omitempty"`
	SubjectID  string   `json:"subject_id,omitempty"`
	SeqNum     int      `json:"seq_num,omitempty"`
	ICDVersion int      `json:"icd_version,omitempty"`
}

// Procedure is an ICD-coded procedure.
type Procedure struct {
	ICDCode    string     `json:"icd_code"`
	LongTitle  string     `json:"long_title,omitempty"`
	HadmID     string     `json:"hadm_id,omitempty"`
	SeqNum     int        `json:"seq_num,omitempty"`
	ChartDate  *time.Time `json:"chartdate,omitempty"`
	ICDVersion int        `json:"icd_version,omitempty"`
}

// PatientRecord aggregates a patient with optionally included sections.
type PatientRecord struct {
	Patient     Patient      `json:"patient"`
	Admissions  []Admission  `json:"admissions,omitempty"`
	Diagnoses   []Diagnosis  `json:"diagnoses,omitempty"`
	Procedures  []Procedure  `json:"procedures,omitempty"`
	Medications []Medication `json:"medications,omitempty"`
	LabEvents   []LabEvent   `json:"lab_events,omitempty"`
}
