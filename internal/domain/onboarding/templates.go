package onboarding

var requiredDocTemplates = map[ExperienceLevel][]RequiredDoc{
	LevelFresher: {
		{Key: "aadhar", Label: "Aadhaar Card"},
		{Key: "pan", Label: "PAN Card"},
		{Key: "photo", Label: "Passport Size Photograph"},
		{Key: "qualification", Label: "Highest Qualification Certificate"},
		{Key: "offerLetter", Label: "Signed Offer Letter"},
		{Key: "emergencyContact", Label: "Emergency Contact Details"},
		{Key: "currentAddress", Label: "Current Address"},
	},
	LevelExperienced: {
		{Key: "aadhar", Label: "Aadhaar Card"},
		{Key: "pan", Label: "PAN Card"},
		{Key: "photo", Label: "Passport Size Photograph"},
		{Key: "qualification", Label: "Highest Qualification Certificate"},
		{Key: "experienceLetter", Label: "Experience Letter (Previous Employer)"},
		{Key: "relievingLetter", Label: "Relieving Letter"},
		{Key: "paySlips", Label: "Last 3 Months Pay Slips"},
		{Key: "pfUan", Label: "PF UAN Number"},
		{Key: "form11", Label: "Form 11 (PF Declaration)"},
		{Key: "form16", Label: "Form 16 (if joining mid-financial year)"},
		{Key: "offerLetter", Label: "Signed Offer Letter"},
		{Key: "nda", Label: "NDA / Confidentiality Agreement"},
		{Key: "codeOfConduct", Label: "Code of Conduct Acceptance"},
		{Key: "backgroundConsent", Label: "Background Verification Consent"},
		{Key: "emergencyContact", Label: "Emergency Contact Details"},
		{Key: "currentAddress", Label: "Current Address"},
		{Key: "permanentAddress", Label: "Permanent Address"},
	},
}

// Template returns a fresh copy of the required documents for level, so a
// record keeps its own snapshot.
func Template(level ExperienceLevel) []RequiredDoc {
	src, ok := requiredDocTemplates[level]
	if !ok {
		src = requiredDocTemplates[LevelFresher]
	}
	out := make([]RequiredDoc, len(src))
	copy(out, src)
	return out
}

// NewRecord builds an empty checklist for employeeID.
func NewRecord(employeeID string, level ExperienceLevel) Record {
	level = ParseLevel(string(level))
	return Record{
		EmployeeID:      employeeID,
		ExperienceLevel: level,
		RequiredDocs:    Template(level),
		UploadedDocs:    []UploadedDoc{},
		OtherDocs:       []OtherDoc{},
	}
}
