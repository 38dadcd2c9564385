package onboarding

import (
	"io"
	"time"
)

type ExperienceLevel string

const (
	LevelFresher     ExperienceLevel = "fresher"
	LevelExperienced ExperienceLevel = "experienced"
)

// LazyInitLevel is the tier given to a record created implicitly by a first
// upload for an employee whose checklist was never initialized.
const LazyInitLevel = LevelFresher

// SignatureKey is the upload key routed into Record.SignatureURL.
const SignatureKey = "signature"

// OtherKey is the multipart field name that is also appended to OtherDocs.
const OtherKey = "other"

// ParseLevel maps free text onto a tier; anything but "experienced" is a fresher.
func ParseLevel(value string) ExperienceLevel {
	if ExperienceLevel(value) == LevelExperienced {
		return LevelExperienced
	}
	return LevelFresher
}

type RequiredDoc struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type UploadedDoc struct {
	Key        string    `json:"key"`
	Label      string    `json:"label"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type OtherDoc struct {
	Name    string `json:"name"`
	FileURL string `json:"fileURL"`
}

type Record struct {
	EmployeeID        string          `json:"employeeId"`
	ExperienceLevel   ExperienceLevel `json:"experienceLevel"`
	RequiredDocs      []RequiredDoc   `json:"requiredDocs"`
	UploadedDocs      []UploadedDoc   `json:"uploadedDocs"`
	OtherDocs         []OtherDoc      `json:"otherDocs"`
	SignatureURL      string          `json:"signatureURL,omitempty"`
	CompletionPercent int             `json:"completionPercent"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Uploaded returns the upload stored under key, if any.
func (r Record) Uploaded(key string) (UploadedDoc, bool) {
	for _, doc := range r.UploadedDocs {
		if doc.Key == key {
			return doc, true
		}
	}
	return UploadedDoc{}, false
}

// Summary is the progress view attached to employee listings.
type Summary struct {
	CompletionPercent int             `json:"completionPercent"`
	ExperienceLevel   ExperienceLevel `json:"experienceLevel"`
}

// Entry is one key/url pair of an upload batch.
type Entry struct {
	Key string
	URL string
}

// Patch is a batch of changes applied to a record in one write.
type Patch struct {
	Entries   []Entry
	OtherDocs []OtherDoc
}

func (p Patch) Empty() bool {
	return len(p.Entries) == 0 && len(p.OtherDocs) == 0
}

// FilePart is one named file of a multipart upload; Field is the document key.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
