package onboarding

import (
	"math"
	"strings"
	"time"
)

// CompletionPercent counts satisfied required keys plus the signature over
// len(RequiredDocs)+1, rounded half up.
func CompletionPercent(r Record) int {
	total := len(r.RequiredDocs) + 1
	if total <= 0 {
		return 0
	}
	done := 0
	for _, req := range r.RequiredDocs {
		if _, ok := r.Uploaded(req.Key); ok {
			done++
		}
	}
	if r.SignatureURL != "" {
		done++
	}
	percent := int(math.Floor(100*float64(done)/float64(total) + 0.5))
	return min(max(percent, 0), 100)
}

// Apply merges patch into r and recomputes the percentage once at the end.
func Apply(r *Record, patch Patch, now time.Time) {
	for _, entry := range patch.Entries {
		if entry.Key == SignatureKey {
			r.SignatureURL = entry.URL
			continue
		}
		upsert(r, entry, now)
	}
	r.OtherDocs = append(r.OtherDocs, patch.OtherDocs...)
	r.CompletionPercent = CompletionPercent(*r)
	r.UpdatedAt = now
}

func upsert(r *Record, entry Entry, now time.Time) {
	for i := range r.UploadedDocs {
		if r.UploadedDocs[i].Key == entry.Key {
			r.UploadedDocs[i].URL = entry.URL
			r.UploadedDocs[i].UploadedAt = now
			return
		}
	}
	r.UploadedDocs = append(r.UploadedDocs, UploadedDoc{
		Key:        entry.Key,
		Label:      labelFor(*r, entry.Key),
		URL:        entry.URL,
		UploadedAt: now,
	})
}

func labelFor(r Record, key string) string {
	for _, req := range r.RequiredDocs {
		if req.Key == key {
			return req.Label
		}
	}
	return key
}

// Missing lists required documents that have no upload yet.
func Missing(r Record) []RequiredDoc {
	var out []RequiredDoc
	for _, req := range r.RequiredDocs {
		if _, ok := r.Uploaded(req.Key); !ok {
			out = append(out, req)
		}
	}
	return out
}

func normalizePatch(patch Patch) Patch {
	out := Patch{}
	for _, entry := range patch.Entries {
		key := strings.TrimSpace(entry.Key)
		url := strings.TrimSpace(entry.URL)
		if key == "" || url == "" {
			continue
		}
		out.Entries = append(out.Entries, Entry{Key: key, URL: url})
	}
	for _, doc := range patch.OtherDocs {
		if strings.TrimSpace(doc.FileURL) == "" {
			continue
		}
		out.OtherDocs = append(out.OtherDocs, doc)
	}
	return out
}
