package dispatch

import (
	"regexp"

	"github.com/dnbdoctor/labelops/internal/domain"
)

var manualSplitPattern = regexp.MustCompile(`[,;\s]+`)

// ParseManualEmails splits free-form recipient text on commas, semicolons,
// and whitespace, then partitions the entries by email shape. Invalid
// entries are reported back so the operator can fix them, but they never
// block sending to the valid subset.
func ParseManualEmails(input string) (valid, invalid []string) {
	seen := make(map[string]bool)
	for _, entry := range manualSplitPattern.Split(input, -1) {
		if entry == "" {
			continue
		}
		if domain.ValidEmail(entry) {
			email := domain.NormalizeEmail(entry)
			if !seen[email] {
				seen[email] = true
				valid = append(valid, email)
			}
			continue
		}
		invalid = append(invalid, entry)
	}
	return valid, invalid
}

// Draft is the composer state for a newsletter send. The send control is
// enabled only when CanSend reports true.
type Draft struct {
	TemplateID  string              `json:"template"`
	Subject     string              `json:"subject"`
	Message     string              `json:"message"`
	CategoryIDs []string            `json:"categoryIds"`
	ManualText  string              `json:"manualText"`
	Subscribers []domain.Subscriber `json:"subscribers"`
}

// CanSend reports whether the draft has a template and at least one
// addressable audience: a category, a valid manual email, or an explicitly
// selected subscriber.
func (d Draft) CanSend() bool {
	if d.TemplateID == "" {
		return false
	}
	if len(d.CategoryIDs) > 0 || len(d.Subscribers) > 0 {
		return true
	}
	valid, _ := ParseManualEmails(d.ManualText)
	return len(valid) > 0
}

// ApplyTemplate pre-fills the draft's subject and message from the chosen
// template. The custom template clears both for manual entry.
func (d *Draft) ApplyTemplate(id string) bool {
	t, ok := TemplateByID(id)
	if !ok {
		return false
	}
	d.TemplateID = t.ID
	d.Subject = t.Subject
	d.Message = t.Body
	return true
}
