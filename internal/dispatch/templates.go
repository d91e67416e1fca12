package dispatch

// Template is a canned newsletter layout. Subject and body may contain
// {name}, {email}, {artist}, and {track} tokens which are interpolated per
// recipient at send time.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TemplateCustom is the blank template: the operator types subject and body
// from scratch.
const TemplateCustom = "custom"

var builtinTemplates = []Template{
	{
		ID:      "new_release",
		Name:    "New Release",
		Subject: "Out now: {track} by {artist}",
		Body: "Hey {name},\n\n" +
			"{artist} just dropped \"{track}\" on DnB Doctor and it is exactly the kind of " +
			"rolling neurofunk you signed up for.\n\n" +
			"Stream it everywhere or grab it from our store.\n\n" +
			"Stay heavy,\nDnB Doctor",
	},
	{
		ID:      "sample_pack",
		Name:    "Sample Pack",
		Subject: "Fresh sample pack from {artist}",
		Body: "Hey {name},\n\n" +
			"A brand new sample pack from {artist} just landed: drum breaks, basses and " +
			"FX ready for your next tune.\n\n" +
			"DnB Doctor",
	},
	{
		ID:      "welcome",
		Name:    "Welcome",
		Subject: "Welcome to the DnB Doctor family",
		Body: "Hey {name},\n\n" +
			"Thanks for subscribing with {email}. Expect release announcements, premieres " +
			"and the occasional free download. No spam, just drum and bass.\n\n" +
			"DnB Doctor",
	},
	{ID: TemplateCustom, Name: "Custom", Subject: "", Body: ""},
}

// Templates returns the available newsletter templates, the custom one last.
func Templates() []Template {
	out := make([]Template, len(builtinTemplates))
	copy(out, builtinTemplates)
	return out
}

// TemplateByID looks up a template by id.
func TemplateByID(id string) (Template, bool) {
	for _, t := range builtinTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
