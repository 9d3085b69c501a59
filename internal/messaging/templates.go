package messaging

// Template is a canned message the composer UI offers as a starting point.
type Template struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

var templates = []Template{
	{
		Title:   "Welcome Message",
		Content: "Thank you for your interest in our properties. We will get back to you soon with the best options matching your requirements!",
	},
	{
		Title:   "Follow Up",
		Content: "Hi! Just following up on your property inquiry. Are you available for a quick call to discuss your requirements?",
	},
	{
		Title:   "Property Update",
		Content: "We have new properties matching your requirements. Would you like to schedule a visit this weekend?",
	},
	{
		Title:   "Appointment Reminder",
		Content: "This is a reminder about your property viewing appointment tomorrow at 2 PM. Please let us know if you need to reschedule.",
	},
	{
		Title:   "Price Update",
		Content: "Great news! The property you were interested in has a special offer this month. Would you like to know more details?",
	},
	{
		Title:   "Documentation Request",
		Content: "To proceed with your property booking, we need a few documents. Could you please share your ID proof and income certificate?",
	},
}

// Templates returns the quick message templates in display order. The
// slice is a copy.
func Templates() []Template {
	return append([]Template(nil), templates...)
}
