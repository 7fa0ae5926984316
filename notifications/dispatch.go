package notifications

// Email is a queued notification produced inside a database transaction and
// dispatched only after it commits.
type Email struct {
	ToName  string
	ToEmail string
	Subject string
	HTML    string
}

func Dispatch(emails []Email) {
	for _, e := range emails {
		e := e
		go SendEmail(e.ToName, e.ToEmail, e.Subject, e.HTML)
	}
}
