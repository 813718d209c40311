package worker

// CoachData identifies the coach the worker checks notifications for.
type CoachData struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Credentials let the worker query the backing store on its own, even
// after the page that handed them over is gone.
type Credentials struct {
	URL     string `json:"url"`
	AnonKey string `json:"anon_key"`
}

// Message is a page-to-worker instruction.
type Message interface {
	isMessage()
}

// ShowNotificationMessage asks the worker to raise a platform
// notification immediately on behalf of the page.
type ShowNotificationMessage struct {
	Title string
	Body  string
	Tag   string
}

// StoreCoachDataMessage hands over the coach identity.
type StoreCoachDataMessage struct {
	Coach CoachData
}

// StoreCredentialsMessage hands over store credentials and arms the
// background check cycle.
type StoreCredentialsMessage struct {
	Credentials Credentials
}

// VisibilityChangeMessage informs the worker whether the page is
// currently visible.
type VisibilityChangeMessage struct {
	IsVisible bool
}

func (ShowNotificationMessage) isMessage() {}
func (StoreCoachDataMessage) isMessage()   {}
func (StoreCredentialsMessage) isMessage() {}
func (VisibilityChangeMessage) isMessage() {}

// ClickEvent is emitted when the user interacts with a platform
// notification the worker raised.
type ClickEvent struct {
	Action string
	Route  string
}
