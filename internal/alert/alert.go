package alert

import "time"

// Duration is how long an alert stays visible after being shown.
const Duration = 5 * time.Second

type Kind string

const (
	Success Kind = "success"
	Danger  Kind = "danger"
)

// Alert is a transient message. It is visible from ShownAt until ShownAt +
// Duration; showing a new one replaces it and restarts the window.
type Alert struct {
	Kind    Kind
	Message string
	ShownAt time.Time
	shown   bool
}

func (a *Alert) Show(kind Kind, message string, now time.Time) {
	a.Kind = kind
	a.Message = message
	a.ShownAt = now
	a.shown = true
}

func (a *Alert) ShowMessage(m Message, now time.Time) {
	a.Show(m.Kind, m.Text, now)
}

func (a *Alert) Hide() {
	a.shown = false
}

func (a Alert) Visible(now time.Time) bool {
	if !a.shown {
		return false
	}
	return !now.Before(a.ShownAt) && now.Before(a.ShownAt.Add(Duration))
}

// Remaining is the time left before the alert hides itself.
func (a Alert) Remaining(now time.Time) time.Duration {
	if !a.Visible(now) {
		return 0
	}
	return a.ShownAt.Add(Duration).Sub(now)
}
