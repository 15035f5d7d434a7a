package chatcore

// Session identifies a client's presence within one connection. Id and
// Identity are immutable after creation; Nick may change via NickCmd.
type Session struct {
	ID       SessionID `json:"id"`
	Nick     string    `json:"nick"`
	Identity Identity  `json:"identity"`
}

// Clone returns a value copy, used whenever a Session is handed to a
// notification so later mutation of the original (e.g. a nick change)
// cannot race with marshaling the notification.
func (s Session) Clone() Session {
	return Session{ID: s.ID, Nick: s.Nick, Identity: s.Identity}
}
