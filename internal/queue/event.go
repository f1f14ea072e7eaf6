// Package queue defines message payloads exchanged over the message broker.
package queue

// NotificationEvent is published whenever the engine wants to tell a user or
// the administrator something: application received, decision made, ban,
// broadcast.  The conversational transport consumes these and renders them;
// the engine itself never talks to the chat platform directly.
type NotificationEvent struct {
	UserID  int64  `json:"user_id"`          // recipient transport id; ignored when Admin is true
	Admin   bool   `json:"admin"`            // route to the administrator instead of a user
	Kind    string `json:"kind"`             // application, decision, ban, appeal, broadcast, suggestion
	Content string `json:"content"`          // rendered message body
	Flags   string `json:"flags,omitempty"`  // compact requested-capability code (e.g. "m1o0") for reviewer actions
	SentAt  string `json:"sent_at"`          // RFC3339 publish time
}
