package models

// NotificationDetails holds the per-user token a miniapp host hands out when
// the user enables notifications. Opaque to everything except the webhook
// that stores it and the sender that reads it.
type NotificationDetails struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}
