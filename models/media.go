package models

import "time"

// MediaCredentials let one participant join the media room of a booking.
type MediaCredentials struct {
	AppID       string    `json:"appId"`
	ChannelName string    `json:"channelName"`
	UID         uint32    `json:"uid"`
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// BookingCredentials pairs the credentials issued to each side of a call.
type BookingCredentials struct {
	User   *MediaCredentials `json:"user,omitempty"`
	Lawyer *MediaCredentials `json:"lawyer,omitempty"`
}

// ChatToken is issued for the hosted chat transport.
type ChatToken struct {
	AppKey      string    `json:"appKey"`
	Username    string    `json:"username"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
