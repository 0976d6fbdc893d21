package location

import "time"

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// Record is the last reported position of a user. One per user,
// overwritten on every report; stale records persist until overwritten.
type Record struct {
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	Avatar      string    `json:"avatar,omitempty"`
	Location    Location  `json:"location"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// NearbyUser is a nearby-query match. Distance is in meters and only
// valid for the instant the query ran.
type NearbyUser struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Name     string   `json:"name,omitempty"`
	Bio      string   `json:"bio,omitempty"`
	Avatar   string   `json:"avatar,omitempty"`
	Location Location `json:"location"`
	Distance float64  `json:"distance"`
	Zone     string   `json:"zone"`
}
