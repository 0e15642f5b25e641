package keitarodomain

type Campaign struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
	State string `json:"state,omitempty"`
}
