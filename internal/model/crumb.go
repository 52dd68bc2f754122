package model

// Crumb is a breadcrumb recorded alongside an event.
type Crumb struct {
	Type     string    `json:"type" yaml:"type"`
	Category string    `json:"category,omitempty" yaml:"category,omitempty"`
	Level    string    `json:"level,omitempty" yaml:"level,omitempty"`
	Message  *string   `json:"message,omitempty" yaml:"message,omitempty"`
	Data     CrumbData `json:"data" yaml:"data"`
}

// CrumbData carries the console arguments of a breadcrumb, when recorded.
type CrumbData struct {
	Arguments any `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}
