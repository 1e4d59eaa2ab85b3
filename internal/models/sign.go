package models

// SignInfo represents the human readable description of a sign label.
type SignInfo struct {
	Sign    string `json:"sign" yaml:"sign"`
	Details string `json:"details" yaml:"details"`
	Action  string `json:"action" yaml:"action"`
}
