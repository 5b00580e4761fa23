package domain

import "time"

// CompletionRecord marks a target as installed for one architecture.
type CompletionRecord struct {
	Target      string       `json:"target"`
	Arch        Architecture `json:"arch"`
	Version     string       `json:"version,omitempty"`
	Fingerprint string       `json:"fingerprint"`
	RunID       string       `json:"run_id"`
	InstallDir  string       `json:"install_dir"`
	BuiltAt     time.Time    `json:"built_at"`
}

// Key returns the ledger key of the record.
func (r CompletionRecord) Key() string {
	return CompletionKey(r.Target, r.Arch)
}

// CompletionKey builds the ledger key for a target and architecture.
func CompletionKey(target string, arch Architecture) string {
	return target + "@" + string(arch)
}
