package store

import "time"

// ParseRecord is a stored parse run.
type ParseRecord struct {
	ID         int64     `json:"id"`
	Label      string    `json:"label,omitempty"`
	Source     string    `json:"source"`
	ParsedAt   time.Time `json:"parsed_at"`
	GroupCount int       `json:"groups"`
	EntryCount int       `json:"entries"`
	IssueCount int       `json:"issues"`
	TotalBytes float64   `json:"total_bytes"`
}

// AssetSize is one stored size observation for an asset address.
type AssetSize struct {
	ParseID  int64     `json:"parse_id"`
	ParsedAt time.Time `json:"parsed_at"`
	Group    string    `json:"group"`
	Address  string    `json:"address"`
	Size     float64   `json:"size"`
	SizeUnit string    `json:"size_unit"`
	ByteSize *float64  `json:"byte_size"`
}

// SaveOptions describes a parse being stored.
type SaveOptions struct {
	Label    string
	Source   string
	ParsedAt time.Time
}
