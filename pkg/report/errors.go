package report

import (
	"errors"
	"fmt"

	"github.com/ccollicutt/bundlereport/pkg/size"
)

// Sentinel errors carried by Issue. Use errors.Is against an Issue.
var (
	// ErrUnknownUnit is returned by ByteSize for units outside B/KB/MB/GB.
	ErrUnknownUnit = size.ErrUnknownUnit

	// ErrNoGroupsFound means the text contained no group header.
	ErrNoGroupsFound = errors.New("no groups found")

	// ErrMalformedHeader means a header-shaped match could not be converted,
	// or an asset line collided with a header line.
	ErrMalformedHeader = errors.New("malformed group header")

	// ErrMalformedEntry means an asset-shaped match could not be converted.
	ErrMalformedEntry = errors.New("malformed asset line")

	// ErrCountMismatch is informational: the header's explicit asset count
	// differs from the number of parsed entries.
	ErrCountMismatch = errors.New("explicit asset count mismatch")
)

// IssueKind classifies a parse issue.
type IssueKind string

const (
	IssueUnknownUnit     IssueKind = "unknown_unit"
	IssueNoGroups        IssueKind = "no_groups"
	IssueMalformedHeader IssueKind = "malformed_header"
	IssueMalformedEntry  IssueKind = "malformed_entry"
	IssueCountMismatch   IssueKind = "count_mismatch"
)

// Issue is a non-fatal problem found during a parse.
type Issue struct {
	Kind IssueKind `json:"kind"`

	// Line is the 1-based line the issue refers to (0 when not applicable).
	Line int `json:"line,omitempty"`

	// Group is the name of the enclosing group, if any.
	Group string `json:"group,omitempty"`

	Message string `json:"message"`

	Err error `json:"-"`
}

func (i Issue) Error() string {
	if i.Line > 0 {
		return fmt.Sprintf("line %d: %s", i.Line, i.Message)
	}
	return i.Message
}

func (i Issue) Unwrap() error {
	return i.Err
}

// Informational reports whether the issue is expected and harmless.
func (i Issue) Informational() bool {
	return i.Kind == IssueCountMismatch
}

// Sentinel returns the sentinel error for the kind, or nil for an unknown
// kind. Used when issues are rebuilt without their original error chain.
func (k IssueKind) Sentinel() error {
	switch k {
	case IssueUnknownUnit:
		return ErrUnknownUnit
	case IssueNoGroups:
		return ErrNoGroupsFound
	case IssueMalformedHeader:
		return ErrMalformedHeader
	case IssueMalformedEntry:
		return ErrMalformedEntry
	case IssueCountMismatch:
		return ErrCountMismatch
	default:
		return nil
	}
}
