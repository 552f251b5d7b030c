package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ccollicutt/bundlereport/pkg/report"
)

// ErrNotFound is returned when a stored parse does not exist.
var ErrNotFound = errors.New("not found")

// SaveResult stores a parse result and all of its groups and entries in a
// single transaction.
func (db *DB) SaveResult(ctx context.Context, result *report.Result, opts SaveOptions) (*ParseRecord, error) {
	parsedAt := opts.ParsedAt
	if parsedAt.IsZero() {
		parsedAt = time.Now()
	}

	rec := &ParseRecord{
		Label:      opts.Label,
		Source:     opts.Source,
		ParsedAt:   parsedAt.UTC(),
		GroupCount: len(result.Groups),
		EntryCount: result.TotalEntries(),
		IssueCount: result.IssueCount(),
		TotalBytes: result.TotalBytes(),
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO parses (label, source, parsed_at, group_count, entry_count, issue_count, total_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Label, rec.Source, rec.ParsedAt, rec.GroupCount, rec.EntryCount, rec.IssueCount, rec.TotalBytes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert parse: %w", err)
	}
	if rec.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}

	for gi, g := range result.Groups {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO groups (parse_id, position, name, bundle_count, size, size_unit, explicit_asset_count, line)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, gi, g.Name, g.BundleCount, g.Size, g.SizeUnit, g.ExplicitAssetCount, g.Line(),
		)
		if err != nil {
			return nil, fmt.Errorf("insert group %q: %w", g.Name, err)
		}
		groupID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}

		for ei, e := range g.Entries {
			var byteSize sql.NullFloat64
			if b, err := e.ByteSize(); err == nil {
				byteSize = sql.NullFloat64{Float64: b, Valid: true}
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO entries (group_id, position, address, size, size_unit, byte_size, line)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				groupID, ei, e.Address, e.Size, e.SizeUnit, byteSize, e.Line,
			); err != nil {
				return nil, fmt.Errorf("insert entry %q: %w", e.Address, err)
			}
		}
	}

	for ii, issue := range result.Issues {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO issues (parse_id, position, kind, line, group_name, message)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, ii, string(issue.Kind), issue.Line, issue.Group, issue.Message,
		); err != nil {
			return nil, fmt.Errorf("insert issue: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return rec, nil
}

// GetParse retrieves a stored parse by ID.
func (db *DB) GetParse(ctx context.Context, id int64) (*ParseRecord, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, label, source, parsed_at, group_count, entry_count, issue_count, total_bytes
		FROM parses WHERE id = ?`, id)

	rec, err := scanParse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("parse %d: %w", id, ErrNotFound)
	}
	return rec, err
}

// ListParses returns stored parses, newest first.
func (db *DB) ListParses(ctx context.Context, limit int) ([]*ParseRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, label, source, parsed_at, group_count, entry_count, issue_count, total_bytes
		FROM parses ORDER BY parsed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*ParseRecord
	for rows.Next() {
		rec, err := scanParse(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// LoadGroups rebuilds the groups of a stored parse, entries in their stored
// order.
func (db *DB) LoadGroups(ctx context.Context, parseID int64) ([]*report.Group, error) {
	if _, err := db.GetParse(ctx, parseID); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT g.id, g.name, g.bundle_count, g.size, g.size_unit, g.explicit_asset_count,
			e.address, e.size, e.size_unit, e.line
		FROM groups g
		LEFT JOIN entries e ON e.group_id = g.id
		WHERE g.parse_id = ?
		ORDER BY g.position, e.position`, parseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*report.Group
	var current *report.Group
	var currentID int64 = -1

	for rows.Next() {
		var (
			groupID int64
			g       report.Group
			address sql.NullString
			eSize   sql.NullFloat64
			eUnit   sql.NullString
			eLine   sql.NullInt64
		)
		if err := rows.Scan(&groupID, &g.Name, &g.BundleCount, &g.Size, &g.SizeUnit, &g.ExplicitAssetCount,
			&address, &eSize, &eUnit, &eLine); err != nil {
			return nil, err
		}

		if groupID != currentID {
			current = &report.Group{
				Name:               g.Name,
				BundleCount:        g.BundleCount,
				Size:               g.Size,
				SizeUnit:           g.SizeUnit,
				ExplicitAssetCount: g.ExplicitAssetCount,
			}
			groups = append(groups, current)
			currentID = groupID
		}

		if address.Valid {
			current.Entries = append(current.Entries, &report.Entry{
				Address:  address.String,
				Size:     eSize.Float64,
				SizeUnit: eUnit.String,
				Line:     int(eLine.Int64),
			})
		}
	}

	return groups, rows.Err()
}

// LoadIssues returns the issues of a stored parse in the order they were
// found. Each issue unwraps to the sentinel of its kind.
func (db *DB) LoadIssues(ctx context.Context, parseID int64) ([]report.Issue, error) {
	if _, err := db.GetParse(ctx, parseID); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT kind, line, group_name, message
		FROM issues WHERE parse_id = ?
		ORDER BY position`, parseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []report.Issue
	for rows.Next() {
		var issue report.Issue
		if err := rows.Scan(&issue.Kind, &issue.Line, &issue.Group, &issue.Message); err != nil {
			return nil, err
		}
		issue.Err = issue.Kind.Sentinel()
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// AssetHistory returns every stored size of an asset address, newest first.
func (db *DB) AssetHistory(ctx context.Context, address string, limit int) ([]*AssetSize, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx, `
		SELECT p.id, p.parsed_at, g.name, e.address, e.size, e.size_unit, e.byte_size
		FROM entries e
		JOIN groups g ON g.id = e.group_id
		JOIN parses p ON p.id = g.parse_id
		WHERE e.address = ?
		ORDER BY p.parsed_at DESC, p.id DESC, g.position
		LIMIT ?`, address, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*AssetSize
	for rows.Next() {
		var (
			a        AssetSize
			byteSize sql.NullFloat64
		)
		if err := rows.Scan(&a.ParseID, &a.ParsedAt, &a.Group, &a.Address, &a.Size, &a.SizeUnit, &byteSize); err != nil {
			return nil, err
		}
		if byteSize.Valid {
			b := byteSize.Float64
			a.ByteSize = &b
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// DeleteParse removes a stored parse and its groups, entries and issues.
func (db *DB) DeleteParse(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, "DELETE FROM parses WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("parse %d: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanParse(s scanner) (*ParseRecord, error) {
	var rec ParseRecord
	if err := s.Scan(&rec.ID, &rec.Label, &rec.Source, &rec.ParsedAt,
		&rec.GroupCount, &rec.EntryCount, &rec.IssueCount, &rec.TotalBytes); err != nil {
		return nil, err
	}
	return &rec, nil
}
