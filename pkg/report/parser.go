package report

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// DefaultMinIndent is the minimum number of leading tabs an asset line must
// carry. Archive lines in the layout report are indented by one tab and
// also carry a "(Size: ...)" clause, so they are excluded by default.
const DefaultMinIndent = 2

// reHeader matches a group header anywhere in the text:
//
//	Group <name> (Bundles: <int>, Total Size: <float><unit>, Explicit Asset Count: <int>)
var reHeader = regexp.MustCompile(`Group (.+?) \(Bundles: (\d+), Total Size: ((?:\d+\.)*\d+)([A-Za-z]+), Explicit Asset Count: (\d+)\)`)

// newlines folds \r\n and lone \r into \n so that offset-to-line conversion
// and line slicing agree.
var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Parser turns report text into a Result. A Parser holds no state between
// calls and may be reused.
type Parser struct {
	minIndent  int
	reEntry    *regexp.Regexp
	reSizeLine *regexp.Regexp
	diag       io.Writer
}

// Option configures a Parser.
type Option func(*Parser)

// WithMinIndent sets the minimum number of leading tabs on asset lines.
// Values below 1 are treated as 1.
func WithMinIndent(n int) Option {
	return func(p *Parser) {
		if n < 1 {
			n = 1
		}
		p.minIndent = n
	}
}

// WithDiagnostics writes per-group progress lines to w.
func WithDiagnostics(w io.Writer) Option {
	return func(p *Parser) {
		p.diag = w
	}
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{minIndent: DefaultMinIndent}
	for _, opt := range opts {
		opt(p)
	}
	p.reEntry = regexp.MustCompile(fmt.Sprintf(
		`(?m)^\t{%d,}(.+?) \(Size: ((?:\d+\.)*\d+)([A-Za-z]+),`, p.minIndent))
	p.reSizeLine = regexp.MustCompile(fmt.Sprintf(`(?m)^\t{%d,}.*? \(Size: `, p.minIndent))
	return p
}

var defaultParser = NewParser()

// Parse parses text with the default parser.
func Parse(text string) *Result {
	return defaultParser.Parse(text)
}

// Parse builds a new Result from text. It never fails: problems are
// collected in Result.Issues and the model holds whatever was extracted.
func (p *Parser) Parse(text string) *Result {
	result, _ := p.ParseContext(context.Background(), text)
	return result
}

// ParseContext is Parse with cancellation checked between groups. On
// cancellation it returns a nil Result and the context error.
func (p *Parser) ParseContext(ctx context.Context, text string) (*Result, error) {
	text = newlines.Replace(text)
	lines := strings.Split(text, "\n")

	result := &Result{Selected: -1}
	groups := p.findHeaders(text, result)
	p.logf("Found %d groups\n", len(groups))

	if len(groups) == 0 {
		result.Issues = append(result.Issues, Issue{
			Kind:    IssueNoGroups,
			Message: "no group headers found",
			Err:     ErrNoGroupsFound,
		})
		return result, nil
	}

	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Body is [header line, next header line); the last group runs to
		// the end of the text.
		end := len(lines) + 1
		if i+1 < len(groups) {
			end = groups[i+1].line
		}

		p.parseEntries(g, sliceLines(lines, g.line, end), result)
		Reorder(g, SortByByteSize, false)
		p.logf("Group %s: found %d assets\n", g.Name, len(g.Entries))

		if g.ExplicitAssetCount != len(g.Entries) {
			result.Issues = append(result.Issues, Issue{
				Kind:  IssueCountMismatch,
				Line:  g.line,
				Group: g.Name,
				Message: fmt.Sprintf("group %q reports %d explicit assets, parsed %d",
					g.Name, g.ExplicitAssetCount, len(g.Entries)),
				Err: ErrCountMismatch,
			})
		}
	}

	result.Groups = groups
	result.Selected = len(groups) - 1
	return result, nil
}

func (p *Parser) findHeaders(text string, result *Result) []*Group {
	var groups []*Group

	for _, loc := range reHeader.FindAllStringSubmatchIndex(text, -1) {
		line := LineAt(text, loc[0])
		name := text[loc[2]:loc[3]]

		g, err := newGroup(name,
			text[loc[4]:loc[5]],
			text[loc[6]:loc[7]],
			text[loc[8]:loc[9]],
			text[loc[10]:loc[11]])
		if err != nil {
			result.Issues = append(result.Issues, Issue{
				Kind:    IssueMalformedHeader,
				Line:    line,
				Group:   name,
				Message: fmt.Sprintf("group %q: %v", name, err),
				Err:     fmt.Errorf("%w: %w", ErrMalformedHeader, err),
			})
			continue
		}
		g.line = line

		if _, err := g.ByteSize(); err != nil {
			result.Issues = append(result.Issues, Issue{
				Kind:    IssueUnknownUnit,
				Line:    line,
				Group:   name,
				Message: fmt.Sprintf("group %q total size: %v", name, err),
				Err:     err,
			})
		}

		groups = append(groups, g)
	}

	return groups
}

func newGroup(name, bundles, magnitude, unit, explicit string) (*Group, error) {
	bundleCount, err := strconv.Atoi(bundles)
	if err != nil {
		return nil, fmt.Errorf("bundles: %w", err)
	}

	sz, err := strconv.ParseFloat(magnitude, 64)
	if err != nil {
		return nil, fmt.Errorf("total size: %w", err)
	}

	explicitCount, err := strconv.Atoi(explicit)
	if err != nil {
		return nil, fmt.Errorf("explicit asset count: %w", err)
	}

	return &Group{
		Name:               name,
		BundleCount:        bundleCount,
		Size:               sz,
		SizeUnit:           unit,
		ExplicitAssetCount: explicitCount,
	}, nil
}

func (p *Parser) parseEntries(g *Group, body string, result *Result) {
	matched := make(map[int]bool)
	for _, loc := range p.reEntry.FindAllStringSubmatchIndex(body, -1) {
		line := g.line + LineAt(body, loc[0]) - 1
		matched[line] = true

		if line == g.line {
			result.Issues = append(result.Issues, Issue{
				Kind:    IssueMalformedHeader,
				Line:    line,
				Group:   g.Name,
				Message: fmt.Sprintf("asset line collides with header of group %q, ignored", g.Name),
				Err:     ErrMalformedHeader,
			})
			continue
		}

		address := strings.ReplaceAll(body[loc[2]:loc[3]], "\t", "")
		raw := body[loc[4]:loc[5]]

		magnitude, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			result.Issues = append(result.Issues, Issue{
				Kind:    IssueMalformedEntry,
				Line:    line,
				Group:   g.Name,
				Message: fmt.Sprintf("asset %q: invalid size %q", address, raw),
				Err:     fmt.Errorf("%w: %w", ErrMalformedEntry, err),
			})
			continue
		}

		e := &Entry{
			Address:  address,
			Size:     magnitude,
			SizeUnit: body[loc[6]:loc[7]],
			Line:     line,
		}

		if _, err := e.ByteSize(); err != nil {
			result.Issues = append(result.Issues, Issue{
				Kind:    IssueUnknownUnit,
				Line:    line,
				Group:   g.Name,
				Message: fmt.Sprintf("asset %q: %v", address, err),
				Err:     err,
			})
		}

		g.Entries = append(g.Entries, e)
	}

	// Indented lines that carry a size clause the entry pattern rejects,
	// e.g. "1.00 MB", are reported rather than dropped silently.
	for _, loc := range p.reSizeLine.FindAllStringIndex(body, -1) {
		line := g.line + LineAt(body, loc[0]) - 1
		if line == g.line || matched[line] {
			continue
		}
		address := strings.ReplaceAll(body[loc[0]:loc[1]-len(" (Size: ")], "\t", "")
		result.Issues = append(result.Issues, Issue{
			Kind:    IssueMalformedEntry,
			Line:    line,
			Group:   g.Name,
			Message: fmt.Sprintf("asset %q: size has no recognizable magnitude and unit", address),
			Err:     ErrMalformedEntry,
		})
	}
}

func (p *Parser) logf(format string, args ...any) {
	if p.diag != nil {
		fmt.Fprintf(p.diag, format, args...)
	}
}

// LineAt converts a byte offset in text to a 1-based line number by
// counting the newlines before it.
func LineAt(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	return strings.Count(text[:offset], "\n") + 1
}

// sliceLines joins the 1-based lines [from, to).
func sliceLines(lines []string, from, to int) string {
	if from < 1 {
		from = 1
	}
	if to > len(lines)+1 {
		to = len(lines) + 1
	}
	if from >= to {
		return ""
	}
	return strings.Join(lines[from-1:to-1], "\n")
}
