package audit

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

// ExportHeader is the first row of every export.
var ExportHeader = []string{
	"Timestamp", "Action", "User", "Role", "Resource", "Details", "Severity", "IP Address",
}

// Export writes the entries matching f as CSV and returns the number of
// data rows. Fields containing a comma, a quote or a line break are quoted
// with doubled inner quotes.
func (t *Trail) Export(ctx context.Context, f Filter, w io.Writer) (int, error) {
	entries, err := t.Query(ctx, f)
	if err != nil {
		return 0, err
	}

	return WriteExport(w, entries)
}

// WriteExport writes entries in export format.
func WriteExport(w io.Writer, entries []Entry) (int, error) {
	cw := csv.NewWriter(w)

	if err := cw.Write(ExportHeader); err != nil {
		return 0, fmt.Errorf("write export header: %w", err)
	}

	for i, e := range entries {
		row := []string{
			e.Timestamp.UTC().Format(time.RFC3339Nano),
			string(e.Action),
			e.ActorEmail,
			e.ActorRole,
			e.Resource(),
			e.Details,
			e.Severity.String(),
			e.IPAddress,
		}

		if err := cw.Write(row); err != nil {
			return i, fmt.Errorf("write export row: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return len(entries), fmt.Errorf("flush export: %w", err)
	}

	return len(entries), nil
}

// ParseExport reads an export back into entries. Only the exported columns
// are populated. Quoted fields are returned byte for byte, carriage returns
// included.
func ParseExport(r io.Reader) ([]Entry, error) {
	er := newExportReader(r)

	header, err := er.read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrBadExportHeader
		}

		return nil, fmt.Errorf("read export header: %w", err)
	}

	if !slices.Equal(header, ExportHeader) {
		return nil, ErrBadExportHeader
	}

	var out []Entry

	for {
		row, err := er.read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read export row: %w", err)
		}

		if len(row) != len(ExportHeader) {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrMalformedExport, er.line, len(row))
		}

		ts, err := time.Parse(time.RFC3339Nano, row[0])
		if err != nil {
			return nil, fmt.Errorf("parse export timestamp %q: %w", row[0], err)
		}

		sev, err := ParseSeverity(row[6])
		if err != nil {
			return nil, err
		}

		typ, id := splitResource(row[4])

		out = append(out, Entry{
			Timestamp:    ts,
			Action:       Action(row[1]),
			ActorEmail:   row[2],
			ActorRole:    row[3],
			ResourceType: typ,
			ResourceID:   id,
			Details:      row[5],
			Severity:     sev,
			IPAddress:    row[7],
		})
	}

	return out, nil
}

// exportReader splits CSV records. Unlike csv.Reader it keeps "\r" inside
// quoted fields. Records end with "\n" or "\r\n"; blank lines are skipped.
type exportReader struct {
	r    *bufio.Reader
	line int
}

func newExportReader(r io.Reader) *exportReader {
	return &exportReader{r: bufio.NewReader(r)}
}

func (er *exportReader) read() ([]string, error) {
	for {
		er.line++

		p, err := er.r.Peek(2)
		if len(p) == 0 {
			return nil, err
		}

		switch {
		case p[0] == '\n':
			_, _ = er.r.Discard(1)

			continue
		case len(p) == 2 && p[0] == '\r' && p[1] == '\n':
			_, _ = er.r.Discard(2)

			continue
		}

		return er.record()
	}
}

// eol consumes a "\n" following a "\r" and reports whether there was one.
func (er *exportReader) eol() bool {
	next, err := er.r.ReadByte()
	if err != nil {
		return false
	}

	if next == '\n' {
		return true
	}

	_ = er.r.UnreadByte()

	return false
}

func (er *exportReader) record() ([]string, error) {
	var fields []string

	for {
		field, last, err := er.field()
		if err != nil {
			return nil, err
		}

		fields = append(fields, field)
		if last {
			return fields, nil
		}
	}
}

// field reads one field and reports whether it ended the record.
func (er *exportReader) field() (string, bool, error) {
	var sb strings.Builder

	b, err := er.r.ReadByte()
	if errors.Is(err, io.EOF) {
		return "", true, nil
	}

	if err != nil {
		return "", false, err
	}

	if b == '"' {
		return er.quoted(&sb)
	}

	for {
		switch {
		case b == ',':
			return sb.String(), false, nil
		case b == '\n':
			return sb.String(), true, nil
		case b == '\r' && er.eol():
			return sb.String(), true, nil
		case b == '"':
			return "", false, fmt.Errorf("%w: bare quote on line %d", ErrMalformedExport, er.line)
		}

		sb.WriteByte(b)

		b, err = er.r.ReadByte()
		if errors.Is(err, io.EOF) {
			return sb.String(), true, nil
		}

		if err != nil {
			return "", false, err
		}
	}
}

func (er *exportReader) quoted(sb *strings.Builder) (string, bool, error) {
	for {
		b, err := er.r.ReadByte()
		if errors.Is(err, io.EOF) {
			return "", false, fmt.Errorf("%w: unterminated quote on line %d", ErrMalformedExport, er.line)
		}

		if err != nil {
			return "", false, err
		}

		if b == '\n' {
			er.line++
		}

		if b != '"' {
			sb.WriteByte(b)

			continue
		}

		next, err := er.r.ReadByte()
		if errors.Is(err, io.EOF) {
			return sb.String(), true, nil
		}

		if err != nil {
			return "", false, err
		}

		switch {
		case next == '"':
			sb.WriteByte('"')
		case next == ',':
			return sb.String(), false, nil
		case next == '\n':
			return sb.String(), true, nil
		case next == '\r' && er.eol():
			return sb.String(), true, nil
		default:
			return "", false, fmt.Errorf("%w: unexpected %q after quote on line %d", ErrMalformedExport, next, er.line)
		}
	}
}
