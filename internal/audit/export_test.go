package audit

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRoundTrip(t *testing.T) {
	trail, c := newTestTrail(t, NewMemoryStore(0))
	ctx := context.Background()

	tricky := "a, \"quoted\"\nline"

	_, ok := trail.Record(ctx, Event{
		Action:       ActionArticleUpdate,
		ActorUserID:  "u1",
		ActorEmail:   "alice@x.com",
		ActorRole:    "EDITOR",
		ResourceType: "article",
		ResourceID:   "42",
		Details:      tricky,
		IPAddress:    "10.0.0.1",
	})
	require.True(t, ok)

	c.Advance(time.Minute)

	_, ok = trail.Record(ctx, Event{Action: ActionLogout, ActorUserID: "u2", ResourceType: "session"})
	require.True(t, ok)

	var buf bytes.Buffer

	n, err := trail.Export(ctx, Filter{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, strings.Join(ExportHeader, ",")+"\n"))
	assert.Contains(t, out, `"a, ""quoted""`)

	stored, err := trail.Query(ctx, Filter{})
	require.NoError(t, err)

	parsed, err := ParseExport(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, len(stored))

	for i, want := range stored {
		got := parsed[i]

		assert.True(t, want.Timestamp.Equal(got.Timestamp))
		assert.Equal(t, want.Action, got.Action)
		assert.Equal(t, want.ActorEmail, got.ActorEmail)
		assert.Equal(t, want.ActorRole, got.ActorRole)
		assert.Equal(t, want.ResourceType, got.ResourceType)
		assert.Equal(t, want.ResourceID, got.ResourceID)
		assert.Equal(t, want.Details, got.Details)
		assert.Equal(t, want.Severity, got.Severity)
		assert.Equal(t, want.IPAddress, got.IPAddress)
	}

	assert.Equal(t, tricky, parsed[1].Details)
	assert.Equal(t, "session", parsed[0].ResourceType)
	assert.Empty(t, parsed[0].ResourceID)
}

func TestExportRoundTripLineEndings(t *testing.T) {
	ts := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		name    string
		details string
	}{
		{name: "crlf", details: "a\r\nb"},
		{name: "crlf with quotes", details: "line1\r\nline2, \"q\""},
		{name: "lone cr", details: "a\rb"},
		{name: "trailing cr", details: "a\r"},
		{name: "blank lines", details: "\n\r\n\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer

			_, err := WriteExport(&buf, []Entry{
				{Timestamp: ts, Action: ActionAPIAccess, ResourceType: "api", Details: tc.details, Severity: SeverityInfo},
			})
			require.NoError(t, err)

			parsed, err := ParseExport(&buf)
			require.NoError(t, err)
			require.Len(t, parsed, 1)
			assert.Equal(t, tc.details, parsed[0].Details)
		})
	}
}

func TestParseExportCRLFRecords(t *testing.T) {
	input := strings.Join(ExportHeader, ",") + "\r\n" +
		"2026-05-10T09:00:00Z,LOGOUT,a@x.com,VIEWER,session,\"x\r\ny\",INFO,\r\n" +
		"\r\n" +
		"2026-05-10T10:00:00Z,LOGOUT,b@x.com,EDITOR,session:s1,,INFO,10.0.0.2"

	parsed, err := ParseExport(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, "x\r\ny", parsed[0].Details)
	assert.Empty(t, parsed[0].IPAddress)
	assert.Equal(t, "s1", parsed[1].ResourceID)
	assert.Equal(t, "10.0.0.2", parsed[1].IPAddress)
}

func TestExportEmpty(t *testing.T) {
	var buf bytes.Buffer

	n, err := WriteExport(&buf, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	parsed, err := ParseExport(&buf)
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestExportResourceColumn(t *testing.T) {
	ts := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

	var buf bytes.Buffer

	_, err := WriteExport(&buf, []Entry{
		{Timestamp: ts, Action: ActionUserUpdate, ResourceType: "user", ResourceID: "u:9", Severity: SeverityInfo},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "user:u:9")

	parsed, err := ParseExport(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "user", parsed[0].ResourceType)
	assert.Equal(t, "u:9", parsed[0].ResourceID)
}

func TestParseExportRejects(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		isErr error
	}{
		{name: "empty", input: "", isErr: ErrBadExportHeader},
		{name: "wrong header", input: "a,b,c,d,e,f,g,h\n", isErr: ErrBadExportHeader},
		{name: "bad severity", input: strings.Join(ExportHeader, ",") + "\n2026-05-10T09:00:00Z,LOGOUT,,,,,LOUD,\n", isErr: ErrUnknownSeverity},
		{name: "bad timestamp", input: strings.Join(ExportHeader, ",") + "\nyesterday,LOGOUT,,,,,INFO,\n"},
		{name: "short row", input: strings.Join(ExportHeader, ",") + "\n2026-05-10T09:00:00Z,LOGOUT\n", isErr: ErrMalformedExport},
		{name: "unterminated quote", input: strings.Join(ExportHeader, ",") + "\n2026-05-10T09:00:00Z,LOGOUT,,,,\"open,INFO,\n", isErr: ErrMalformedExport},
		{name: "bare quote", input: strings.Join(ExportHeader, ",") + "\n2026-05-10T09:00:00Z,LOGOUT,,,,a\"b,INFO,\n", isErr: ErrMalformedExport},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseExport(strings.NewReader(tc.input))
			require.Error(t, err)

			if tc.isErr != nil {
				assert.ErrorIs(t, err, tc.isErr)
			}
		})
	}
}
