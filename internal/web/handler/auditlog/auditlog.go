// Package auditlog serves audit trail queries, statistics and CSV export.
package auditlog

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/newstrnt/admin-authz/internal/audit"
	"github.com/newstrnt/admin-authz/internal/rbac"
	"github.com/newstrnt/admin-authz/internal/web/handler"
)

const (
	// PathAudit queries entries.
	PathAudit = handler.RootPath + "audit"
	// PathStats summarizes a window.
	PathStats = PathAudit + "/stats"
	// PathExport downloads entries as CSV.
	PathExport = PathAudit + "/export"

	// DefaultLimit is used when a query has no limit.
	DefaultLimit = 100
	// MaxLimit caps the limit parameter.
	MaxLimit = 1000
	// DefaultStatsDays is the stats window without a days parameter.
	DefaultStatsDays = 30

	exportFileLayout = "20060102-150405"
)

// Service serves audit routes.
type Service struct {
	deps *handler.Deps
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes guarded by the system logs permission.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) {
	if router == nil || !deps.Valid() {
		log.Fatal().Msg(handler.ErrNilDepsFatalLogMsg)
		return
	}

	s.deps = deps

	logs := deps.Guard.RequirePermission(rbac.PermSystemLogs)

	router.Get(PathAudit, logs, s.Query)
	router.Get(PathStats, logs, s.Stats)
	router.Get(PathExport, logs, s.Export)
}

// FilterFromQuery builds an audit.Filter from query parameters.
func FilterFromQuery(c *fiber.Ctx, limit bool) (audit.Filter, error) {
	var f audit.Filter

	for name, dst := range map[string]*time.Time{"from": &f.From, "to": &f.To} {
		if v := c.Query(name); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return f, fmt.Errorf("invalid %s: %w", name, err)
			}

			*dst = t
		}
	}

	if v := c.Query("severity"); v != "" {
		sev, err := audit.ParseSeverity(v)
		if err != nil {
			return f, err
		}

		f.Severity = sev
	}

	if v := c.Query("minSeverity"); v != "" {
		sev, err := audit.ParseSeverity(v)
		if err != nil {
			return f, err
		}

		f.MinSeverity = sev
	}

	if v := c.Query("action"); v != "" {
		a, err := audit.ParseAction(v)
		if err != nil {
			return f, err
		}

		f.Action = a
	}

	if v := c.Query("success"); v != "" {
		ok, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid success %q", v)
		}

		f.Success = &ok
	}

	f.ActorUserID = c.Query("actor")
	f.ActorRole = c.Query("role")
	f.ResourceType = c.Query("resource")
	f.Search = c.Query("search")

	if !limit {
		return f, nil
	}

	f.Limit = DefaultLimit

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return f, fmt.Errorf("invalid limit %q", v)
		}

		f.Limit = min(n, MaxLimit)
	}

	return f, nil
}

// Query returns matching entries, newest first.
func (s *Service) Query(c *fiber.Ctx) error {
	f, err := FilterFromQuery(c, true)
	if err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.CodeBadRequest, err.Error())
	}

	entries, err := s.deps.Trail.Query(c.UserContext(), f)
	if err != nil {
		log.Error().Err(err).Msg("failed to query audit trail")

		return handler.Error(c, fiber.StatusInternalServerError, handler.CodeInternal, "failed to query audit trail")
	}

	if entries == nil {
		entries = []audit.Entry{}
	}

	return c.JSON(entries)
}

// Stats summarizes the last days days.
func (s *Service) Stats(c *fiber.Ctx) error {
	days := DefaultStatsDays

	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return handler.Error(c, fiber.StatusBadRequest, handler.CodeBadRequest, fmt.Sprintf("invalid days %q", v))
		}

		days = n
	}

	stats, err := s.deps.Trail.Stats(c.UserContext(), days)
	if err != nil {
		log.Error().Err(err).Msg("failed to compute audit stats")

		return handler.Error(c, fiber.StatusInternalServerError, handler.CodeInternal, "failed to compute audit stats")
	}

	return c.JSON(stats)
}

// Export downloads every matching entry as CSV.
func (s *Service) Export(c *fiber.Ctx) error {
	f, err := FilterFromQuery(c, false)
	if err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.CodeBadRequest, err.Error())
	}

	var buf bytes.Buffer

	n, err := s.deps.Trail.Export(c.UserContext(), f, &buf)
	if err != nil {
		log.Error().Err(err).Msg("failed to export audit trail")

		return handler.Error(c, fiber.StatusInternalServerError, handler.CodeInternal, "failed to export audit trail")
	}

	ev := handler.Event(c, audit.ActionAPIAccess)
	ev.ResourceType = "audit"
	ev.Details = map[string]any{"operation": "export", "rows": n}
	s.deps.Trail.Record(c.UserContext(), ev)

	name := "audit-" + time.Now().UTC().Format(exportFileLayout) + ".csv"

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)

	return c.Send(buf.Bytes())
}
