package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/floor_report/backend/internal/models"
)

type RouteClass string

const (
	ClassExpedited    RouteClass = "validated_expedited"
	ClassUnvalidated  RouteClass = "on_floor_unvalidated"
	ClassReprocessing RouteClass = "on_floor_reprocessing"
	ClassNotInAudit   RouteClass = "not_in_audit"
)

const (
	ReasonUnvalidated  = "unvalidated"
	ReasonReprocessing = "revalidated-reprocessing"
)

// OnFloor reports whether the class belongs to the on-the-floor set.
func (c RouteClass) OnFloor() bool {
	return c == ClassUnvalidated || c == ClassReprocessing
}

// DuplicatePolicy picks the assignment row used when a task ID repeats
// across files.
type DuplicatePolicy string

const (
	PolicyFirst  DuplicatePolicy = "first"
	PolicyLatest DuplicatePolicy = "latest"
)

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyFirst:
		return PolicyFirst, nil
	case PolicyLatest:
		return PolicyLatest, nil
	default:
		return "", fmt.Errorf("invalid duplicate policy %q", s)
	}
}

// Classification is the route-level view shared by every aggregation.
type Classification struct {
	// Routes lists audit routes in first-appearance order.
	Routes []string
	Class  map[string]RouteClass
	// FirstAudit is the first audit row of each route; Validated the first
	// row with status Validated.
	FirstAudit map[string]models.AuditRecord
	Validated  map[string]models.AuditRecord
	// Assignment is the row chosen by the duplicate policy; AssignmentRows
	// keeps every row of the task.
	Assignment     map[string]models.AssignmentRecord
	AssignmentRows map[string][]models.AssignmentRecord

	Expedited  []string
	OnFloor    []string
	NotInAudit []string
	// SkippedBlank counts audit rows without a route identifier.
	SkippedBlank int
}

// Classify reconciles both feeds. Every audit route ends up either expedited
// or on the floor; active assignment tasks missing from the audit feed are
// listed apart.
func Classify(assignments []models.AssignmentRecord, audit []models.AuditRecord, policy DuplicatePolicy) Classification {
	c := Classification{
		Class:          map[string]RouteClass{},
		FirstAudit:     map[string]models.AuditRecord{},
		Validated:      map[string]models.AuditRecord{},
		Assignment:     map[string]models.AssignmentRecord{},
		AssignmentRows: map[string][]models.AssignmentRecord{},
	}

	for _, a := range assignments {
		if a.TaskID == "" {
			continue
		}
		c.AssignmentRows[a.TaskID] = append(c.AssignmentRows[a.TaskID], a)
		prev, ok := c.Assignment[a.TaskID]
		if !ok || (policy == PolicyLatest && latestActivity(a).After(latestActivity(prev))) {
			c.Assignment[a.TaskID] = a
		}
	}

	unvalidated := map[string]bool{}
	for _, r := range audit {
		if r.Route == "" {
			c.SkippedBlank++
			continue
		}
		if _, ok := c.FirstAudit[r.Route]; !ok {
			c.FirstAudit[r.Route] = r
			c.Routes = append(c.Routes, r.Route)
		}
		if !r.Validated() {
			unvalidated[r.Route] = true
			continue
		}
		if _, ok := c.Validated[r.Route]; !ok {
			c.Validated[r.Route] = r
		}
	}

	for _, route := range c.Routes {
		class := ClassExpedited
		if unvalidated[route] {
			class = ClassUnvalidated
		}
		if _, ok := c.Validated[route]; ok {
			if a, found := c.Assignment[route]; found && a.IsActive() {
				class = ClassReprocessing
			}
		}
		c.Class[route] = class
		if class.OnFloor() {
			c.OnFloor = append(c.OnFloor, route)
		} else {
			c.Expedited = append(c.Expedited, route)
		}
	}

	seen := map[string]bool{}
	for _, a := range assignments {
		if a.TaskID == "" || seen[a.TaskID] {
			continue
		}
		seen[a.TaskID] = true
		if _, inAudit := c.FirstAudit[a.TaskID]; inAudit {
			continue
		}
		if c.Assignment[a.TaskID].IsActive() {
			c.Class[a.TaskID] = ClassNotInAudit
			c.NotInAudit = append(c.NotInAudit, a.TaskID)
		}
	}
	return c
}

// FloorReason returns the ledger reason of an on-the-floor route.
func (c Classification) FloorReason(route string) string {
	switch c.Class[route] {
	case ClassReprocessing:
		return ReasonReprocessing
	case ClassUnvalidated:
		return ReasonUnvalidated
	}
	return ""
}

func latestActivity(a models.AssignmentRecord) time.Time {
	var latest time.Time
	for _, t := range []time.Time{a.CompleteTime, a.DriverAssignedTime, a.AgencyAssignedTime, a.CreateTime} {
		if t.After(latest) {
			latest = t
		}
	}
	return latest
}
