/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package testmodels holds shared record types used by test suites across
// the module.
package testmodels

import (
	"github.com/go-openapi/strfmt"

	"github.com/suparena/auditstore/audit"
)

// RatingSystem is a non-audited record type.
type RatingSystem struct {

	// Unique identifier for the rating system.
	// Required: true
	ID *string `json:"Id" auditstore:"key"`

	// Name of the rating system.
	// Required: true
	Name *string `json:"Name"`

	// A description of the rating system.
	Description *string `json:"Description,omitempty"`

	// Timestamp when the rating system was last written.
	// Format: date-time
	UpdatedAt *strfmt.DateTime `json:"UpdatedAt,omitempty" auditstore:"timestamp"`
}

// MatchRecord is an audited record type: it embeds audit.Trail, so every
// mutation through an audit.Store lands in the ledger.
type MatchRecord struct {
	audit.Trail

	ID      string `json:"id" auditstore:"key"`
	Event   string `json:"event" auditstore:"partitionkey"`
	WinnerA bool   `json:"winnerA"`
	ScoreA  int    `json:"scoreA"`
	ScoreB  int    `json:"scoreB"`
}
