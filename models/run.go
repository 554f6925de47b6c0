package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// CollectionRun records one region's collection pass for operator inspection.
// A failed run still keeps the pages committed before the failure.
type CollectionRun struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Region          string     `json:"region" db:"region"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	FinishedAt      *time.Time `json:"finished_at" db:"finished_at"`
	Status          RunStatus  `json:"status" db:"status"`
	PagesFetched    int        `json:"pages_fetched" db:"pages_fetched"`
	ListingsWritten int        `json:"listings_written" db:"listings_written"`
	Error           string     `json:"error" db:"error"`
}
