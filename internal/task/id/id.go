// Package id provides unique identifier generation for task runs.
package id

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Generate creates a new unique task run ID.
// Format: run-<timestamp>-<uuid fragment>
// Example: run-1701432000-a1b2c3d4
func Generate() string {
	return fmt.Sprintf("run-%d-%s", time.Now().Unix(), uuid.NewString()[:8])
}
