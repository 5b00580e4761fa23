package driver

import (
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
)

// SetHost replaces the operating system and clocks used by the driver.
// This is exported for testing purposes only.
func (d *Driver) SetHost(goos string, now func() time.Time, runID func() string) {
	d.goos = goos
	d.now = now
	d.newRunID = runID
}

// DescribeChange exposes the rebuild reason for tests.
var DescribeChange = describeChange

// MarkStaged records the source of t as completely staged for features.
func MarkStaged(settings domain.Settings, t *domain.Target, features map[string]bool) error {
	marker := settings.StagedMarker(t.Name.String())
	if err := os.MkdirAll(filepath.Dir(marker), 0o750); err != nil {
		return err
	}
	key := stagingKey(&domain.BuildState{Target: t, Features: features})
	return os.WriteFile(marker, []byte(key), 0o600)
}
