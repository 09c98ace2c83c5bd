package healthcheck

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

var ErrNoClosure = errors.New(`health report has no "closure" field`)

// Closure maps package names to their health record.
type Closure map[string]Record

type report struct {
	Closure *[]json.RawMessage `json:"closure"`
}

// ParseClosure decodes a health report. When a package appears more than
// once the last record wins. Records without a package name are skipped.
func ParseClosure(data []byte, logger *slog.Logger) (Closure, error) {
	var r report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode health report: %w", err)
	}
	if r.Closure == nil {
		return nil, ErrNoClosure
	}

	closure := make(Closure, len(*r.Closure))
	for i, raw := range *r.Closure {
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("closure entry %d: %w", i, err)
		}

		pkg := rec.Package()
		if pkg == "" {
			logger.Debug("Skipping closure entry without package name", slog.Int("index", i))
			continue
		}
		closure[pkg] = rec
	}

	return closure, nil
}
