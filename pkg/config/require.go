package config

import (
	"fmt"
	"strings"
)

// Required collects the names of empty required settings so that every
// missing variable is reported at once.
type Required struct {
	missing []string
}

func (r *Required) NonEmpty(value, envName string) {
	if value == "" {
		r.missing = append(r.missing, envName)
	}
}

func (r *Required) NonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		r.missing = append(r.missing, envName)
	}
}

func (r *Required) Err() error {
	if len(r.missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required env: %s", strings.Join(r.missing, ", "))
}
