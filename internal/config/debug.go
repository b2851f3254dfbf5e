package config

import (
	"os"
	"strconv"
)

// IsDebug reads FOLIO_DEBUG, accepting 1/0 and true/false.
func IsDebug() bool {
	on, _ := strconv.ParseBool(os.Getenv("FOLIO_DEBUG"))
	return on
}
