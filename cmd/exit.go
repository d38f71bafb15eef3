package main

import (
	"errors"

	"github.com/sells-group/asn-cli/internal/asn"
	"github.com/sells-group/asn-cli/internal/fetcher"
)

// Process exit codes, one per failure kind.
const (
	exitFailure   = 1
	exitFetch     = 2
	exitStructure = 3
	exitParse     = 4
)

func exitCode(err error) int {
	var (
		fe *fetcher.FetchError
		se *asn.StructureError
		pe *asn.ParseError
	)
	switch {
	case err == nil:
		return 0
	case errors.As(err, &fe):
		return exitFetch
	case errors.As(err, &se):
		return exitStructure
	case errors.As(err, &pe):
		return exitParse
	default:
		return exitFailure
	}
}
