package scan

import "errors"

var (
	ErrInvalidRange  = errors.New("scan: invalid seed range")
	ErrUnknownMetric = errors.New("scan: unknown metric")
	ErrInvalidTarget = errors.New("scan: invalid target")
)
