package api

import (
	"fmt"

	"github.com/MJE43/trainerrand/internal/gamedata"
	"github.com/MJE43/trainerrand/internal/legal"
	"github.com/MJE43/trainerrand/internal/runner"
	"github.com/MJE43/trainerrand/internal/trainer"
)

const maxFilterScriptBytes = 64 << 10

// fieldError is a validation failure tied to one request field
type fieldError struct {
	errType string
	field   string
	err     error
}

func (e *fieldError) Error() string { return e.err.Error() }

// ValidateRandomizeRequest checks req and converts it into a runner request
func ValidateRandomizeRequest(req *RandomizeRequest) (runner.Request, error) {
	var out runner.Request

	if req.Version != "" {
		v, err := legal.ParseVersion(req.Version)
		if err != nil {
			return out, &fieldError{ErrTypeInvalidVersion, "version", err}
		}
		out.Version = v
	}

	switch {
	case req.Data != nil:
		if err := req.Data.Validate(); err != nil {
			return out, &fieldError{ErrTypeInvalidDataset, "data", err}
		}
		out.Data = req.Data
	case req.Sample:
		version := out.Version
		if version == legal.Unknown {
			version = legal.USUM
		}
		out.Data = gamedata.Sample(version)
	default:
		return out, &fieldError{ErrTypeValidation, "data", fmt.Errorf("data is required unless sample is set")}
	}

	settings := trainer.DefaultSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}
	if err := settings.Validate(); err != nil {
		return out, &fieldError{ErrTypeInvalidSettings, "settings", err}
	}
	out.Settings = settings

	if t := req.Species.BSTTolerance; t < 0 || t > 100 {
		return out, &fieldError{ErrTypeValidation, "species.bst_tolerance", fmt.Errorf("bst_tolerance %d outside [0, 100]", t)}
	}
	if req.Species.MaxSpecies < 0 {
		return out, &fieldError{ErrTypeValidation, "species.max_species", fmt.Errorf("max_species must not be negative")}
	}
	out.Species = req.Species

	if len(req.FilterScript) > maxFilterScriptBytes {
		return out, &fieldError{ErrTypeValidation, "filter_script", fmt.Errorf("filter script too large (max %d bytes)", maxFilterScriptBytes)}
	}
	out.FilterScript = req.FilterScript
	out.Seed = req.Seed

	return out, nil
}
