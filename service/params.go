package service

import (
	"fmt"
	"math"
	"time"

	"finsight/catalog"
)

// validateParams checks caller-supplied parameters against the definition's
// declared schema, applies defaults, and coerces values to their canonical Go
// types. The reserved as_of parameter is accepted by every report and
// anchors its time windows; it defaults to the current time.
func validateParams(def catalog.Definition, params map[string]any) (map[string]any, time.Time, error) {
	asOf := time.Now().UTC()

	for name := range params {
		if name == catalog.ParamAsOf {
			continue
		}
		if _, ok := def.Param(name); !ok {
			return nil, time.Time{}, fmt.Errorf("%w: report %q does not accept %q", ErrInvalidParameter, def.Name, name)
		}
	}

	if raw, ok := params[catalog.ParamAsOf]; ok {
		t, err := coerceTime(raw)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("%w: as_of: %v", ErrInvalidParameter, err)
		}
		asOf = t
	}

	values := make(map[string]any, len(def.Params))
	for _, spec := range def.Params {
		raw, present := params[spec.Name]
		if !present {
			if spec.Required {
				return nil, time.Time{}, fmt.Errorf("%w: report %q requires %q", ErrInvalidParameter, def.Name, spec.Name)
			}
			if spec.Default != nil {
				values[spec.Name] = spec.Default
			}
			continue
		}

		coerced, err := coerceParam(spec, raw)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("%w: %s: %v", ErrInvalidParameter, spec.Name, err)
		}
		values[spec.Name] = coerced
	}

	return values, asOf, nil
}

func coerceParam(spec catalog.ParamSpec, raw any) (any, error) {
	switch spec.Type {
	case catalog.ParamInt:
		n, err := coerceInt(raw)
		if err != nil {
			return nil, err
		}
		if err := checkBounds(spec, float64(n)); err != nil {
			return nil, err
		}
		return n, nil

	case catalog.ParamFloat:
		f, err := coerceFloat(raw)
		if err != nil {
			return nil, err
		}
		if err := checkBounds(spec, f); err != nil {
			return nil, err
		}
		return f, nil

	case catalog.ParamString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return s, nil

	case catalog.ParamBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", raw)
		}
		return b, nil

	case catalog.ParamTime:
		return coerceTime(raw)
	}

	return nil, fmt.Errorf("unknown parameter type %q", spec.Type)
}

func coerceInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected integer, got %v", v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}

func coerceFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", raw)
	}
}

func coerceTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("expected RFC3339 timestamp: %v", err)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("expected timestamp, got %T", raw)
	}
}

func checkBounds(spec catalog.ParamSpec, v float64) error {
	if spec.Min != nil && v < *spec.Min {
		return fmt.Errorf("value %v is below minimum %v", v, *spec.Min)
	}
	if spec.Max != nil && v > *spec.Max {
		return fmt.Errorf("value %v is above maximum %v", v, *spec.Max)
	}
	return nil
}
