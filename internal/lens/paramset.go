package lens

import "fmt"

// ParamNames lists the names accepted by [Params.Get] and [Params.Set], in
// slider order.
var ParamNames = []string{"grid_size", "einstein_radius", "source_x", "source_y", "source_radius"}

func (p Params) Get(name string) (float64, error) {
	switch name {
	case "grid_size":
		return float64(p.GridSize), nil
	case "einstein_radius":
		return p.EinsteinRadius, nil
	case "source_x":
		return p.SourceX, nil
	case "source_y":
		return p.SourceY, nil
	case "source_radius":
		return p.SourceRadius, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
}

// Set assigns a parameter by name. grid_size is truncated to an integer.
func (p *Params) Set(name string, v float64) error {
	switch name {
	case "grid_size":
		p.GridSize = int(v)
	case "einstein_radius":
		p.EinsteinRadius = v
	case "source_x":
		p.SourceX = v
	case "source_y":
		p.SourceY = v
	case "source_radius":
		p.SourceRadius = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

// Range returns the range for a named parameter.
func (l Limits) Range(name string) (Range, error) {
	switch name {
	case "grid_size":
		return l.GridSize, nil
	case "einstein_radius":
		return l.EinsteinRadius, nil
	case "source_x":
		return l.SourceX, nil
	case "source_y":
		return l.SourceY, nil
	case "source_radius":
		return l.SourceRadius, nil
	}
	return Range{}, fmt.Errorf("%w: %q", ErrUnknownParam, name)
}
