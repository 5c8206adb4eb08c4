package models

import "math"

// Center returns the midpoint of the bounding box of every position found in
// a Feature, FeatureCollection or bare geometry, or nil when there is none.
func (g GeoJSON) Center() []float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	found := false

	var visit func(v any)
	visit = func(v any) {
		switch t := v.(type) {
		case GeoJSON:
			visit(map[string]any(t))
		case map[string]any:
			for _, key := range []string{"geometry", "geometries", "features", "coordinates"} {
				if child, ok := t[key]; ok {
					visit(child)
				}
			}
		case []any:
			if x, y, ok := position(t); ok {
				minX, maxX = math.Min(minX, x), math.Max(maxX, x)
				minY, maxY = math.Min(minY, y), math.Max(maxY, y)
				found = true
				return
			}
			for _, child := range t {
				visit(child)
			}
		}
	}
	visit(g)

	if !found {
		return nil
	}
	return []float64{(minX + maxX) / 2, (minY + maxY) / 2}
}

func position(v []any) (float64, float64, bool) {
	if len(v) < 2 {
		return 0, 0, false
	}
	x, okX := v[0].(float64)
	y, okY := v[1].(float64)
	return x, y, okX && okY
}
