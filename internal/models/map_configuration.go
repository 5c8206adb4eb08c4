package models

type (
	MapConfiguration struct {
		Center         []float64 `json:"center"`
		Rotation       int       `json:"rotation"`
		LongitudeFirst bool      `json:"longitudeFirst"`
		Layers         []Layer   `json:"layers"`
		Scale          int       `json:"scale"`
		Projection     string    `json:"projection"`
		DPI            int       `json:"dpi"`
	}

	// Layer is either a GeoJSONLayer or a TileLayer.
	Layer interface {
		LayerType() string
	}

	GeoJSONLayer struct {
		GeoJSON FeatureCollection `json:"geoJson"`
		Style   LayerStyle        `json:"style"`
		Type    string            `json:"type"`
	}

	FeatureCollection struct {
		Features []GeoJSON `json:"features"`
		Type     string    `json:"type"`
	}

	LayerStyle struct {
		Val1    string    `json:"val1"`
		All     StyleRule `json:"*"`
		Version string    `json:"version"`
	}

	StyleRule struct {
		Symbolizers []Symbolizer `json:"symbolizers"`
	}

	Symbolizer struct {
		FillColor       string  `json:"fillColor"`
		StrokeWidth     int     `json:"strokeWidth"`
		FillOpacity     int     `json:"fillOpacity"`
		GraphicName     string  `json:"graphicName"`
		Rotation        string  `json:"rotation"`
		StrokeDashstyle string  `json:"strokeDashstyle"`
		StrokeLinecap   string  `json:"strokeLinecap"`
		Type            string  `json:"type"`
		GraphicOpacity  float64 `json:"graphicOpacity"`
		StrokeColor     string  `json:"strokeColor"`
		PointRadius     int     `json:"pointRadius"`
		StrokeOpacity   int     `json:"strokeOpacity"`
	}

	TileLayer struct {
		BaseURL        string `json:"baseURL"`
		ImageExtension string `json:"imageExtension"`
		Type           string `json:"type"`
	}
)

func (l *GeoJSONLayer) LayerType() string { return l.Type }

func (l *TileLayer) LayerType() string { return l.Type }
