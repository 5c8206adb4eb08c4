package services

import "github.com/osgeoweblate/redmine-gtt-print/internal/models"

// Values expected by the print server's map renderer.
const (
	mapRotation    = 0
	mapScale       = 25000
	mapProjection  = "EPSG:3857"
	mapDPI         = 144
	styleVersion   = "2"
	styleBaseColor = "#FF4500"
	baseMapURL     = "https://cyberjapandata.gsi.go.jp/xyz/std"
	baseMapFormat  = "png"
)

// MapComposer fills the fixed map template with a center and features.
type MapComposer struct{}

func NewMapComposer() *MapComposer {
	return &MapComposer{}
}

func (c *MapComposer) Compose(center []float64, features []models.GeoJSON) *models.MapConfiguration {
	return &models.MapConfiguration{
		Center:         append([]float64(nil), center...),
		Rotation:       mapRotation,
		LongitudeFirst: true,
		Layers: []models.Layer{
			&models.GeoJSONLayer{
				GeoJSON: models.FeatureCollection{
					Features: append([]models.GeoJSON(nil), features...),
					Type:     "FeatureCollection",
				},
				Style: models.LayerStyle{
					Val1: styleBaseColor,
					All: models.StyleRule{
						Symbolizers: []models.Symbolizer{featureSymbolizer()},
					},
					Version: styleVersion,
				},
				Type: "geojson",
			},
			&models.TileLayer{
				BaseURL:        baseMapURL,
				ImageExtension: baseMapFormat,
				Type:           "osm",
			},
		},
		Scale:      mapScale,
		Projection: mapProjection,
		DPI:        mapDPI,
	}
}

// featureSymbolizer draws the issue geometry. strokeColor references val1
// from the enclosing style, leading space included.
func featureSymbolizer() models.Symbolizer {
	return models.Symbolizer{
		FillColor:       "#FF0000",
		StrokeWidth:     5,
		FillOpacity:     0,
		GraphicName:     "circle",
		Rotation:        "30",
		StrokeDashstyle: "solid",
		StrokeLinecap:   "round",
		Type:            "point",
		GraphicOpacity:  0.4,
		StrokeColor:     " ${val1}",
		PointRadius:     8,
		StrokeOpacity:   1,
	}
}
