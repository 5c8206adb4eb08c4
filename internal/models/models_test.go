package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributes_KeepsInsertionOrder(t *testing.T) {
	attrs := NewAttributes()
	attrs.Set("zeta", 1)
	attrs.Set("alpha", "a")
	attrs.Set("mid", nil)
	attrs.Set("zeta", 2)

	data, err := json.Marshal(attrs)

	require.NoError(t, err)
	assert.Equal(t, `{"zeta":2,"alpha":"a","mid":null}`, string(data))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, attrs.Keys())
	assert.Equal(t, 3, attrs.Len())
}

func TestAttributes_UnmarshalJSON(t *testing.T) {
	t.Run("should keep the document order", func(t *testing.T) {
		var attrs Attributes

		err := json.Unmarshal([]byte(`{"b":1,"a":{"x":[1,2]},"c":"s"}`), &attrs)

		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "c"}, attrs.Keys())
		value, ok := attrs.Get("a")
		assert.True(t, ok)
		assert.Equal(t, map[string]any{"x": []any{float64(1), float64(2)}}, value)
	})

	t.Run("should reject non objects", func(t *testing.T) {
		var attrs Attributes
		assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &attrs))
	})
}

func TestDate(t *testing.T) {
	t.Run("should encode as a plain date", func(t *testing.T) {
		data, err := json.Marshal(NewDate(2024, time.March, 9))

		require.NoError(t, err)
		assert.Equal(t, `"2024-03-09"`, string(data))
	})

	t.Run("should decode plain dates and timestamps", func(t *testing.T) {
		for _, input := range []string{`"2024-03-09"`, `"2024-03-09T00:00:00Z"`} {
			var d Date
			require.NoError(t, json.Unmarshal([]byte(input), &d), input)
			assert.Equal(t, "2024-03-09", d.String())
		}
	})

	t.Run("should reject garbage", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
		assert.Error(t, json.Unmarshal([]byte(`20240309`), &d))
	})
}

func TestAttachment_IsImage(t *testing.T) {
	tests := []struct {
		name       string
		attachment Attachment
		want       bool
	}{
		{"jpeg content type", Attachment{Filename: "a.bin", ContentType: "image/jpeg"}, true},
		{"upper case content type", Attachment{Filename: "a", ContentType: "IMAGE/PNG"}, true},
		{"pdf", Attachment{Filename: "a.pdf", ContentType: "application/pdf"}, false},
		{"content type wins over extension", Attachment{Filename: "a.png", ContentType: "text/plain"}, false},
		{"extension without content type", Attachment{Filename: "photo.JPG"}, true},
		{"unknown extension without content type", Attachment{Filename: "notes.txt"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.attachment.IsImage())
		})
	}
}

func TestCustomFieldMapping_AttributeName(t *testing.T) {
	assert.Equal(t, "cf_通報者", CustomFieldMapping{Key: "reporter", FieldName: "通報者"}.AttributeName())
	assert.Equal(t, "caller", CustomFieldMapping{Key: "reporter", FieldName: "通報者", Attribute: "caller"}.AttributeName())
}

func TestGeoJSON_Center(t *testing.T) {
	tests := []struct {
		name string
		obj  GeoJSON
		want []float64
	}{
		{
			name: "point geometry",
			obj:  GeoJSON{"type": "Point", "coordinates": []any{139.5, 35.5}},
			want: []float64{139.5, 35.5},
		},
		{
			name: "polygon feature",
			obj: GeoJSON{"type": "Feature", "geometry": map[string]any{
				"type":        "Polygon",
				"coordinates": []any{[]any{[]any{0.0, 0.0}, []any{4.0, 0.0}, []any{4.0, 2.0}, []any{0.0, 0.0}}},
			}},
			want: []float64{2, 1},
		},
		{
			name: "feature collection",
			obj: GeoJSON{"type": "FeatureCollection", "features": []any{
				map[string]any{"geometry": map[string]any{"coordinates": []any{-1.0, -1.0}}},
				map[string]any{"geometry": map[string]any{"coordinates": []any{3.0, 5.0}}},
			}},
			want: []float64{1, 2},
		},
		{
			name: "empty geometry",
			obj:  GeoJSON{"type": "Feature", "geometry": nil},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.obj.Center())
		})
	}
}
