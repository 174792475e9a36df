package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "€5.99", want: 599},
		{raw: "5.99", want: 599},
		{raw: " €14.99 ", want: 1499},
		{raw: "5,50", want: 550},
		{raw: "12", want: 1200},
		{raw: "2.5", want: 250},
		{raw: "EUR 3.75", want: 375},
		{raw: "", wantErr: true},
		{raw: "€", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "-1.00", wantErr: true},
		{raw: "€1000000.00", want: MaxPriceMinor},
		{raw: "€1000000.01", wantErr: true},
		{raw: "€1e300", wantErr: true},
		{raw: "99999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePrice(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPrice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceFromFloat_Range(t *testing.T) {
	for _, f := range []float64{1e300, 9.3e16, float64(MaxPriceMinor)} {
		got, err := PriceFromFloat(f)
		assert.ErrorIs(t, err, ErrInvalidPrice, "%v", f)
		assert.Zero(t, got)
	}

	var raw RawMenuItem
	err := json.Unmarshal([]byte(`{"id":1,"name":"Caviar","price":1e300}`), &raw)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "€5.99", FormatPrice(599))
	assert.Equal(t, "€0.00", FormatPrice(0))
	assert.Equal(t, "€11.98", FormatPrice(1198))
	assert.Equal(t, "€100.05", FormatPrice(10005))
	assert.Equal(t, "-0.50", FormatAmount(-50))
}

func TestRawMenuItem_JSONNormalization(t *testing.T) {
	t.Run("NumericIDAndPrice", func(t *testing.T) {
		var raw RawMenuItem
		require.NoError(t, json.Unmarshal([]byte(`{"id":7,"name":"Mocha","price":3.75,"category":"Coffee"}`), &raw))

		item, err := raw.Normalize()
		require.NoError(t, err)
		assert.Equal(t, "7", item.ID)
		assert.Equal(t, int64(375), item.PriceMinor)
		assert.Equal(t, "Coffee", item.Category)
	})

	t.Run("StringIDAndCurrencyPrice", func(t *testing.T) {
		var raw RawMenuItem
		require.NoError(t, json.Unmarshal([]byte(`{"id":"1","name":"Pancakes","price":"€5.99","image":"/uploads/p.jpg"}`), &raw))

		item, err := raw.Normalize()
		require.NoError(t, err)
		assert.Equal(t, "1", item.ID)
		assert.Equal(t, int64(599), item.PriceMinor)
		assert.Equal(t, "/uploads/p.jpg", item.ImageURL)
		assert.Equal(t, "€5.99", item.DisplayPrice())
	})

	t.Run("MissingPrice", func(t *testing.T) {
		var raw RawMenuItem
		require.NoError(t, json.Unmarshal([]byte(`{"id":"1","name":"Pancakes"}`), &raw))

		_, err := raw.Normalize()
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("MissingID", func(t *testing.T) {
		raw := RawMenuItem{Name: "Pancakes", Price: NewPrice(100)}
		_, err := raw.Normalize()
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("BadPriceString", func(t *testing.T) {
		var raw RawMenuItem
		err := json.Unmarshal([]byte(`{"id":"1","price":"cheap"}`), &raw)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})
}

func TestRawMenuItem_YAML(t *testing.T) {
	data := []byte(`
- id: 1
  name: Espresso
  price: "€2.00"
- id: "2"
  name: Cappuccino
  price: 2.75
`)
	var raw []RawMenuItem
	require.NoError(t, yaml.Unmarshal(data, &raw))

	items, err := NormalizeAll(raw)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, int64(200), items[0].PriceMinor)
	assert.Equal(t, "2", items[1].ID)
	assert.Equal(t, int64(275), items[1].PriceMinor)
}

func TestCartEntry_Subtotal(t *testing.T) {
	entry := CartEntry{Item: MenuItem{ID: "1", Name: "Pancakes", PriceMinor: 599}, Quantity: 3}
	assert.Equal(t, int64(1797), entry.Subtotal())
	assert.Equal(t, LineKey{ID: "1", Name: "Pancakes"}, entry.Key())
}
