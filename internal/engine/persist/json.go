package persist

import (
	"fmt"
	"io"
	"math"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/charbuf/internal/engine/buffer"
)

// JSON writes {"value":[...],"count":n,"shared":false}.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Encode(w io.Writer, f buffer.Fields) error {
	if err := f.Validate(); err != nil {
		return err
	}

	doc := []byte(`{}`)
	var err error
	if doc, err = sjson.SetBytes(doc, "value", f.Value); err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}
	if doc, err = sjson.SetBytes(doc, "count", f.Count); err != nil {
		return fmt.Errorf("encoding count: %w", err)
	}
	if doc, err = sjson.SetBytes(doc, "shared", false); err != nil {
		return fmt.Errorf("encoding shared: %w", err)
	}

	if _, err := w.Write(append(doc, '\n')); err != nil {
		return fmt.Errorf("writing json buffer: %w", err)
	}
	return nil
}

func (jsonCodec) Decode(r io.Reader) (buffer.Fields, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return buffer.Fields{}, fmt.Errorf("reading json buffer: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return buffer.Fields{}, corrupt("invalid json")
	}

	value := gjson.GetBytes(data, "value")
	if !value.IsArray() {
		return buffer.Fields{}, corrupt("missing value array")
	}
	count := gjson.GetBytes(data, "count")
	if count.Type != gjson.Number {
		return buffer.Fields{}, corrupt("missing count")
	}
	if count.Num != math.Trunc(count.Num) || count.Num < math.MinInt32 || count.Num > math.MaxInt32 {
		return buffer.Fields{}, corrupt("count %s is not an int32", count.Raw)
	}

	units := make([]uint16, 0, len(value.Array()))
	var bad error
	value.ForEach(func(_, c gjson.Result) bool {
		if c.Type != gjson.Number || c.Num != math.Trunc(c.Num) || c.Num < 0 || c.Num > math.MaxUint16 {
			bad = corrupt("value[%d] = %s is not a code unit", len(units), c.Raw)
			return false
		}
		units = append(units, uint16(c.Num))
		return true
	})
	if bad != nil {
		return buffer.Fields{}, bad
	}

	f := buffer.Fields{Value: units, Count: int32(count.Num)}
	if err := f.Validate(); err != nil {
		return buffer.Fields{}, err
	}
	return f, nil
}
