package password

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var optionsValidate = validator.New()

// decodeOptions copies opts into the tagged struct pointed to by out and runs its
// `validate` rules. Fields absent from opts keep the values already set in out.
// Unknown keys are rejected, and so are fractional numbers: every numeric
// option counts something.
func decodeOptions(opts Options, out any) error {
	if len(opts) > 0 {
		if err := checkWholeNumbers(opts); err != nil {
			return err
		}

		raw, err := yaml.Marshal(map[string]any(opts))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}

		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
	}

	if err := optionsValidate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

func checkWholeNumbers(opts Options) error {
	for key, value := range opts {
		var f float64
		switch v := value.(type) {
		case float32:
			f = float64(v)
		case float64:
			f = v
		default:
			continue
		}
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: option %q must be a whole number, got %v", ErrInvalidOptions, key, value)
		}
	}
	return nil
}
