// Package envconf fills configuration structs from environment variables.
//
// Fields are bound with `env:"NAME"` tags. `envDefault:"..."` supplies a
// fallback and `env:"NAME,required"` makes a variable mandatory. Nested
// structs are walked automatically. Any type implementing
// encoding.TextUnmarshaler (slog.Level, for example) is supported.
package envconf

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

var ErrMissingRequired = errors.New("missing required environment variable")

func Load(dst any) error {
	if dst == nil {
		return errors.New("destination is nil")
	}

	err := env.Parse(dst)
	if err != nil {
		var agg env.AggregateError
		if errors.As(err, &agg) {
			for _, e := range agg.Errors {
				var notSet env.VarIsNotSetError
				if errors.As(e, &notSet) {
					return fmt.Errorf("%w: %s", ErrMissingRequired, notSet.Key)
				}
			}
		}

		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}
