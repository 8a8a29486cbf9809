package classifierdl

import (
	"fmt"
	"strings"

	"github.com/kiteco/docclassifier/kite-golib/errors"
)

// Verbosity controls how much a training run reports. Levels are ordered:
// each level includes everything reported by the levels below it.
type Verbosity int

const (
	// Silent reports nothing but the run summary
	Silent Verbosity = iota
	// Epochs reports loss and accuracy after every epoch
	Epochs
	// TrainingStat adds validation statistics and dataset shape
	TrainingStat
	// PerStep reports every batch
	PerStep
	// Debug reports everything, including graph wiring
	Debug
)

var verbosityNames = []string{"silent", "epochs", "training_stat", "per_step", "debug"}

func (v Verbosity) String() string {
	if v < Silent || v > Debug {
		return fmt.Sprintf("Verbosity(%d)", int(v))
	}
	return verbosityNames[v]
}

// ParseVerbosity parses a verbosity name, case insensitively
func ParseVerbosity(s string) (Verbosity, error) {
	for i, name := range verbosityNames {
		if strings.EqualFold(s, name) {
			return Verbosity(i), nil
		}
	}
	return 0, errors.Errorf("unknown verbosity %q, expected one of %s", s, strings.Join(verbosityNames, ", "))
}

// UnmarshalText implements encoding.TextUnmarshaler, for flags and config files
func (v *Verbosity) UnmarshalText(text []byte) error {
	parsed, err := ParseVerbosity(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (v Verbosity) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Includes returns true if messages at level l should be reported
func (v Verbosity) Includes(l Verbosity) bool {
	return v >= l
}
