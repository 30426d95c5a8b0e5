package app

import (
	cliflag "k8s.io/component-base/cli/flag"
)

// NamedFlagSetOptions is implemented by the option tree of a gcslink binary.
type NamedFlagSetOptions interface {
	// Flags returns the options grouped into named flag sets.
	Flags() cliflag.NamedFlagSets

	// Complete fills in fields that depend on other fields.
	Complete() error

	// Validate checks the options after the config file has been merged.
	Validate() error
}
