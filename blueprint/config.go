package blueprint

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for blueprint argument parsing, allowing
// callers to customize flag names while keeping sensible defaults via
// [NewConfig].
type Flags struct {
	AllowHyphens string
	Strict       string
	Layer        string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{Flags: f}
}

// Config holds CLI flag values controlling how [Blueprint.ApplyArgv]
// parses and resolves a process's arguments.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.ApplyArgvOptions] to build the
// [ApplyArgvOptions] a [Blueprint.ApplyArgv] call needs.
type Config struct {
	AllowHyphens bool
	Strict       bool
	Layer        string
	Flags        Flags
}

// NewConfig returns a new [Config] with default flag names.
// Use [Config.RegisterFlags] to add CLI flags, or set values directly.
func NewConfig() *Config {
	f := Flags{
		AllowHyphens: "allow-hyphens",
		Strict:       "strict",
		Layer:        "layer",
	}

	return f.NewConfig()
}

// RegisterFlags adds blueprint argument-parsing flags to the given
// [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&c.AllowHyphens, c.Flags.AllowHyphens, false,
		"accept flag-style \"--key=value\" tokens in addition to \"key=value\"")
	flags.BoolVar(&c.Strict, c.Flags.Strict, true,
		"reject arguments that no field in the schema consults")
	flags.StringVar(&c.Layer, c.Flags.Layer, "cli",
		"name recorded against this process's argument layer")
}

// RegisterCompletions registers shell completions for blueprint flags
// on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Strict,
		cobra.FixedCompletions([]string{"true", "false"}, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Strict, err)
	}

	return nil
}

// ApplyArgvOptions builds the options [Blueprint.ApplyArgv] needs from
// c's current flag values.
func (c *Config) ApplyArgvOptions() ApplyArgvOptions {
	return ApplyArgvOptions{
		AllowHyphens: c.AllowHyphens,
		Strict:       c.Strict,
		LayerName:    c.Layer,
	}
}
