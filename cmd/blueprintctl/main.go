// Package main provides a CLI demonstrating the blueprint construction
// engine against a small example schema: a server configuration with a
// polymorphic backend.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"go.blueprintcfg.dev/blueprint/blueprint"
	"go.blueprintcfg.dev/blueprint/blueprint/metafactory/standard"
	"go.blueprintcfg.dev/blueprint/log"
	"go.blueprintcfg.dev/blueprint/profile"
	"go.blueprintcfg.dev/blueprint/version"
)

func exampleSchema() *blueprint.Schema {
	memoryBackend := blueprint.Record(
		blueprint.Field{Name: "capacity_bytes", Type: blueprint.Integer(), Default: blueprint.DefaultOf(int64(1 << 20))},
	)

	redisBackend := blueprint.Record(
		blueprint.Field{Name: "address", Type: blueprint.String()},
		blueprint.Field{Name: "db", Type: blueprint.Integer(), Default: blueprint.DefaultOf(int64(0))},
	)

	backendFactory := standard.New(map[string]*blueprint.Schema{
		"memory": memoryBackend,
		"redis":  redisBackend,
	}, standard.WithDefault("memory"))

	labels := blueprint.MapSchemaOf(map[string]blueprint.MapSchemaKey{
		"env":    {Type: blueprint.String(), Required: false},
		"region": {Type: blueprint.String(), Required: false},
	})

	return blueprint.Record(
		blueprint.Field{Name: "name", Type: blueprint.String(), Default: blueprint.DefaultOf("blueprintctl")},
		blueprint.Field{Name: "port", Type: blueprint.Integer(), Default: blueprint.DefaultOf(int64(8080))},
		blueprint.Field{
			Name:        "backend",
			MetaFactory: backendFactory,
			Nested:      memoryBackend,
		},
		blueprint.Field{Name: "tags", Nested: blueprint.List(blueprint.String(), blueprint.DefaultOf([]any{}))},
		blueprint.Field{Name: "labels", Nested: labels},
	)
}

func main() {
	logCfg := log.NewConfig()
	bpCfg := blueprint.NewConfig()
	profileCfg := profile.NewConfig()

	var (
		versionWanted bool
		profiler      *profile.Profiler
	)

	rootCmd := &cobra.Command{
		Use:           "blueprintctl [flags] -- key=value ...",
		Short:         "Construct a configuration value from layered key=value arguments",
		Long: "Construct a configuration value from layered key=value arguments.\n\n" +
			"Engine tokens (including a literal --help or -h meant for the\n" +
			"blueprint itself rather than this CLI) must follow a \"--\"\n" +
			"separator so cobra's own flag parsing leaves them untouched.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			profiler = profileCfg.NewProfiler()

			return profiler.Start()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return profiler.Stop()
		},
		RunE: func(_ *cobra.Command, args []string) error {
			if versionWanted {
				fmt.Printf("blueprintctl %s (revision %s, %s/%s)\n", version.Version, version.Revision, version.GoOS, version.GoArch)

				return nil
			}

			return run(logCfg, bpCfg, args)
		},
	}

	logCfg.RegisterFlags(rootCmd.Flags())
	bpCfg.RegisterFlags(rootCmd.Flags())
	profileCfg.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.Flags().BoolVar(&versionWanted, "version", false, "print version information and exit")

	if err := logCfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	if err := profileCfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(blueprint.ClassifyError(err))
	}
}

func run(logCfg *log.Config, bpCfg *blueprint.Config, args []string) error {
	handler, err := logCfg.NewHandler(os.Stderr)
	if err != nil {
		return err
	}

	logger := slog.New(handler)

	schema := exampleSchema()

	bp := blueprint.NewBlueprint(schema).WithLogger(logger)

	bp, err = bp.ApplyArgv(args, bpCfg.ApplyArgvOptions())
	if err != nil {
		return err
	}

	if bp.HelpRequested() {
		text, err := bp.Help(blueprint.HelpOptions{MissingWarnings: true})
		if err != nil {
			return err
		}

		fmt.Print(text)

		return nil
	}

	value, err := bp.Make()
	if err != nil {
		return err
	}

	fmt.Println(describe(value, 0))

	return nil
}

func describe(value any, depth int) string {
	indent := strings.Repeat("  ", depth)

	switch v := value.(type) {
	case map[string]any:
		var sb strings.Builder

		for k, fv := range v {
			fmt.Fprintf(&sb, "%s%s: %s\n", indent, k, describe(fv, depth+1))
		}

		return sb.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
