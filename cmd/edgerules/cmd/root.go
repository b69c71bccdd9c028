package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rimvydasb/edgerules-sub002/internal/erederrors"
	"github.com/rimvydasb/edgerules-sub002/internal/interp"
	"github.com/rimvydasb/edgerules-sub002/internal/linker"
	"github.com/rimvydasb/edgerules-sub002/internal/parser"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	showSchema bool
)

var rootCmd = &cobra.Command{
	Use:   "edgerules [source]",
	Short: "EdgeRules expression and decision-rules engine",
	Long: `edgerules parses, links and evaluates an EdgeRules model.

Argument modes:
  edgerules @path/to/model.er       read source from a file
  edgerules '{ a: 1; value: a+1 }'  evaluate source given on the command line
  edgerules < model.er              read source from stdin

If the model defines a field named 'value', only that field's rendered
value is printed. Otherwise the whole evaluated model is printed in the
same surface syntax it was parsed from.`,
	Version: Version,
	Args:    cobra.ArbitraryArgs,
	RunE:    runModel,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.Flags().BoolVar(&showSchema, "show-schema", false, "print the linked root type before evaluating")
}

// readSource implements the three argument modes: a leading '@' names a
// file, any other positional arguments are joined with spaces, and no
// arguments at all reads stdin.
func readSource(args []string) (source, file string, err error) {
	switch {
	case len(args) == 1 && strings.HasPrefix(args[0], "@"):
		file = strings.TrimPrefix(args[0], "@")
		content, rerr := os.ReadFile(file)
		if rerr != nil {
			return "", file, fmt.Errorf("failed to read %s: %w", file, rerr)
		}
		return string(content), file, nil
	case len(args) > 0:
		return strings.Join(args, " "), "<args>", nil
	default:
		content, rerr := io.ReadAll(os.Stdin)
		if rerr != nil {
			return "", "<stdin>", fmt.Errorf("failed to read stdin: %w", rerr)
		}
		return string(content), "<stdin>", nil
	}
}

func runModel(_ *cobra.Command, args []string) error {
	source, file, err := readSource(args)
	if err != nil {
		fmt.Println(err)
		return err
	}

	root, perrs := parser.ParseModel(source)
	if len(perrs) > 0 {
		fmt.Println(erederrors.FormatErrors(erederrors.FromParseErrors(perrs, source, file), false))
		return fmt.Errorf("parsing failed with %d error(s)", len(perrs))
	}

	linked, lerrs := linker.Link(root)
	if len(lerrs) > 0 {
		fmt.Println(erederrors.FormatErrors(erederrors.FromLinkErrors(lerrs, source, file), false))
		return fmt.Errorf("linking failed with %d error(s)", len(lerrs))
	}

	if showSchema {
		fmt.Println(linked.ToSchema().String())
	}

	ev := interp.NewEvaluator()
	env := ev.Root(linked)

	if linked.FieldIndex("value") >= 0 {
		v, err := ev.EvalField(env, "value")
		if err != nil {
			fmt.Println(erederrors.FromRuntimeError(err, source, file).Format(false))
			return err
		}
		fmt.Println(v.String())
		return nil
	}

	obj, fieldErrs := ev.EvalAllFields(env)
	for _, f := range linked.Fields {
		if ferr, ok := fieldErrs[f.Name]; ok {
			fmt.Println(erederrors.FromRuntimeError(ferr, source, file).Format(false))
		}
	}
	fmt.Println(obj.String())
	return nil
}
