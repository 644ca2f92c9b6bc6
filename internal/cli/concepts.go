package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/biasprobe/pkg/concepts"
)

var (
	conceptsLang  string
	conceptsFiles []string
)

// conceptsCmd represents the concepts command
var conceptsCmd = &cobra.Command{
	Use:   "concepts",
	Short: "Inspect concept keyword lists",
	Long: `Inspect the concepts available for probing.

Builtin concepts ship per language; additional concepts load from YAML
files passed with --file.`,
}

var conceptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available concepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry(conceptsLang, conceptsFiles)
		if err != nil {
			return err
		}

		if registry.Len() == 0 {
			langs, err := concepts.BuiltinLangs()
			if err != nil {
				return fmt.Errorf("list builtin languages: %w", err)
			}
			fmt.Fprintf(os.Stderr, "No concepts for %q. Builtin languages: %s\n",
				conceptsLang, strings.Join(langs, ", "))
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tLANG\tKEYWORDS")
		for _, c := range registry.Concepts() {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Name, c.Lang, len(c.Keywords))
		}
		return tw.Flush()
	},
}

var conceptsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one concept's keywords",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry(conceptsLang, conceptsFiles)
		if err != nil {
			return err
		}

		c, err := registry.Get(args[0])
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode concept: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(conceptsCmd)
	conceptsCmd.AddCommand(conceptsListCmd)
	conceptsCmd.AddCommand(conceptsShowCmd)

	conceptsCmd.PersistentFlags().StringVar(&conceptsLang, "lang", "en", "concept language")
	conceptsCmd.PersistentFlags().StringSliceVar(&conceptsFiles, "file", nil, "extra concept YAML file (repeatable)")
}

// loadRegistry builds the run registry: builtin concepts for the language
// plus any concept files.
func loadRegistry(lang string, files []string) (*concepts.Registry, error) {
	registry, err := concepts.Builtin(lang)
	if err != nil {
		return nil, fmt.Errorf("load builtin concepts: %w", err)
	}

	for _, path := range files {
		cs, err := concepts.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load concept file %s: %w", path, err)
		}
		for _, c := range cs {
			if err := registry.Register(c); err != nil {
				return nil, fmt.Errorf("register concept from %s: %w", path, err)
			}
		}
	}
	return registry, nil
}
