package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/prodflow/catalog"
)

var (
	producesFilter string
	consumesFilter string
	listMaterials  bool
	listProducts   bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the recipes available to scenarios",
	Long: `Lists the machine archetypes of the active catalog with their
per-machine rates. Filter by produced or consumed material, or list every
material the catalog mentions.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if listMaterials || listProducts {
			materials := cat.Materials()
			if listProducts {
				materials = cat.Products()
			}
			if outputFormat == outputJSON {
				return writeJSON(out, materials)
			}
			for _, m := range materials {
				fmt.Fprintln(out, m)
			}
			return nil
		}

		recipes := cat.Recipes()
		switch {
		case producesFilter != "":
			recipes = cat.ByOutput(producesFilter)
		case consumesFilter != "":
			recipes = cat.ByInput(consumesFilter)
		}
		if outputFormat == outputJSON {
			if recipes == nil {
				recipes = []catalog.Recipe{}
			}
			return writeJSON(out, recipes)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		headerColor.Fprintln(tw, "ID\tMACHINE\tINPUTS\tOUTPUTS")
		for _, r := range recipes {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Machine, formatStreams(r.Inputs), formatStreams(r.Outputs))
		}
		return tw.Flush()
	},
}

func init() {
	catalogCmd.Flags().StringVar(&producesFilter, "produces", "", "Only recipes producing this material")
	catalogCmd.Flags().StringVar(&consumesFilter, "consumes", "", "Only recipes consuming this material")
	catalogCmd.Flags().BoolVar(&listMaterials, "materials", false, "List materials instead of recipes")
	catalogCmd.Flags().BoolVar(&listProducts, "products", false, "List produced materials instead of recipes")
	AddCommand(catalogCmd)
}
