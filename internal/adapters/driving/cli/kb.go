package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect and manage the learned mapping knowledge base",
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every lens with stored mappings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if knowledgeStore == nil {
			return errors.New("knowledge store not configured")
		}
		groups, err := knowledgeStore.Groups(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing groups: %w", err)
		}
		if len(groups) == 0 {
			cmd.Println("No stored mappings.")
			return nil
		}
		for _, g := range groups {
			cmd.Println(g)
		}
		return nil
	},
}

var kbShowCmd = &cobra.Command{
	Use:   "show [lens]",
	Short: "Show the stored mappings for one lens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if knowledgeStore == nil {
			return errors.New("knowledge store not configured")
		}
		mapping, err := knowledgeStore.GetMapping(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("reading mappings: %w", err)
		}
		if len(mapping) == 0 {
			cmd.Printf("No stored mappings for %s.\n", args[0])
			return nil
		}

		ordinals := make([]int, 0, len(mapping))
		for from := range mapping {
			ordinals = append(ordinals, from)
		}
		sort.Ints(ordinals)
		for _, from := range ordinals {
			cmd.Printf("variation %d -> pattern %d\n", from, mapping[from])
		}
		return nil
	},
}

var kbClearCmd = &cobra.Command{
	Use:   "clear [lens]",
	Short: "Delete the stored mappings for one lens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if knowledgeStore == nil {
			return errors.New("knowledge store not configured")
		}
		if err := knowledgeStore.DeleteGroup(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("clearing mappings: %w", err)
		}
		cmd.Printf("Cleared mappings for %s.\n", args[0])
		return nil
	},
}

func init() {
	kbCmd.AddCommand(kbListCmd)
	kbCmd.AddCommand(kbShowCmd)
	kbCmd.AddCommand(kbClearCmd)
	rootCmd.AddCommand(kbCmd)
}
