package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:     "rm <id|index|title>...",
	Aliases: []string{"delete"},
	Short:   "Delete tasks permanently",
	Long: `Delete tasks permanently.

Subtasks of a deleted task are kept and become top-level tasks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.close()

	for _, arg := range args {
		t, err := b.resolve(arg, []string{"all"})
		if err != nil {
			return err
		}
		if err := b.delete(t.ID); err != nil {
			return err
		}
		fmt.Printf("deleted %s %s\n", t.ID, t.Title)
	}
	return nil
}
