package main

import (
	"fmt"
	"strings"

	"github.com/abdulachik/panelforge/internal/server"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:       "schema KIND",
	Short:     "Print the JSON schema of an extracted record",
	Long:      fmt.Sprintf("Print the JSON schema of a record kind: %s.", strings.Join(server.SchemaKinds, ", ")),
	Args:      cobra.ExactArgs(1),
	ValidArgs: server.SchemaKinds,
	RunE:      runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	schema, err := server.SchemaFor(args[0])
	if err != nil {
		return err
	}
	return printJSON(schema)
}
