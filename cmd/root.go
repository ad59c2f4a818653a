package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "validation-rules",
	Short: "Compile report validation rules from heterogeneous sources",
	Long: `Validation Rules Service - compiles validation-rule definitions for
regulatory report templates into one canonical rule set.

Supported source formats (selected by file extension):
  .json        structured schema document
  .yaml, .yml  YAML schema document
  .csv         row-oriented rule sheet
  .xlsx, .xls  spreadsheet workbook
  .txt         legacy line-oriented rules

Commands:
  compile     - Compile a single rule definition file
  batch       - Compile every supported rule file in a directory
  completion  - Generate shell completion scripts

Workflow:
  1. Compile: validation-rules compile rules.xlsx --template-id 42
  2. Publish: validation-rules compile rules.xlsx --template-id 42 --s3-upload`,
}

var completionCmd = &cobra.Command{
	Use:                   "completion [bash|zsh|fish|powershell]",
	Short:                 "Generate shell completion script",
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		switch args[0] {
		case "bash":
			err = cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			err = cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			err = cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			err = cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating completion: %v\n", err)
			os.Exit(1)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(completionCmd)
}
