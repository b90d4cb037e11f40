package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/twistlock-tools/twistq/internal/config"
	"github.com/twistlock-tools/twistq/internal/log"
	"github.com/twistlock-tools/twistq/internal/source"
	"github.com/twistlock-tools/twistq/pkg/query"
	"github.com/twistlock-tools/twistq/pkg/render"
)

func newImageCmd() *cobra.Command {
	imageCmd := &cobra.Command{
		Use:   "image",
		Short: "Retrieve information about images",
	}
	imageCmd.AddCommand(newSearchCmd(), newFileCmd())
	return imageCmd
}

// addDisplayFlags registers the flags shared by every display command.
func addDisplayFlags(cmd *cobra.Command) {
	cmd.Flags().String("columns", "", "Override the default column set, e.g. 'name=NAME,license=LICENSE'")
	cmd.Flags().String("sort-key", "", "Field to sort rows by (defaults to the mode's sort key)")
}

func newSearchCmd() *cobra.Command {
	searchCmd := &cobra.Command{
		Use:   "search <searchspec> <searchtype>",
		Short: "Examine images on a console",
		Long: "Search queries the console for scan results matching searchspec and " +
			"prints the facet selected by searchtype.",
		Args: cobra.ExactArgs(2),
		RunE: runSearch,
	}
	searchCmd.Flags().String("twistlock-url", "", "Base console URL (env TWISTLOCK_URL)")
	searchCmd.Flags().String("twistlock-user", "", "Console username (env TWISTLOCK_USER)")
	searchCmd.Flags().String("twistlock-password", "", "Console password (env TWISTLOCK_PASSWORD)")
	searchCmd.Flags().String("twistlock-token", "", "Console bearer token (env TWISTLOCK_TOKEN)")
	addDisplayFlags(searchCmd)
	return searchCmd
}

func newFileCmd() *cobra.Command {
	fileCmd := &cobra.Command{
		Use:   "file <filename> <image-id> <searchtype>",
		Short: "Examine images from a local file",
		Long: "File reads a saved scan-results document and prints the facet of " +
			"the image named by image-id selected by searchtype.",
		Args: cobra.ExactArgs(3),
		RunE: runFile,
	}
	addDisplayFlags(fileCmd)
	return fileCmd
}

// displayOptions reads the searchtype argument plus the --columns and
// --sort-key overrides.
func displayOptions(cmd *cobra.Command, searchType string) (display, []render.Column, string, error) {
	d, err := parseDisplay(searchType)
	if err != nil {
		return display{}, nil, "", err
	}
	columnSpec, _ := cmd.Flags().GetString("columns") //nolint:errcheck
	columns, err := parseColumns(columnSpec)
	if err != nil {
		return display{}, nil, "", err
	}
	sortKey, _ := cmd.Flags().GetString("sort-key") //nolint:errcheck
	return d, columns, sortKey, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := log.NewLogger(ctx)
	searchSpec := args[0]

	d, columns, sortKey, err := displayOptions(cmd, args[1])
	if err != nil {
		return err
	}

	flagURL, _ := cmd.Flags().GetString("twistlock-url")           //nolint:errcheck
	flagUser, _ := cmd.Flags().GetString("twistlock-user")         //nolint:errcheck
	flagPassword, _ := cmd.Flags().GetString("twistlock-password") //nolint:errcheck
	flagToken, _ := cmd.Flags().GetString("twistlock-token")       //nolint:errcheck

	console, err := config.Resolve(config.Console{
		URL:      flagURL,
		Username: flagUser,
		Password: flagPassword,
		Token:    flagToken,
	}, config.DefaultCredentialsPath())
	if err != nil {
		return err
	}

	// A username without a password means an interactive session; ask
	// rather than failing.
	if console.Token == "" && console.Username != "" && console.Password == "" {
		prompt := &survey.Password{Message: "Console password:"}
		if err := survey.AskOne(prompt, &console.Password); err != nil {
			return fmt.Errorf("error reading password: %w", err)
		}
	}

	logger.Debug("querying console", zap.String("url", console.URL), zap.String("search", searchSpec))

	doc, err := source.Search(ctx, nil, console, searchSpec)
	if err != nil {
		return fmt.Errorf("error searching console: %w", err)
	}

	if len(doc.Images) > 1 {
		ids := query.ListImageIdentifiers(doc)
		sorted := make([]string, 0, len(ids))
		for id := range ids {
			sorted = append(sorted, id)
		}
		sort.Strings(sorted)
		fmt.Fprintf(cmd.OutOrStdout(), "Multiple images match: %s\n", strings.Join(sorted, " "))
		return nil
	}

	return runDisplay(cmd.OutOrStdout(), doc, searchSpec, d, columns, sortKey)
}

func runFile(cmd *cobra.Command, args []string) error {
	filename, imageSpec := args[0], args[1]

	d, columns, sortKey, err := displayOptions(cmd, args[2])
	if err != nil {
		return err
	}

	doc, err := source.ReadFile(filename)
	if err != nil {
		return err
	}

	return runDisplay(cmd.OutOrStdout(), doc, imageSpec, d, columns, sortKey)
}
