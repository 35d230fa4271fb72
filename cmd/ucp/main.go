// Command ucp is a consumer-side CLI for the Universal Commerce Protocol:
// it discovers merchants and searches their catalogs over HTTP.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ucp "github.com/ucp-foundation/ucp/go"
	ucphttp "github.com/ucp-foundation/ucp/go/http"
)

var (
	flagQuery    string
	flagLimit    int
	flagTimeout  time.Duration
	flagJSON     bool
	flagValidate bool
)

var rootCmd = &cobra.Command{
	Use:          "ucp",
	Short:        "Discover and search UCP merchants",
	Long:         "ucp talks to merchants implementing the Universal Commerce Protocol: it resolves their discovery document from /.well-known/ucp and issues product searches against the advertised endpoint.",
	SilenceUsage: true,
}

var discoverCmd = &cobra.Command{
	Use:   "discover <base-url>",
	Short: "Fetch and print a merchant's discovery document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		doc, err := client.Discover(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(doc)
		}

		fmt.Printf("merchant:  %s (%s)\n", doc.Merchant.Name, doc.Merchant.ID)
		fmt.Printf("protocol:  %s\n", doc.ProtocolVersion)
		fmt.Println("capabilities:")
		for _, cap := range doc.Capabilities {
			endpoint := ""
			if svc, ok := doc.Services[cap.Name]; ok {
				endpoint = svc.RESTEndpoint
			}
			fmt.Printf("  %s@%s  %s\n", cap.Name, cap.Version, endpoint)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <base-url>",
	Short: "Search a merchant's product catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		result, err := client.Search(cmd.Context(), args[0], ucp.SearchQuery{
			Query: flagQuery,
			Limit: flagLimit,
		})
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(result)
		}

		for _, item := range result.Items {
			fmt.Printf("%-12s  %8s  %s\n", item.ID, ucp.DisplayPrice(item.Price), item.Title)
		}
		fmt.Printf("%d of %d matching products\n", len(result.Items), result.Total)
		return nil
	},
}

func newClient() *ucp.Client {
	return ucphttp.NewClient(
		ucphttp.WithTimeout(flagTimeout),
		ucphttp.WithSchemaValidation(flagValidate),
	)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	_ = godotenv.Load()
	if os.Getenv("DEBUG") == "1" {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", ucphttp.DefaultTimeout, "per-request timeout")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print raw JSON payloads")
	rootCmd.PersistentFlags().BoolVar(&flagValidate, "validate", false, "validate wire payloads against the protocol schemas")

	searchCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "search text; empty matches everything")
	searchCmd.Flags().IntVarP(&flagLimit, "limit", "l", 0, "maximum items to return; 0 uses the merchant default")

	rootCmd.AddCommand(discoverCmd, searchCmd)

	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
