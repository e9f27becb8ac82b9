package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"clipforge/pkg/api"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var tenantCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new tenant",
	Long: `Register a new tenant and print its API key.

The API key is shown exactly once; store it somewhere safe. All subsequent
requests authenticate with this key via the --token flag or the
CLIPFORGE_TOKEN environment variable.

Example:
  clipctl tenant create --name "Acme Corp"`,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")

		url := viper.GetString("url")

		if name == "" {
			cmd.Println("Error: --name is required")
			return
		}

		client := NewJobClient(url, viper.GetString("token"))

		result, err := client.CreateTenant(api.CreateTenantRequest{Name: name})
		if err != nil {
			if apiErr, ok := err.(*APIError); ok {
				cmd.Printf("Tenant creation failed (%d): %s\n", apiErr.StatusCode, apiErr.Message)
			} else {
				cmd.Printf("Tenant creation failed: %v\n", err)
			}
			return
		}

		cmd.Printf("✓ Tenant created!\nTenant ID: %s\nAPI Key:   %s\n\nThe API key will not be shown again.\n", result.ID, result.ApiKey)
	},
}

func init() {
	tenantCreateCmd.Flags().StringP("name", "n", "", "Name of the tenant (required)")

	tenantCmd.AddCommand(tenantCreateCmd)
	rootCmd.AddCommand(tenantCmd)
}
