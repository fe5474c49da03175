package cmd

import (
	"github.com/spf13/cobra"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/access"
)

var policyFile string

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect role and route policy",
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective policy as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		policy, err := loadPolicy(policyFile)
		if err != nil {
			return err
		}
		out, err := policy.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var policyValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a policy file against the policy invariants",
	RunE: func(cmd *cobra.Command, _ []string) error {
		policy, err := access.LoadPolicyFile(policyFile)
		if err != nil {
			return err
		}
		cmd.Printf("%s: ok (%d roles, %d routes)\n", policyFile, len(policy.RolePermissions), len(policy.Routes))
		return nil
	},
}

func init() {
	policyShowCmd.Flags().StringVar(&policyFile, "file", "", "policy YAML file (default: built-in tables)")
	policyValidateCmd.Flags().StringVar(&policyFile, "file", "", "policy YAML file")
	_ = policyValidateCmd.MarkFlagRequired("file")

	policyCmd.AddCommand(policyShowCmd, policyValidateCmd)
}
