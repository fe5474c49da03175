package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/access"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/money"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/debtlimit"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/payment"
)

var (
	checkPolicyFile string
	checkStrict     bool

	checkDebt     string
	checkMax      string
	checkPayment  string
	checkRole     string
	checkRoute    string
	checkIntended string
	checkRequired []string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate a single decision and print it as JSON",
}

var checkDebtCmd = &cobra.Command{
	Use:   "debt",
	Short: "Evaluate a debt against a ceiling",
	RunE: func(cmd *cobra.Command, _ []string) error {
		coercion := money.Coercion{Strict: checkStrict}
		debt, err := coercion.Amount(checkDebt)
		if err != nil {
			return fmt.Errorf("--debt: %w", err)
		}
		maxDebt, err := coercion.Amount(checkMax)
		if err != nil {
			return fmt.Errorf("--max: %w", err)
		}
		return printJSON(cmd, debtlimit.CheckDebtLimit(debt, maxDebt))
	},
}

var checkPaymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Validate a payment amount against a debt",
	RunE: func(cmd *cobra.Command, _ []string) error {
		coercion := money.Coercion{Strict: checkStrict}
		paid, err := coercion.Amount(checkPayment)
		if err != nil {
			return fmt.Errorf("--payment: %w", err)
		}
		debt, err := coercion.Amount(checkDebt)
		if err != nil {
			return fmt.Errorf("--debt: %w", err)
		}
		return printJSON(cmd, payment.ValidatePaymentAmount(paid, debt))
	},
}

// sessionFor is an authenticated session for --role, or unauthenticated
// when the flag is empty.
func sessionFor(role string) (access.Session, error) {
	if role == "" {
		return access.Unauthenticated(), nil
	}
	r, err := access.ParseRole(role)
	if err != nil {
		return access.Session{}, err
	}
	return access.Authenticated(r), nil
}

func checkDecider() (*access.Decider, error) {
	policy, err := loadPolicy(checkPolicyFile)
	if err != nil {
		return nil, err
	}
	return access.NewDecider(policy)
}

var checkRouteCmd = &cobra.Command{
	Use:   "route",
	Short: "Guard a route for a role",
	RunE: func(cmd *cobra.Command, _ []string) error {
		decider, err := checkDecider()
		if err != nil {
			return err
		}
		session, err := sessionFor(checkRole)
		if err != nil {
			return err
		}
		required := make([]access.Permission, 0, len(checkRequired))
		for _, name := range checkRequired {
			p, err := access.ParsePermission(name)
			if err != nil {
				return err
			}
			required = append(required, p)
		}

		role, _ := session.Role()
		return printJSON(cmd, map[string]interface{}{
			"session":        session,
			"route":          checkRoute,
			"policy_allows":  session.IsAuthenticated() && decider.CanAccessRouteByPolicy(role, access.Route(checkRoute)),
			"has_permission": decider.CanAccessRoute(session, required...),
			"decision":       decider.Guard(session, access.Route(checkRoute), required...),
		})
	},
}

var checkRedirectCmd = &cobra.Command{
	Use:   "redirect",
	Short: "Resolve where a role lands after login",
	RunE: func(cmd *cobra.Command, _ []string) error {
		decider, err := checkDecider()
		if err != nil {
			return err
		}
		session, err := sessionFor(checkRole)
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]interface{}{
			"session":  session,
			"intended": checkIntended,
			"target":   decider.ResolveRedirect(session, access.Route(checkIntended)),
		})
	},
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	checkCmd.PersistentFlags().StringVar(&checkPolicyFile, "policy", "", "policy YAML file (default: built-in tables)")
	checkCmd.PersistentFlags().BoolVar(&checkStrict, "strict", false, "reject non-numeric amounts instead of reading them as zero")

	checkDebtCmd.Flags().StringVar(&checkDebt, "debt", "", "current debt")
	checkDebtCmd.Flags().StringVar(&checkMax, "max", "", "maximum debt of the agent type")

	checkPaymentCmd.Flags().StringVar(&checkPayment, "payment", "", "payment amount")
	checkPaymentCmd.Flags().StringVar(&checkDebt, "debt", "", "current debt")

	checkRouteCmd.Flags().StringVar(&checkRole, "role", "", "role of the session; empty means unauthenticated")
	checkRouteCmd.Flags().StringVar(&checkRoute, "route", "/", "route path")
	checkRouteCmd.Flags().StringSliceVar(&checkRequired, "permission", nil, "required permissions, any of")

	checkRedirectCmd.Flags().StringVar(&checkRole, "role", "", "role of the session; empty means unauthenticated")
	checkRedirectCmd.Flags().StringVar(&checkIntended, "intended", "/", "route the user asked for")

	checkCmd.AddCommand(checkDebtCmd, checkPaymentCmd, checkRouteCmd, checkRedirectCmd)
}
