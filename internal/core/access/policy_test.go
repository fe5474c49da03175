package access_test

import (
	"bytes"
	"strings"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/access"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Policy", func() {
	It("ships a valid built-in table", func() {
		Expect(access.DefaultPolicy().Validate()).To(Succeed())
	})

	It("requires ADMIN to hold FULL_ACCESS", func() {
		p := access.DefaultPolicy()
		p.RolePermissions[access.RoleAdmin] = []access.Permission{access.PermissionManageUsers}

		_, err := access.NewDecider(p)
		Expect(err).To(MatchError(access.ErrInvalidPolicy))
		Expect(err.Error()).To(ContainSubstring("full_access"))
	})

	It("requires a home route for every role", func() {
		p := access.DefaultPolicy()
		delete(p.DefaultRoutes, access.RoleDebtAccountant)

		Expect(p.Validate()).To(MatchError(access.ErrInvalidPolicy))
	})

	It("requires every home route to be reachable by its role", func() {
		p := access.DefaultPolicy()
		p.DefaultRoutes[access.RoleViewer] = "/settings"

		err := p.Validate()
		Expect(err).To(MatchError(access.ErrInvalidPolicy))
		Expect(err.Error()).To(ContainSubstring("default_routes[VIEWER]"))
	})

	It("rejects duplicate routes", func() {
		p := access.DefaultPolicy()
		p.Routes = append(p.Routes, access.RouteRule{Route: "/debt", AllowedRoles: []access.Role{access.RoleAdmin}})

		Expect(p.Validate()).To(MatchError(ContainSubstring("duplicate route")))
	})

	It("panics when a compiled-in table is malformed", func() {
		Expect(func() { access.MustNewDecider(access.Policy{}) }).To(Panic())
	})

	Describe("ParsePolicy", func() {
		It("loads the shipped policy file as the built-in table", func() {
			p, err := access.LoadPolicyFile("../../../configs/policy.yml")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(access.DefaultPolicy()))
		})

		It("reads back what Marshal writes", func() {
			raw, err := access.DefaultPolicy().Marshal()
			Expect(err).NotTo(HaveOccurred())

			p, err := access.ParsePolicy(bytes.NewReader(raw))
			Expect(err).NotTo(HaveOccurred())
			Expect(p.DefaultRoutes).To(Equal(access.DefaultPolicy().DefaultRoutes))

			d := access.MustNewDecider(p)
			Expect(d.CanAccessRouteByPolicy(access.RoleWarehouse, "/payment-receipts")).To(BeFalse())
			Expect(d.CanAccessRouteByPolicy(access.RoleDebt, "/payment-receipts")).To(BeTrue())
		})

		It("rejects unknown roles", func() {
			doc := `
role_permissions:
  SUPERUSER: [full_access]
routes: []
default_routes: {}
`
			_, err := access.ParsePolicy(strings.NewReader(doc))
			Expect(err).To(MatchError(access.ErrInvalidPolicy))
		})

		It("rejects unknown keys", func() {
			doc := `
role_permissions: {}
routes: []
default_routes: {}
fallback: /home
`
			_, err := access.ParsePolicy(strings.NewReader(doc))
			Expect(err).To(MatchError(access.ErrInvalidPolicy))
		})
	})
})

var _ = Describe("Role and Permission parsing", func() {
	It("accepts token-style role names", func() {
		r, err := access.ParseRole("ROLE_debt_accountant")
		Expect(err).NotTo(HaveOccurred())
		Expect(r).To(Equal(access.RoleDebtAccountant))
	})

	It("rejects roles outside the closed set", func() {
		_, err := access.ParseRole("MANAGER")
		Expect(err).To(MatchError(access.ErrUnknownRole))
	})

	It("accepts both permission spellings", func() {
		p, err := access.ParsePermission("VIEW_REPORTS")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(access.PermissionViewReports))

		_, err = access.ParsePermission("approve_orders")
		Expect(err).To(MatchError(access.ErrUnknownPermission))
	})
})
