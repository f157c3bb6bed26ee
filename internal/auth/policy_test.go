package auth_test

import (
	"errors"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Access policy", func() {
	var (
		policy     *auth.Policy
		admin      = &auth.User{ID: 1, Role: auth.RoleAdmin}
		engineer   = &auth.User{ID: 2, Role: auth.RoleEngineer}
		technician = &auth.User{ID: 3, Role: auth.RoleTechnician}
		outsider   = &auth.User{ID: 4, Role: auth.RoleTechnician}
	)

	assigneeID := int64(2)
	ticket := auth.TicketResource(3, &assigneeID)

	BeforeEach(func() {
		policy = auth.NewPolicy()
	})

	DescribeTable("role-only operations",
		func(op auth.Operation, actor *auth.User, expected auth.Decision) {
			Expect(policy.Evaluate(op, actor, auth.Resource{})).To(Equal(expected))
		},
		Entry("admin creates asset", auth.OpAssetCreate, admin, auth.Allow),
		Entry("engineer creates asset", auth.OpAssetCreate, engineer, auth.Allow),
		Entry("technician creates asset", auth.OpAssetCreate, technician, auth.Deny),
		Entry("engineer updates asset", auth.OpAssetUpdate, engineer, auth.Allow),
		Entry("technician updates asset", auth.OpAssetUpdate, technician, auth.Deny),
		Entry("admin deletes asset", auth.OpAssetDelete, admin, auth.Allow),
		Entry("engineer deletes asset", auth.OpAssetDelete, engineer, auth.Deny),
		Entry("technician creates ticket", auth.OpTicketCreate, technician, auth.Allow),
		Entry("admin deletes ticket", auth.OpTicketDelete, admin, auth.Allow),
		Entry("engineer deletes ticket", auth.OpTicketDelete, engineer, auth.Deny),
		Entry("admin assigns ticket", auth.OpTicketAssign, admin, auth.Allow),
		Entry("engineer assigns ticket", auth.OpTicketAssign, engineer, auth.Deny),
		Entry("admin lists users", auth.OpUserList, admin, auth.Allow),
		Entry("engineer lists users", auth.OpUserList, engineer, auth.Deny),
	)

	DescribeTable("ticket ownership",
		func(op auth.Operation, actor *auth.User, expected auth.Decision) {
			Expect(policy.Evaluate(op, actor, ticket)).To(Equal(expected))
		},
		Entry("admin reads any ticket", auth.OpTicketRead, admin, auth.Allow),
		Entry("creator reads", auth.OpTicketRead, technician, auth.Allow),
		Entry("assignee reads", auth.OpTicketRead, engineer, auth.Allow),
		Entry("outsider reads", auth.OpTicketRead, outsider, auth.Deny),
		Entry("creator updates", auth.OpTicketUpdate, technician, auth.Allow),
		Entry("assignee updates", auth.OpTicketUpdate, engineer, auth.Allow),
		Entry("outsider updates", auth.OpTicketUpdate, outsider, auth.Deny),
		Entry("outsider comments", auth.OpCommentCreate, outsider, auth.Deny),
		Entry("creator comments", auth.OpCommentCreate, technician, auth.Allow),
	)

	DescribeTable("comment deletion",
		func(actor *auth.User, expected auth.Decision) {
			Expect(policy.Evaluate(auth.OpCommentDelete, actor, auth.CommentResource(3))).To(Equal(expected))
		},
		Entry("author", technician, auth.Allow),
		Entry("admin", admin, auth.Allow),
		Entry("engineer who is not the author", engineer, auth.Deny),
	)

	It("denies a missing actor", func() {
		Expect(policy.Evaluate(auth.OpTicketCreate, nil, auth.Resource{})).To(Equal(auth.Deny))
	})

	It("does not treat an unassigned ticket as owned by everyone", func() {
		res := auth.TicketResource(9, nil)
		Expect(policy.Evaluate(auth.OpTicketRead, outsider, res)).To(Equal(auth.Deny))
	})

	Describe("Authorize", func() {
		It("returns a forbidden error when denied", func() {
			err := policy.Authorize(auth.OpTicketRead, outsider, ticket)
			Expect(errors.Is(err, internal.ErrAccessDenied)).To(BeTrue())
		})

		It("returns the assignment error for non-admin assignment", func() {
			err := policy.Authorize(auth.OpTicketAssign, engineer, ticket)
			Expect(errors.Is(err, internal.ErrAssignNeedsAdmin)).To(BeTrue())
		})

		It("returns nil when allowed", func() {
			Expect(policy.Authorize(auth.OpAssetDelete, admin, auth.Resource{})).To(Succeed())
		})
	})

	Describe("TicketListScope", func() {
		It("does not restrict admins", func() {
			_, restricted := policy.TicketListScope(admin)
			Expect(restricted).To(BeFalse())
		})

		It("restricts everyone else to their own tickets", func() {
			id, restricted := policy.TicketListScope(engineer)
			Expect(restricted).To(BeTrue())
			Expect(id).To(Equal(engineer.ID))
		})
	})
})
