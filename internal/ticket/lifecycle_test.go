package ticket_test

import (
	"github.com/frahmantamala/labtrack/internal/ticket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ticket Lifecycle", func() {
	allowed := map[ticket.Status][]ticket.Status{
		ticket.StatusOpen:       {ticket.StatusInProgress, ticket.StatusClosed},
		ticket.StatusInProgress: {ticket.StatusOpen, ticket.StatusResolved, ticket.StatusClosed},
		ticket.StatusResolved:   {ticket.StatusInProgress, ticket.StatusClosed},
		ticket.StatusClosed:     {ticket.StatusOpen},
	}

	It("accepts exactly the edges of the lifecycle graph", func() {
		for _, from := range ticket.Statuses {
			for _, to := range ticket.Statuses {
				Expect(ticket.CanTransition(from, to)).To(Equal(containsStatus(allowed[from], to)),
					"transition %s -> %s", from, to)
			}
		}
	})

	DescribeTable("named transitions",
		func(from, to ticket.Status, ok bool) {
			Expect(ticket.CanTransition(from, to)).To(Equal(ok))
		},
		Entry("reopen a closed ticket", ticket.StatusClosed, ticket.StatusOpen, true),
		Entry("resolve a closed ticket", ticket.StatusClosed, ticket.StatusResolved, false),
		Entry("resolve straight from open", ticket.StatusOpen, ticket.StatusResolved, false),
		Entry("stay open", ticket.StatusOpen, ticket.StatusOpen, false),
		Entry("unknown source state", ticket.Status("Archived"), ticket.StatusOpen, false),
	)

	DescribeTable("ParseStatus",
		func(input string, want ticket.Status, ok bool) {
			got, parsed := ticket.ParseStatus(input)
			Expect(parsed).To(Equal(ok))
			Expect(got).To(Equal(want))
		},
		Entry("exact", "InProgress", ticket.StatusInProgress, true),
		Entry("lower case", "inprogress", ticket.StatusInProgress, true),
		Entry("padded", " closed ", ticket.StatusClosed, true),
		Entry("unknown", "done", ticket.Status(""), false),
	)

	DescribeTable("ParsePriority",
		func(input string, want ticket.Priority, ok bool) {
			got, parsed := ticket.ParsePriority(input)
			Expect(parsed).To(Equal(ok))
			Expect(got).To(Equal(want))
		},
		Entry("exact", "Critical", ticket.PriorityCritical, true),
		Entry("upper case", "HIGH", ticket.PriorityHigh, true),
		Entry("unknown", "urgent", ticket.Priority(""), false),
	)
})

func containsStatus(list []ticket.Status, s ticket.Status) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
