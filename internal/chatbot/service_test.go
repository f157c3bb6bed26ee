package chatbot_test

import (
	"context"
	"strings"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/auth"
	"github.com/frahmantamala/labtrack/internal/chatbot"
	assetDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/asset"
	ticketDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/ticket"
	"github.com/frahmantamala/labtrack/internal/testsupport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockChatbotRepository struct {
	assets    int64
	tickets   int64
	own       map[int64]int64
	available []string
	byID      map[int64]*ticketDatamodel.Ticket
}

func (m *mockChatbotRepository) CountAssets(context.Context) (int64, error)  { return m.assets, nil }
func (m *mockChatbotRepository) CountTickets(context.Context) (int64, error) { return m.tickets, nil }

func (m *mockChatbotRepository) CountTicketsFor(_ context.Context, userID int64) (int64, error) {
	return m.own[userID], nil
}

func (m *mockChatbotRepository) AvailableAssetNames(_ context.Context, limit int) ([]string, error) {
	if len(m.available) > limit {
		return m.available[:limit], nil
	}
	return m.available, nil
}

func (m *mockChatbotRepository) GetTicket(_ context.Context, id int64) (*ticketDatamodel.Ticket, error) {
	return m.byID[id], nil
}

var _ = Describe("Chatbot Service", func() {
	var (
		repo    *mockChatbotRepository
		service *chatbot.Service
		ctx     context.Context

		admin = &auth.User{ID: 1, Role: auth.RoleAdmin}
		tech  = &auth.User{ID: 3, Role: auth.RoleTechnician}
	)

	BeforeEach(func() {
		repo = &mockChatbotRepository{
			assets:    3,
			tickets:   7,
			own:       map[int64]int64{tech.ID: 2},
			available: []string{"Microscope A1"},
			byID: map[int64]*ticketDatamodel.Ticket{
				1: {ID: 1, Status: "Open", Priority: "Medium", Asset: &assetDatamodel.Asset{Name: "Microscope A1"}},
				2: {ID: 2, Status: "InProgress", Priority: "High"},
			},
		}
		service = chatbot.NewService(repo, testsupport.Logger())
		ctx = context.Background()
	})

	ask := func(actor *auth.User, query string) *chatbot.Response {
		resp, err := service.Query(ctx, actor, query)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	DescribeTable("classification",
		func(query string, want chatbot.QueryType) {
			Expect(ask(admin, query).QueryType).To(Equal(want))
		},
		Entry("how many assets", "How many assets are there?", chatbot.QueryCountAssets),
		Entry("count assets", "please COUNT ASSETS", chatbot.QueryCountAssets),
		Entry("how many tickets", "how many tickets?", chatbot.QueryCountTickets),
		Entry("available assets", "Show available assets", chatbot.QueryListAssets),
		Entry("what is available", "what is available today", chatbot.QueryListAssets),
		Entry("ticket with hash", "status of ticket #1", chatbot.QueryTicketStatus),
		Entry("ticket id", "ticket id 2", chatbot.QueryTicketStatus),
		Entry("ticket status", "ticket status 2", chatbot.QueryTicketStatus),
		Entry("bare ticket number", "ticket1", chatbot.QueryTicketStatus),
		Entry("missing ticket", "ticket id #7", chatbot.QueryNotFound),
		Entry("asset count wins over ticket lookup", "how many assets for ticket 1", chatbot.QueryCountAssets),
		Entry("gibberish", "hello there", chatbot.QueryUnknown),
		Entry("ticket without a number", "ticket please", chatbot.QueryUnknown),
	)

	It("counts assets", func() {
		Expect(ask(tech, "how many assets").Message).To(Equal("There are currently 3 total assets in the system."))
	})

	It("reports the system ticket total to admins", func() {
		Expect(ask(admin, "count tickets").Message).To(Equal("There are currently 7 total tickets in the system."))
	})

	It("reports visible and total tickets to everyone else", func() {
		Expect(ask(tech, "count tickets").Message).To(Equal("You have access to 2 tickets (System Total: 7)."))
	})

	It("lists at most five available assets", func() {
		repo.available = []string{"a", "b", "c", "d", "e", "f"}
		Expect(ask(tech, "available assets").Message).To(Equal("Here are some available assets: a, b, c, d, e"))
	})

	It("says when nothing is available", func() {
		repo.available = nil
		Expect(ask(tech, "available assets").Message).To(Equal("No assets are currently available."))
	})

	It("describes a ticket with its asset", func() {
		Expect(ask(tech, "ticket #1").Message).To(Equal("Ticket #1 for Microscope A1 is currently 'Open' with 'Medium' priority."))
	})

	It("describes a ticket without an asset", func() {
		Expect(ask(tech, "ticket #2").Message).To(Equal("Ticket #2 is currently 'InProgress' with 'High' priority."))
	})

	It("says ticket #7 does not exist", func() {
		resp := ask(tech, "ticket id #7")
		Expect(resp.QueryType).To(Equal(chatbot.QueryNotFound))
		Expect(resp.Message).To(Equal("I couldn't find a ticket with ID #7."))
	})

	It("falls back to the help text", func() {
		Expect(ask(tech, "what's up").Message).To(ContainSubstring("You can ask me"))
	})

	Describe("Sanitize", func() {
		It("escapes angle brackets and trims", func() {
			q, err := chatbot.Sanitize("  <b>ticket 1</b> ")
			Expect(err).NotTo(HaveOccurred())
			Expect(q).To(Equal("&lt;b&gt;ticket 1&lt;/b&gt;"))
		})

		It("rejects empty queries", func() {
			_, err := service.Query(ctx, tech, "   ")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("measures the length after escaping", func() {
			_, err := chatbot.Sanitize(strings.Repeat("a", 500))
			Expect(err).NotTo(HaveOccurred())

			_, err = chatbot.Sanitize(strings.Repeat("a", 497) + "<")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeQueryTooLong))
		})
	})

	It("lists help examples", func() {
		help := service.Help()
		Expect(help.ExampleQueries).NotTo(BeEmpty())
		Expect(help.SupportedOperations).NotTo(BeEmpty())
	})
})
