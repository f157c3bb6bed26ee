package ticket_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/frahmantamala/labtrack/internal/audit"
	"github.com/frahmantamala/labtrack/internal/auth"
	"github.com/frahmantamala/labtrack/internal/comment"
	commentPostgres "github.com/frahmantamala/labtrack/internal/comment/postgres"
	"github.com/frahmantamala/labtrack/internal/core/common/pagination"
	auditDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/audit"
	commentDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/comment"
	"github.com/frahmantamala/labtrack/internal/core/events"
	"github.com/frahmantamala/labtrack/internal/testsupport"
	"github.com/frahmantamala/labtrack/internal/ticket"
	ticketPostgres "github.com/frahmantamala/labtrack/internal/ticket/postgres"
	"github.com/frahmantamala/labtrack/internal/transport"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Ticket Handler Integration", func() {
	var (
		db             *gorm.DB
		ticketHandler  *ticket.Handler
		commentHandler *comment.Handler
		rbac           *auth.RBACAuthorization
		admin          *auth.User
		engineer       *auth.User
		tech           *auth.User
		outsider       *auth.User
	)

	BeforeEach(func() {
		var err error
		db, err = testsupport.NewSQLiteDB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())

		slogger := testsupport.Logger()
		bus := events.NewEventBus(slogger)
		audit.NewRecorder(sqlx.NewDb(sqlDB, "sqlite3"), slogger).Subscribe(bus)

		policy := auth.NewPolicy()
		base := transport.NewBaseHandler(slogger)
		ticketHandler = ticket.NewHandler(base, ticket.NewService(ticketPostgres.NewTicketRepository(db), policy, bus, slogger))
		commentHandler = comment.NewHandler(base, comment.NewService(commentPostgres.NewCommentRepository(db), policy, bus, slogger))
		rbac = auth.NewRBACAuthorization(policy, slogger)

		admin, err = testsupport.CreateUser(db, "admin", auth.RoleAdmin)
		Expect(err).NotTo(HaveOccurred())
		engineer, err = testsupport.CreateUser(db, "engineer", auth.RoleEngineer)
		Expect(err).NotTo(HaveOccurred())
		tech, err = testsupport.CreateUser(db, "technician", auth.RoleTechnician)
		Expect(err).NotTo(HaveOccurred())
		outsider, err = testsupport.CreateUser(db, "outsider", auth.RoleTechnician)
		Expect(err).NotTo(HaveOccurred())
	})

	do := func(actor *auth.User, method, path string, body interface{}) *httptest.ResponseRecorder {
		router := chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler { return testsupport.AsActor(actor, next) })
		router.Route("/api/tickets", func(r chi.Router) {
			r.Get("/", ticketHandler.ListTickets)
			r.Post("/", ticketHandler.CreateTicket)
			r.Get("/{id}", ticketHandler.GetTicket)
			r.Put("/{id}", ticketHandler.UpdateTicket)
			r.With(rbac.Require(auth.OpTicketDelete)).Delete("/{id}", ticketHandler.DeleteTicket)
			r.Post("/{id}/comments", commentHandler.CreateComment)
			r.Delete("/{id}/comments/{commentId}", commentHandler.DeleteComment)
		})

		raw := []byte{}
		if body != nil {
			raw, _ = json.Marshal(body)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, bytes.NewReader(raw)))
		return w
	}

	decodeTicket := func(w *httptest.ResponseRecorder) ticket.Ticket {
		var t ticket.Ticket
		Expect(json.NewDecoder(w.Body).Decode(&t)).To(Succeed())
		return t
	}

	create := func(actor *auth.User, body map[string]interface{}) ticket.Ticket {
		w := do(actor, http.MethodPost, "/api/tickets", body)
		Expect(w.Code).To(Equal(http.StatusCreated))
		return decodeTicket(w)
	}

	path := func(id int64) string {
		return "/api/tickets/" + strconv.FormatInt(id, 10)
	}

	auditRows := func(action string, entityID int64) int64 {
		var count int64
		Expect(db.Model(&auditDatamodel.AuditLog{}).
			Where("action = ? AND entity_type = ? AND entity_id = ?", action, "Ticket", entityID).
			Count(&count).Error).To(Succeed())
		return count
	}

	It("ignores a requested status on create", func() {
		t := create(tech, map[string]interface{}{"title": "Microscope calibration needed", "status": "Resolved"})
		Expect(t.Status).To(Equal(ticket.StatusOpen))
		Expect(*t.CreatorName).To(Equal("technician"))
		Expect(t.Comments).To(BeEmpty())
		Expect(auditRows("Create", t.ID)).To(BeEquivalentTo(1))
	})

	It("moves Open to InProgress with a new title and writes one Update audit entry", func() {
		t := create(tech, map[string]interface{}{"title": "Microscope calibration needed"})

		w := do(tech, http.MethodPut, path(t.ID), map[string]interface{}{"status": "InProgress", "title": "Calibrating"})
		Expect(w.Code).To(Equal(http.StatusOK))
		updated := decodeTicket(w)
		Expect(updated.Status).To(Equal(ticket.StatusInProgress))
		Expect(updated.Title).To(Equal("Calibrating"))
		Expect(updated.UpdatedAt.After(t.UpdatedAt)).To(BeTrue())

		Expect(auditRows("Update", t.ID)).To(BeEquivalentTo(1))
	})

	It("keeps a Closed ticket Closed when asked to resolve it", func() {
		t := create(tech, map[string]interface{}{"title": "Centrifuge noise"})
		Expect(do(tech, http.MethodPut, path(t.ID), map[string]interface{}{"status": "Closed"}).Code).To(Equal(http.StatusOK))

		w := do(tech, http.MethodPut, path(t.ID), map[string]interface{}{"status": "Resolved", "title": "ignored"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_STATUS_TRANSITION"))

		current := decodeTicket(do(tech, http.MethodGet, path(t.ID), nil))
		Expect(current.Status).To(Equal(ticket.StatusClosed))
		Expect(current.Title).To(Equal("Centrifuge noise"))
		Expect(auditRows("Update", t.ID)).To(BeEquivalentTo(1))
	})

	It("forbids a technician who neither created nor is assigned the ticket", func() {
		t := create(tech, map[string]interface{}{"title": "Private"})

		Expect(do(outsider, http.MethodGet, path(t.ID), nil).Code).To(Equal(http.StatusForbidden))
		Expect(do(outsider, http.MethodPut, path(t.ID), map[string]interface{}{"title": "x"}).Code).To(Equal(http.StatusForbidden))
	})

	It("lets the assignee read once an admin assigns the ticket", func() {
		t := create(tech, map[string]interface{}{"title": "Needs an engineer"})

		Expect(do(tech, http.MethodPut, path(t.ID), map[string]interface{}{"assignedTo": engineer.ID}).Code).To(Equal(http.StatusForbidden))

		w := do(admin, http.MethodPut, path(t.ID), map[string]interface{}{"assignedTo": engineer.ID})
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(*decodeTicket(w).AssigneeName).To(Equal("engineer"))

		Expect(do(engineer, http.MethodGet, path(t.ID), nil).Code).To(Equal(http.StatusOK))
	})

	It("filters listings to the caller's tickets for non-admins", func() {
		create(tech, map[string]interface{}{"title": "one", "priority": "High"})
		create(tech, map[string]interface{}{"title": "two"})
		create(engineer, map[string]interface{}{"title": "three", "priority": "High"})

		var page pagination.Page[ticket.Ticket]
		w := do(tech, http.MethodGet, "/api/tickets", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(json.NewDecoder(w.Body).Decode(&page)).To(Succeed())
		Expect(page.TotalCount).To(BeEquivalentTo(2))
		Expect(page.Items[0].Title).To(Equal("two"))

		w = do(admin, http.MethodGet, "/api/tickets?priority=high", nil)
		Expect(json.NewDecoder(w.Body).Decode(&page)).To(Succeed())
		Expect(page.TotalCount).To(BeEquivalentTo(2))
	})

	It("answers 404 for unknown tickets", func() {
		Expect(do(admin, http.MethodGet, path(404), nil).Code).To(Equal(http.StatusNotFound))
	})

	Describe("comments", func() {
		It("shows comments oldest first with the author's name", func() {
			t := create(tech, map[string]interface{}{"title": "Noisy"})

			w := do(tech, http.MethodPost, path(t.ID)+"/comments", map[string]interface{}{"content": "first"})
			Expect(w.Code).To(Equal(http.StatusCreated))
			var c comment.Comment
			Expect(json.NewDecoder(w.Body).Decode(&c)).To(Succeed())
			Expect(*c.UserName).To(Equal("technician"))

			Expect(do(admin, http.MethodPost, path(t.ID)+"/comments", map[string]interface{}{"content": "second"}).Code).To(Equal(http.StatusCreated))

			detail := decodeTicket(do(tech, http.MethodGet, path(t.ID), nil))
			Expect(detail.Comments).To(HaveLen(2))
			Expect(detail.Comments[0].Content).To(Equal("first"))
			Expect(*detail.Comments[1].UserName).To(Equal("admin"))
		})

		It("only lets the author or an admin delete a comment", func() {
			t := create(tech, map[string]interface{}{"title": "Noisy"})
			w := do(tech, http.MethodPost, path(t.ID)+"/comments", map[string]interface{}{"content": "mine"})
			var c comment.Comment
			Expect(json.NewDecoder(w.Body).Decode(&c)).To(Succeed())
			commentPath := path(t.ID) + "/comments/" + strconv.FormatInt(c.ID, 10)

			Expect(do(engineer, http.MethodDelete, commentPath, nil).Code).To(Equal(http.StatusForbidden))
			Expect(do(tech, http.MethodDelete, commentPath, nil).Code).To(Equal(http.StatusNoContent))
			Expect(do(tech, http.MethodDelete, commentPath, nil).Code).To(Equal(http.StatusNotFound))
		})

		It("does not let outsiders comment on tickets they cannot see", func() {
			t := create(tech, map[string]interface{}{"title": "Private"})
			w := do(outsider, http.MethodPost, path(t.ID)+"/comments", map[string]interface{}{"content": "hello"})
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("rejects empty comments", func() {
			t := create(tech, map[string]interface{}{"title": "Noisy"})
			w := do(tech, http.MethodPost, path(t.ID)+"/comments", map[string]interface{}{"content": " "})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	It("deletes a ticket together with its comments, admins only", func() {
		t := create(tech, map[string]interface{}{"title": "Obsolete"})
		Expect(do(tech, http.MethodPost, path(t.ID)+"/comments", map[string]interface{}{"content": "bye"}).Code).To(Equal(http.StatusCreated))

		Expect(do(tech, http.MethodDelete, path(t.ID), nil).Code).To(Equal(http.StatusForbidden))
		Expect(do(admin, http.MethodDelete, path(t.ID), nil).Code).To(Equal(http.StatusNoContent))

		var remaining int64
		Expect(db.Model(&commentDatamodel.Comment{}).Where("ticket_id = ?", t.ID).Count(&remaining).Error).To(Succeed())
		Expect(remaining).To(BeZero())
		Expect(auditRows("Delete", t.ID)).To(BeEquivalentTo(1))
	})
})
