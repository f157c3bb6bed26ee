package user_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/labtrack/internal/auth"
	"github.com/frahmantamala/labtrack/internal/testsupport"
	"github.com/frahmantamala/labtrack/internal/transport"
	"github.com/frahmantamala/labtrack/internal/user"
	userPostgres "github.com/frahmantamala/labtrack/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("User Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *user.Handler
		rbac    *auth.RBACAuthorization
		admin   *auth.User
		tech    *auth.User
	)

	BeforeEach(func() {
		var err error
		db, err = testsupport.NewSQLiteDB()
		Expect(err).NotTo(HaveOccurred())

		slogger := testsupport.Logger()
		service := user.NewService(userPostgres.NewRepository(db), slogger)
		handler = user.NewHandler(transport.NewBaseHandler(slogger), service)
		rbac = auth.NewRBACAuthorization(auth.NewPolicy(), slogger)

		tech, err = testsupport.CreateUser(db, "zed", auth.RoleTechnician)
		Expect(err).NotTo(HaveOccurred())
		admin, err = testsupport.CreateUser(db, "alice", auth.RoleAdmin)
		Expect(err).NotTo(HaveOccurred())
	})

	serve := func(actor *auth.User, path string) *httptest.ResponseRecorder {
		router := chi.NewRouter()
		router.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler { return testsupport.AsActor(actor, next) })
			r.Get("/api/auth/me", handler.GetCurrentUser)
			r.With(rbac.Require(auth.OpUserList)).Get("/api/auth/users", handler.ListUsers)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	Describe("GET /api/auth/me", func() {
		It("returns the caller's profile without the password hash", func() {
			w := serve(tech, "/api/auth/me")
			Expect(w.Code).To(Equal(http.StatusOK))

			var body map[string]interface{}
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("username", "zed"))
			Expect(body).To(HaveKeyWithValue("role", "Technician"))
			Expect(body).To(HaveKey("createdAt"))
			Expect(body).NotTo(HaveKey("passwordHash"))
		})

		It("answers 404 when the token names a deleted account", func() {
			ghost := &auth.User{ID: 999, Role: auth.RoleEngineer}
			Expect(serve(ghost, "/api/auth/me").Code).To(Equal(http.StatusNotFound))
		})

		It("answers 401 without an actor", func() {
			Expect(serve(nil, "/api/auth/me").Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("GET /api/auth/users", func() {
		It("lists users ordered by username for admins", func() {
			w := serve(admin, "/api/auth/users")
			Expect(w.Code).To(Equal(http.StatusOK))

			var profiles []user.Profile
			Expect(json.NewDecoder(w.Body).Decode(&profiles)).To(Succeed())
			Expect(profiles).To(HaveLen(2))
			Expect(profiles[0].Username).To(Equal("alice"))
			Expect(profiles[1].Username).To(Equal("zed"))
		})

		It("forbids non-admins", func() {
			Expect(serve(tech, "/api/auth/users").Code).To(Equal(http.StatusForbidden))
		})
	})
})
