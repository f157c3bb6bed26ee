package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/auth"
	userDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/user"
	"github.com/frahmantamala/labtrack/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

// mockUserRepository keeps users in memory keyed by username
type mockUserRepository struct {
	users   map[string]*userDatamodel.User
	nextID  int64
	failErr error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: map[string]*userDatamodel.User{}, nextID: 1}
}

func (m *mockUserRepository) GetByUsername(_ context.Context, username string) (*userDatamodel.User, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	return m.users[username], nil
}

func (m *mockUserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	if m.failErr != nil {
		return false, m.failErr
	}
	_, ok := m.users[username]
	return ok, nil
}

func (m *mockUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if m.failErr != nil {
		return false, m.failErr
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) Create(_ context.Context, u *userDatamodel.User) error {
	if m.failErr != nil {
		return m.failErr
	}
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	m.nextID++
	m.users[u.Username] = u
	return nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	events  []*events.EntityEvent
	failErr error
}

func (p *recordingPublisher) PublishSync(_ context.Context, ev events.Event) error {
	if entity, ok := ev.(*events.EntityEvent); ok {
		p.events = append(p.events, entity)
	}
	return p.failErr
}

var _ = Describe("Auth Service", func() {
	var (
		repo      *mockUserRepository
		publisher *recordingPublisher
		tokens    *auth.JWTTokenGenerator
		service   *auth.Service
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockUserRepository()
		publisher = &recordingPublisher{}
		tokens = auth.NewJWTTokenGenerator(testSecret, "LabTrackApi", "LabTrackApp", 24*time.Hour)
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(repo, tokens, publisher, bcrypt.MinCost, slogger)
	})

	Describe("Register", func() {
		It("creates the user and returns a token", func() {
			// Given a valid registration
			dto := auth.RegisterDTO{Username: "alice", Email: "alice@labtrack.com", Password: "secret1", Role: "engineer"}

			// When registering
			resp, err := service.Register(ctx, dto)

			// Then a token for an engineer is issued
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Token).NotTo(BeEmpty())
			Expect(resp.Role).To(Equal(auth.RoleEngineer))
			Expect(resp.UserID).To(Equal(int64(1)))
			Expect(repo.users["alice"].PasswordHash).NotTo(Equal("secret1"))
		})

		It("defaults to the Technician role", func() {
			resp, err := service.Register(ctx, auth.RegisterDTO{Username: "bob", Email: "bob@labtrack.com", Password: "secret1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Role).To(Equal(auth.RoleTechnician))
		})

		It("emits a Register event", func() {
			_, err := service.Register(ctx, auth.RegisterDTO{Username: "bob", Email: "bob@labtrack.com", Password: "secret1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].Action).To(Equal(events.ActionRegister))
			Expect(publisher.events[0].EntityType).To(Equal(events.EntityUser))
		})

		It("rejects a short password", func() {
			_, err := service.Register(ctx, auth.RegisterDTO{Username: "bob", Email: "bob@labtrack.com", Password: "123"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(appErr.Error()).To(ContainSubstring("password"))
		})

		It("rejects a malformed email", func() {
			_, err := service.Register(ctx, auth.RegisterDTO{Username: "bob", Email: "not-an-email", Password: "secret1"})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("email"))
		})

		It("rejects an unknown role", func() {
			_, err := service.Register(ctx, auth.RegisterDTO{Username: "bob", Email: "bob@labtrack.com", Password: "secret1", Role: "Janitor"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("rejects a duplicate username", func() {
			_, err := service.Register(ctx, auth.RegisterDTO{Username: "bob", Email: "bob@labtrack.com", Password: "secret1"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Register(ctx, auth.RegisterDTO{Username: "bob", Email: "other@labtrack.com", Password: "secret1"})
			Expect(errors.Is(err, internal.ErrDuplicateUsername)).To(BeTrue())
		})

		It("rejects a duplicate email regardless of case", func() {
			_, err := service.Register(ctx, auth.RegisterDTO{Username: "bob", Email: "bob@labtrack.com", Password: "secret1"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Register(ctx, auth.RegisterDTO{Username: "robert", Email: "BOB@labtrack.com", Password: "secret1"})
			Expect(errors.Is(err, internal.ErrDuplicateEmail)).To(BeTrue())
		})

		It("still succeeds when the audit trail cannot be written", func() {
			publisher.failErr = errors.New("audit table missing")
			resp, err := service.Register(ctx, auth.RegisterDTO{Username: "bob", Email: "bob@labtrack.com", Password: "secret1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Token).NotTo(BeEmpty())
		})
	})

	Describe("Login", func() {
		BeforeEach(func() {
			_, err := service.Register(ctx, auth.RegisterDTO{Username: "carol", Email: "carol@labtrack.com", Password: "correct", Role: "Admin"})
			Expect(err).NotTo(HaveOccurred())
			publisher.events = nil
		})

		It("returns a token for valid credentials", func() {
			resp, err := service.Login(ctx, auth.LoginDTO{Username: "carol", Password: "correct"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Role).To(Equal(auth.RoleAdmin))
			Expect(resp.ExpiresAt).To(BeTemporally("~", time.Now().Add(24*time.Hour), time.Minute))

			actor, err := service.ValidateAccessToken(resp.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(actor.Username).To(Equal("carol"))
			Expect(actor.Role).To(Equal(auth.RoleAdmin))
		})

		It("emits a Login event", func() {
			_, err := service.Login(ctx, auth.LoginDTO{Username: "carol", Password: "correct"})
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].Action).To(Equal(events.ActionLogin))
		})

		It("rejects a wrong password", func() {
			_, err := service.Login(ctx, auth.LoginDTO{Username: "carol", Password: "wrong"})
			Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(BeTrue())
		})

		It("rejects an unknown user with the same error", func() {
			_, err := service.Login(ctx, auth.LoginDTO{Username: "nobody", Password: "correct"})
			Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(BeTrue())
		})

		It("returns an internal error when the repository fails", func() {
			repo.failErr = errors.New("connection reset")
			_, err := service.Login(ctx, auth.LoginDTO{Username: "carol", Password: "correct"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))
		})
	})
})
