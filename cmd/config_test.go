package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/frahmantamala/labtrack/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const testConfigYML = `
http_server:
  port: 9090
  allowed_origins: "http://localhost:3000"
database:
  driver: sqlite
  source: ":memory:"
  max_open_conns: 1
  max_idle_conns: 1
security:
  jwt_secret: "a-local-secret-that-is-at-least-32-chars"
rate_limit:
  auth:
    permit_limit: 3
    window: 10s
observability:
  logging:
    level: debug
    format: json
`

func setEnv(key, value string) {
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, key)
}

var _ = Describe("loadConfig", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	writeFile := func(name, content string) {
		Expect(os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600)).To(Succeed())
	}

	It("reads config.yml over the defaults", func() {
		writeFile("config.yml", testConfigYML)

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(9090))
		Expect(cfg.RateLimit.Auth.PermitLimit).To(Equal(3))
		Expect(cfg.RateLimit.Auth.Window).To(Equal(10 * time.Second))
		Expect(cfg.Observability.Logging.Format).To(Equal("json"))

		// untouched keys keep their defaults
		Expect(cfg.Security.JWTIssuer).To(Equal("LabTrackApi"))
		Expect(cfg.Security.AccessTokenDuration).To(Equal(24 * time.Hour))
		Expect(cfg.RateLimit.Auth.QueueLimit).To(Equal(2))
	})

	It("lets .env override file values through the ENV_ prefix", func() {
		writeFile("config.yml", testConfigYML)
		writeFile(".env", "ENV_HTTP_SERVER_PORT=7070\n")
		DeferCleanup(os.Unsetenv, "ENV_HTTP_SERVER_PORT")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(7070))
	})

	It("rejects a short jwt secret", func() {
		writeFile("config.yml", `
security:
  jwt_secret: "short"
`)
		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("JWTSecret")))
	})

	It("fails when config.yml is missing", func() {
		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("error reading config")))
	})

	It("builds the configuration from the environment in production", func() {
		setEnv("APP_ENV", "production")
		setEnv("DATABASE_URL", "postgres://labtrack@localhost/labtrack")
		setEnv("JWT_SECRET", "a-production-secret-that-is-long-enough")
		setEnv("PORT", "8181")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.Driver).To(Equal(internal.DriverPostgres))
		Expect(cfg.Server.Port).To(Equal(8181))
		Expect(cfg.Observability.Logging.Format).To(Equal("json"))
	})
})
