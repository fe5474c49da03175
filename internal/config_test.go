package internal_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
)

const secret = "0123456789abcdef0123456789abcdef"

var _ = Describe("Config", func() {
	Describe("LoadConfigFromEnv", func() {
		BeforeEach(func() {
			t := GinkgoT()
			t.Setenv("APP_ENV", "production")
			t.Setenv("HTTP_PORT", "9090")
			t.Setenv("DB_SOURCE", "postgres://agency@localhost/agency")
			t.Setenv("SECURITY_JWT_SECRET", secret)
			t.Setenv("GUARDRAIL_STRICT_INPUT", "true")
			t.Setenv("OBSERVABILITY_METRICS_ROUTE", "/metrics")
		})

		It("reads nested sections and fills defaults", func() {
			cfg, err := internal.LoadConfigFromEnv()
			Expect(err).NotTo(HaveOccurred())

			Expect(cfg.IsProduction()).To(BeTrue())
			Expect(cfg.Server.Port).To(Equal(9090))
			Expect(cfg.Guardrail.StrictInput).To(BeTrue())
			Expect(cfg.Database.ConnMaxLifetime).To(Equal(30 * time.Minute))
			Expect(cfg.Observability.Metrics.Path).To(Equal("/metrics"))
			Expect(cfg.Validate()).To(Succeed())
		})

		It("fails on values that do not parse", func() {
			GinkgoT().Setenv("RATE_LIMIT_WINDOW", "soon")
			_, err := internal.LoadConfigFromEnv()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Validate", func() {
		var cfg internal.Config

		BeforeEach(func() {
			cfg = internal.Config{
				Env: "development",
				Server: internal.ServerConfig{
					Port: 8080, ReadHeaderTimeout: 5 * time.Second, ReadTimeout: 15 * time.Second,
				},
				Database: internal.DatabaseConfig{
					Source: "postgres://localhost/agency", MaxOpenConns: 10, MaxIdleConns: 5,
					ConnMaxLifetime: 30 * time.Minute, ConnMaxIdleTime: 5 * time.Minute,
				},
				Security: internal.SecurityConfig{JWTSecret: secret},
				RateLimit: internal.RateLimitConfig{Enabled: true, Requests: 10, Window: time.Minute},
				Observability: internal.ObservabilityConfig{
					Logging: internal.LoggingConfig{Level: "info", Format: "json"},
				},
			}
		})

		It("accepts a complete configuration", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("rejects a short signing secret", func() {
			cfg.Security.JWTSecret = "short"
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("JWTSecret")))
		})

		It("rejects more idle than open connections", func() {
			cfg.Database.MaxIdleConns = 20
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns")))
		})

		It("rejects a rate limit without a window", func() {
			cfg.RateLimit.Window = 0
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("window")))
		})

		It("requires a redis address when the cache is on", func() {
			cfg.Redis = internal.RedisConfig{Enabled: true}
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("Addr")))
		})
	})
})
