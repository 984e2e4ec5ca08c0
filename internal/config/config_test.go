package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear environment
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.ConferenceAppID != "webinar" {
		t.Errorf("ConferenceAppID = %q, want %q", cfg.ConferenceAppID, "webinar")
	}
	if cfg.ConferenceIssuer != "chat" {
		t.Errorf("ConferenceIssuer = %q, want %q", cfg.ConferenceIssuer, "chat")
	}
	if cfg.ConferenceAudience != "jitsi" {
		t.Errorf("ConferenceAudience = %q, want %q", cfg.ConferenceAudience, "jitsi")
	}
	if cfg.JoinBufferMinutes != 30 {
		t.Errorf("JoinBufferMinutes = %d, want 30", cfg.JoinBufferMinutes)
	}
	if cfg.AttendanceKafkaTopic != "webinar-attendance" {
		t.Errorf("AttendanceKafkaTopic = %q, want default", cfg.AttendanceKafkaTopic)
	}
	if cfg.KafkaGroupID != "webinar-attendance-worker" {
		t.Errorf("KafkaGroupID = %q, want default", cfg.KafkaGroupID)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("CONFERENCE_APP_ID", "my-app")
	os.Setenv("JOIN_BUFFER_MINUTES", "45")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.ConferenceAppID != "my-app" {
		t.Errorf("ConferenceAppID = %q, want %q", cfg.ConferenceAppID, "my-app")
	}
	if cfg.JoinBufferMinutes != 45 {
		t.Errorf("JoinBufferMinutes = %d, want 45", cfg.JoinBufferMinutes)
	}
	if cfg.JoinBuffer() != 45*time.Minute {
		t.Errorf("JoinBuffer = %v, want 45m", cfg.JoinBuffer())
	}
}

func TestLoad_InvalidBuffer(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("JOIN_BUFFER_MINUTES", "-5")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail for negative JOIN_BUFFER_MINUTES")
	}
}

func TestKafkaBrokersList(t *testing.T) {
	cfg := &Config{KafkaBrokers: "localhost:9092, broker2:9092 ,,"}
	got := cfg.KafkaBrokersList()
	if len(got) != 2 || got[0] != "localhost:9092" || got[1] != "broker2:9092" {
		t.Errorf("KafkaBrokersList = %v", got)
	}

	var nilCfg *Config
	if nilCfg.KafkaBrokersList() != nil {
		t.Error("nil config should return nil brokers")
	}
}
