package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMaster_MissingFile(t *testing.T) {
	cfg, err := LoadMaster(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadMaster() error = %v, want nil for missing file", err)
	}

	def := DefaultMaster()
	if cfg.Port != def.Port {
		t.Errorf("Port = %d, want default %d", cfg.Port, def.Port)
	}
	if cfg.MasterName != def.MasterName {
		t.Errorf("MasterName = %q, want default %q", cfg.MasterName, def.MasterName)
	}
	if cfg.Stats.Driver != "sqlite" {
		t.Errorf("Stats.Driver = %q, want %q", cfg.Stats.Driver, "sqlite")
	}
}

func TestLoadMaster_FromFile(t *testing.T) {
	yaml := `
master_name: "Test Master"
port: 30000
status_file: /tmp/status.json
latest_released_cs_protocol: 42
latest_released_build: 1500
motd:
  default: "hello"
  by_build:
    1400: "please upgrade"
admins:
  - alice
  - bob
hidden_addresses:
  - "10.0.0.5:0"
stats:
  driver: postgres
  database:
    host: db.local
    port: 5433
    user: u
    password: p
    dbname: stats
    sslmode: disable
forum:
  table_prefix: phpbb_
  database:
    host: forum.local
    port: 5432
    user: forum
    password: secret
    dbname: forum
    sslmode: disable
`
	path := filepath.Join(t.TempDir(), "master.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}

	cfg, err := LoadMaster(path)
	if err != nil {
		t.Fatalf("LoadMaster() error = %v", err)
	}

	if cfg.MasterName != "Test Master" {
		t.Errorf("MasterName = %q, want %q", cfg.MasterName, "Test Master")
	}
	if cfg.Port != 30000 {
		t.Errorf("Port = %d, want 30000", cfg.Port)
	}
	if cfg.LatestReleasedCSProtocol != 42 {
		t.Errorf("LatestReleasedCSProtocol = %d, want 42", cfg.LatestReleasedCSProtocol)
	}
	if len(cfg.Admins) != 2 || cfg.Admins[0] != "alice" {
		t.Errorf("Admins = %v, want [alice bob]", cfg.Admins)
	}
	if cfg.Stats.Driver != "postgres" {
		t.Errorf("Stats.Driver = %q, want %q", cfg.Stats.Driver, "postgres")
	}
	if !cfg.Forum.Enabled() {
		t.Error("Forum.Enabled() = false, want true")
	}

	wantDSN := "postgres://u:p@db.local:5433/stats?sslmode=disable"
	if got := cfg.Stats.Database.DSN(); got != wantDSN {
		t.Errorf("Stats DSN = %q, want %q", got, wantDSN)
	}
}

func TestLoadMaster_BindAddressDefaultPreserved(t *testing.T) {
	// Частичный конфиг не должен затирать дефолты незаданных полей
	path := filepath.Join(t.TempDir(), "master.yaml")
	if err := os.WriteFile(path, []byte("port: 26000\n"), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}

	cfg, err := LoadMaster(path)
	if err != nil {
		t.Fatalf("LoadMaster() error = %v", err)
	}
	if cfg.Port != 26000 {
		t.Errorf("Port = %d, want 26000", cfg.Port)
	}
	if cfg.BindAddress != "0.0.0.0" {
		t.Errorf("BindAddress = %q, want default %q", cfg.BindAddress, "0.0.0.0")
	}
}

func TestMOTDConfig_MessageFor(t *testing.T) {
	motd := MOTDConfig{
		Default: "generic",
		ByBuild: map[uint32]string{
			1400: "upgrade to 1500",
		},
	}

	tests := []struct {
		name  string
		build uint32
		want  string
	}{
		{name: "известная сборка", build: 1400, want: "upgrade to 1500"},
		{name: "неизвестная сборка", build: 9999, want: "generic"},
		{name: "нулевая сборка", build: 0, want: "generic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := motd.MessageFor(tt.build); got != tt.want {
				t.Errorf("MessageFor(%d) = %q, want %q", tt.build, got, tt.want)
			}
		})
	}
}

func TestForumConfig_Enabled(t *testing.T) {
	var f ForumConfig
	if f.Enabled() {
		t.Error("Enabled() = true for empty config, want false")
	}

	f.Database.Host = "forum.local"
	if !f.Enabled() {
		t.Error("Enabled() = false with host set, want true")
	}
}

func TestWatch_NotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "master.yaml")
	if err := os.WriteFile(path, []byte("port: 25955\n"), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}

	changed := make(chan struct{}, 8)
	stop, err := Watch(path, func() { changed <- struct{}{} })
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer stop()

	if err := os.WriteFile(path, []byte("port: 26000\n"), 0o644); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification within 2s")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "master.yaml")
	if err := os.WriteFile(path, []byte("port: 25955\n"), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}

	changed := make(chan struct{}, 8)
	stop, err := Watch(path, func() { changed <- struct{}{} })
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer stop()

	other := filepath.Join(dir, "unrelated.txt")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatalf("writing unrelated file: %v", err)
	}

	select {
	case <-changed:
		t.Fatal("unexpected notification for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}
