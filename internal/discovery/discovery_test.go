package discovery

import (
	"strings"
	"testing"
)

func TestInstanceName(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"desk", "desk-pcmonitor"},
		{"desk.lan", "desk-pcmonitor"},
		{"  ", "host-pcmonitor"},
		{"", "host-pcmonitor"},
	}
	for _, tt := range tests {
		if got := InstanceName(tt.host); got != tt.want {
			t.Errorf("InstanceName(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestTXTRecords(t *testing.T) {
	s := &Service{port: 8080}
	if got := strings.Join(s.txt(), " "); strings.Contains(got, "ip=") {
		t.Fatalf("txt without ip = %q", got)
	}
	s.ip = "192.168.1.20"
	txt := s.txt()
	if txt[len(txt)-1] != "ip=192.168.1.20" {
		t.Fatalf("txt = %v", txt)
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := New(8080, "")
	s.Stop()
	if s.Running() {
		t.Fatalf("running after Stop")
	}
	if !strings.HasSuffix(s.Instance(), "-pcmonitor") {
		t.Fatalf("instance = %q", s.Instance())
	}
}
