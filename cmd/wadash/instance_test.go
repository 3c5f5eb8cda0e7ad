package main

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInstanceList(t *testing.T) {
	fg, srv := newFakeGateway(t)
	fg.instances = []map[string]any{
		{"instanceName": "sales", "status": "connected"},
		{"instanceName": "support", "status": "connecting", "qrcode": "iVBORw0KGgo="},
	}
	cfg := writeConfig(t, srv.URL, "")

	out, err := runCmd(t, "instance", "list", "-c", cfg)
	if err != nil {
		t.Fatalf("instance list: %v", err)
	}
	for _, want := range []string{"NAME", "sales", "connected", "support", "pending scan"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInstanceList_Empty(t *testing.T) {
	_, srv := newFakeGateway(t)
	out, err := runCmd(t, "instance", "list", "-c", writeConfig(t, srv.URL, ""))
	if err != nil {
		t.Fatalf("instance list: %v", err)
	}
	if !strings.Contains(out, "No instances found.") {
		t.Errorf("output = %q", out)
	}
}

func TestInstanceList_GatewayFailure(t *testing.T) {
	fg, srv := newFakeGateway(t)
	fg.failAll = true

	out, err := runCmd(t, "instance", "list", "-c", writeConfig(t, srv.URL, ""))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(out, "Failed to fetch instances") {
		t.Errorf("output = %q, want failure notice", out)
	}
}

func TestInstanceCreate(t *testing.T) {
	fg, srv := newFakeGateway(t)

	out, err := runCmd(t, "instance", "create", "sales", "-c", writeConfig(t, srv.URL, ""))
	if err != nil {
		t.Fatalf("instance create: %v", err)
	}
	if !strings.Contains(out, "Instance created successfully") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(string(fg.body("POST /instance/create")), `"instanceName":"sales"`) {
		t.Errorf("create body = %s", fg.body("POST /instance/create"))
	}
}

func TestInstanceCreate_BlankName(t *testing.T) {
	fg, srv := newFakeGateway(t)

	_, err := runCmd(t, "instance", "create", "  ", "-c", writeConfig(t, srv.URL, ""))
	if err == nil || !strings.Contains(err.Error(), "instance name is required") {
		t.Fatalf("err = %v, want blank name error", err)
	}
	if fg.total() != 0 {
		t.Errorf("gateway requests = %d, want 0", fg.total())
	}
}

func TestInstanceConnect_WritesQR(t *testing.T) {
	fg, srv := newFakeGateway(t)
	png := []byte("\x89PNG fake image")
	fg.instances = []map[string]any{{"instanceName": "sales", "status": "disconnected"}}
	fg.connect = map[string]any{
		"base64":      "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		"code":        "2@pairing-payload",
		"pairingCode": "ABCD-1234",
	}
	qrPath := filepath.Join(t.TempDir(), "qr.png")

	out, err := runCmd(t, "instance", "connect", "sales", "--qr-out", qrPath, "-c", writeConfig(t, srv.URL, ""))
	if err != nil {
		t.Fatalf("instance connect: %v", err)
	}
	for _, want := range []string{"Connection initiated", "Pairing code: ABCD-1234", "QR code written to"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	got, err := os.ReadFile(qrPath)
	if err != nil {
		t.Fatalf("read QR file: %v", err)
	}
	if !bytes.Equal(got, png) {
		t.Errorf("QR file = %q, want %q", got, png)
	}
	if fg.count("GET /instance/connect/sales") != 1 {
		t.Errorf("connect requests = %d, want 1", fg.count("GET /instance/connect/sales"))
	}
}

func TestInstanceConnect_NoImageForQROut(t *testing.T) {
	fg, srv := newFakeGateway(t)
	fg.connect = map[string]any{"code": "2@pairing-payload"}

	_, err := runCmd(t, "instance", "connect", "sales", "--qr-out", filepath.Join(t.TempDir(), "qr.png"),
		"-c", writeConfig(t, srv.URL, ""))
	if err == nil || !strings.Contains(err.Error(), "no QR image") {
		t.Fatalf("err = %v, want missing image error", err)
	}
}

func TestInstanceLogout(t *testing.T) {
	fg, srv := newFakeGateway(t)

	out, err := runCmd(t, "instance", "logout", "sales", "-c", writeConfig(t, srv.URL, ""))
	if err != nil {
		t.Fatalf("instance logout: %v", err)
	}
	if !strings.Contains(out, "Instance logged out successfully") {
		t.Errorf("output = %q", out)
	}
	if fg.count("DELETE /instance/logout/sales") != 1 {
		t.Error("expected one logout request")
	}
}

func TestInstanceDelete_Declined(t *testing.T) {
	withPrompter(t, false)
	fg, srv := newFakeGateway(t)

	out, err := runCmd(t, "instance", "delete", "sales", "-c", writeConfig(t, srv.URL, ""))
	if err != nil {
		t.Fatalf("instance delete: %v", err)
	}
	if !strings.Contains(out, "Aborted.") {
		t.Errorf("output = %q", out)
	}
	if fg.total() != 0 {
		t.Errorf("gateway requests = %d, want 0", fg.total())
	}
}

func TestInstanceDelete_Yes(t *testing.T) {
	withPrompter(t, false)
	fg, srv := newFakeGateway(t)

	out, err := runCmd(t, "instance", "delete", "sales", "--yes", "-c", writeConfig(t, srv.URL, ""))
	if err != nil {
		t.Fatalf("instance delete: %v", err)
	}
	if !strings.Contains(out, "Instance deleted successfully") {
		t.Errorf("output = %q", out)
	}
	if fg.count("DELETE /instance/delete/sales") != 1 {
		t.Error("expected one delete request")
	}
}

func TestInstanceCmd_Help(t *testing.T) {
	out, err := runCmd(t, "instance", "--help")
	if err != nil {
		t.Fatalf("instance --help failed: %v", err)
	}
	for _, sub := range []string{"list", "create", "connect", "logout", "delete"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help to list %q subcommand, got: %s", sub, out)
		}
	}
}
