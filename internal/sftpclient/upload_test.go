package sftpclient

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Host: "test-host", User: "test-user", Pass: "test-pass"}.withDefaults()

	if cfg.Port != 22 {
		t.Errorf("Expected default Port to be 22, got %d", cfg.Port)
	}
	if cfg.RemoteDir != "/" {
		t.Errorf("Expected default RemoteDir to be '/', got %q", cfg.RemoteDir)
	}
	if cfg.Addr() != "test-host:22" {
		t.Errorf("Expected addr 'test-host:22', got %q", cfg.Addr())
	}

	ipv6 := Config{Host: "::1", Port: 2222}
	if ipv6.Addr() != "[::1]:2222" {
		t.Errorf("Expected bracketed IPv6 addr, got %q", ipv6.Addr())
	}
}

func TestUploadFileValidation(t *testing.T) {
	ctx := context.Background()

	const (
		testHost = "127.0.0.1"
		testUser = "test-user"
		testPass = "test-pass"
		testFile = "test.txt"
	)

	dir := t.TempDir()
	localFile := filepath.Join(dir, "export.csv")
	if err := os.WriteFile(localFile, []byte("video_id\n"), 0o644); err != nil {
		t.Fatalf("write local file: %v", err)
	}

	testCases := []struct {
		name          string
		cfg           Config
		localPath     string
		errorContains string
	}{
		{
			name:          "Missing credentials",
			cfg:           Config{},
			localPath:     testFile,
			errorContains: "sftp: missing env SFTP_HOST / SFTP_USER / SFTP_PASS",
		},
		{
			name: "Missing known_hosts file",
			cfg: Config{
				Host:           testHost,
				User:           testUser,
				Pass:           testPass,
				KnownHostsPath: filepath.Join(dir, "no_known_hosts"),
			},
			localPath:     localFile,
			errorContains: "sftp: known_hosts",
		},
		{
			name: "Non-existent local file",
			cfg: Config{
				Host:                  testHost,
				User:                  testUser,
				Pass:                  testPass,
				InsecureIgnoreHostKey: true,
			},
			localPath:     filepath.Join(dir, "non_existent_file.txt"),
			errorContains: "sftp: open local file",
		},
		{
			name: "Nothing listening",
			cfg: Config{
				Host:                  testHost,
				Port:                  1,
				User:                  testUser,
				Pass:                  testPass,
				InsecureIgnoreHostKey: true,
			},
			localPath:     localFile,
			errorContains: "sftp: dial error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := UploadFile(ctx, tc.cfg, tc.localPath, testFile)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.errorContains) {
				t.Errorf("Expected error to contain %q, got %q", tc.errorContains, err.Error())
			}
		})
	}
}

func TestUploadFileMissingCredentialsSentinel(t *testing.T) {
	_, err := UploadFile(context.Background(), Config{Host: "h"}, "x", "y")
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials, got %v", err)
	}
}

func TestUploadFileCanceledContext(t *testing.T) {
	local := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(local, []byte("x"), 0o644); err != nil {
		t.Fatalf("write local file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{Host: "127.0.0.1", Port: 1, User: "u", Pass: "p", InsecureIgnoreHostKey: true}
	_, err := UploadFile(ctx, cfg, local, "export.csv")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
