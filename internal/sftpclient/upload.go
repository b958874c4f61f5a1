package sftpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const dialTimeout = 20 * time.Second

type Config struct {
	Host      string
	Port      int
	User      string
	Pass      string
	RemoteDir string

	// KnownHostsPath defaults to ~/.ssh/known_hosts.
	KnownHostsPath        string
	InsecureIgnoreHostKey bool
}

var ErrMissingCredentials = errors.New("sftp: missing env SFTP_HOST / SFTP_USER / SFTP_PASS")

func (c Config) withDefaults() Config {
	if c.Port <= 0 {
		c.Port = 22
	}
	if c.RemoteDir == "" {
		c.RemoteDir = "/"
	}
	if c.KnownHostsPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.KnownHostsPath = filepath.Join(home, ".ssh", "known_hosts")
		}
	}
	return c
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func hostKeyCallback(cfg Config) (ssh.HostKeyCallback, error) {
	if cfg.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	if cfg.KnownHostsPath == "" {
		return nil, fmt.Errorf("sftp: no known_hosts file, set SFTP_KNOWN_HOSTS")
	}
	cb, err := knownhosts.New(cfg.KnownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("sftp: known_hosts %s: %w", cfg.KnownHostsPath, err)
	}
	return cb, nil
}

// UploadFile copies localPath to RemoteDir/remoteFileName and returns the remote path.
func UploadFile(ctx context.Context, cfg Config, localPath string, remoteFileName string) (string, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return "", ErrMissingCredentials
	}
	cfg = cfg.withDefaults()

	cb, err := hostKeyCallback(cfg)
	if err != nil {
		return "", err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("sftp: open local file: %w", err)
	}
	defer src.Close()

	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Pass)},
		HostKeyCallback: cb,
		Timeout:         dialTimeout,
	}

	sshClient, err := dial(ctx, cfg.Addr(), sshCfg)
	if err != nil {
		return "", err
	}
	defer sshClient.Close()

	sftpCli, err := sftp.NewClient(sshClient)
	if err != nil {
		return "", fmt.Errorf("sftp: new client: %w", err)
	}
	defer sftpCli.Close()

	if err := sftpCli.MkdirAll(cfg.RemoteDir); err != nil {
		return "", fmt.Errorf("sftp: mkdir %s: %w", cfg.RemoteDir, err)
	}

	remotePath := path.Join(cfg.RemoteDir, remoteFileName)
	dst, err := sftpCli.Create(remotePath)
	if err != nil {
		return "", fmt.Errorf("sftp: create remote file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("sftp: upload copy: %w", err)
	}
	return remotePath, nil
}

// dial honours ctx for both the TCP connect and the SSH handshake.
func dial(ctx context.Context, addr string, sshCfg *ssh.ClientConfig) (*ssh.Client, error) {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("sftp: dial error: %w", err)
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err != nil {
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("sftp: handshake error: %w", err)
	}
	return ssh.NewClient(c, chans, reqs), nil
}
