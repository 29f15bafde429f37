package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Options configures manifest retrieval.
type Options struct {
	SSH        SSHOpts
	S3         S3Opts
	HTTPClient *http.Client // nil = http.DefaultClient
}

// Open returns a reader for the manifest at loc. The caller must close it.
func Open(ctx context.Context, loc Location, opts Options) (io.ReadCloser, error) {
	switch {
	case loc.IsHTTP():
		return openHTTP(ctx, loc, opts)
	case loc.Scheme == SchemeSFTP:
		return openSFTP(ctx, loc, opts)
	case loc.IsS3():
		return openS3(ctx, loc, opts.S3)
	default:
		f, err := os.Open(loc.Path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", loc.Path, err)
		}
		return f, nil
	}
}

// StatusError is returned when an HTTP server answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %s", e.URL, e.Status)
}

func openHTTP(ctx context.Context, loc Location, opts Options) (io.ReadCloser, error) {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", loc.URL, err)
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", loc.URL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: loc.URL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	slog.Debug("fetching manifest", "url", loc.URL, "content_length", resp.ContentLength)
	return resp.Body, nil
}

func openSFTP(ctx context.Context, loc Location, opts Options) (io.ReadCloser, error) {
	sshOpts := opts.SSH
	if loc.Port != 0 {
		sshOpts.Port = loc.Port
	}

	sshClient, err := DialSSH(ctx, loc.Host, loc.User, sshOpts)
	if err != nil {
		return nil, err
	}
	rc, err := OpenSFTP(sshClient, loc.Path)
	if err != nil {
		sshClient.Close()
		return nil, err
	}
	return rc, nil
}

// OpenSFTP opens path for reading over an established SSH connection. The
// returned reader owns sshClient and closes it on Close; on error the
// caller still owns it.
func OpenSFTP(sshClient *ssh.Client, path string) (io.ReadCloser, error) {
	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		return nil, fmt.Errorf("sftp client: %w", err)
	}
	f, err := sftpClient.Open(path)
	if err != nil {
		sftpClient.Close()
		return nil, fmt.Errorf("sftp open %s: %w", path, err)
	}
	return &sftpFile{File: f, sftp: sftpClient, ssh: sshClient}, nil
}

// sftpFile closes the whole connection stack with the file.
type sftpFile struct {
	*sftp.File
	sftp *sftp.Client
	ssh  *ssh.Client
}

func (f *sftpFile) Close() error {
	return errors.Join(f.File.Close(), f.sftp.Close(), f.ssh.Close())
}
