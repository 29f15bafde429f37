package transport_test

import (
	"testing"

	"github.com/bamsammich/crcsum/internal/transport"
	"github.com/stretchr/testify/assert"
)

func TestParseLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantScheme string
		wantHost   string
		wantUser   string
		wantPath   string
		wantPort   int
	}{
		{name: "absolute path", input: "/var/lib/sums.crc", wantPath: "/var/lib/sums.crc"},
		{name: "relative path", input: "sums.crc", wantPath: "sums.crc"},
		{name: "dot-relative path", input: "./data/sums.crc", wantPath: "./data/sums.crc"},
		{name: "parent-relative path", input: "../sums.crc", wantPath: "../sums.crc"},
		{
			name:       "user@host:path",
			input:      "backup@nas:/srv/sums.crc",
			wantScheme: "sftp",
			wantHost:   "nas",
			wantUser:   "backup",
			wantPath:   "/srv/sums.crc",
		},
		{
			name:       "host:relative",
			input:      "nas.local:sums.crc",
			wantScheme: "sftp",
			wantHost:   "nas.local",
			wantPath:   "sums.crc",
		},
		{
			name:       "sftp url with port",
			input:      "sftp://ops@mirror:2222/pub/sums.crc.zst",
			wantScheme: "sftp",
			wantHost:   "mirror",
			wantUser:   "ops",
			wantPath:   "/pub/sums.crc.zst",
			wantPort:   2222,
		},
		{
			name:       "sftp url default port",
			input:      "sftp://mirror/pub/sums.crc",
			wantScheme: "sftp",
			wantHost:   "mirror",
			wantPath:   "/pub/sums.crc",
		},
		{
			name:       "https url",
			input:      "https://example.com/baseline.crc",
			wantScheme: "https",
			wantHost:   "example.com",
			wantPath:   "/baseline.crc",
		},
		{
			name:       "http url with port",
			input:      "HTTP://10.0.0.5:8080/b.crc",
			wantScheme: "http",
			wantHost:   "10.0.0.5",
			wantPath:   "/b.crc",
			wantPort:   8080,
		},
		{
			name:       "s3 url",
			input:      "s3://audit-bucket/hosts/web01/sums.crc.zst",
			wantScheme: "s3",
			wantHost:   "audit-bucket",
			wantPath:   "hosts/web01/sums.crc.zst",
		},
		{name: "s3 url without key", input: "s3://audit-bucket", wantPath: "s3://audit-bucket"},
		{name: "absolute path with colon", input: "/tmp/a:b", wantPath: "/tmp/a:b"},
		{name: "relative path with colon after separator", input: "dir/host:path", wantPath: "dir/host:path"},
		{name: "bare colon", input: ":path", wantPath: ":path"},
		{name: "empty host after @", input: "user@:path", wantPath: "user@:path"},
		{name: "broken sftp url", input: "sftp:///nohost", wantPath: "sftp:///nohost"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			loc := transport.ParseLocation(tt.input)
			assert.Equal(t, tt.wantScheme, loc.Scheme, "Scheme")
			assert.Equal(t, tt.wantHost, loc.Host, "Host")
			assert.Equal(t, tt.wantUser, loc.User, "User")
			assert.Equal(t, tt.wantPath, loc.Path, "Path")
			assert.Equal(t, tt.wantPort, loc.Port, "Port")
			assert.Equal(t, tt.wantHost != "", loc.IsRemote())
		})
	}
}

func TestLocation_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		loc  transport.Location
		want string
	}{
		{"local", transport.Location{Path: "/data/sums.crc"}, "/data/sums.crc"},
		{"scp with user", transport.Location{Scheme: "sftp", Host: "nas", User: "admin", Path: "/b"}, "admin@nas:/b"},
		{"scp without user", transport.Location{Scheme: "sftp", Host: "nas", Path: "/b"}, "nas:/b"},
		{"sftp with port", transport.Location{Scheme: "sftp", Host: "nas", User: "u", Port: 2222, Path: "/b"}, "sftp://u@nas:2222/b"},
		{"http", transport.ParseLocation("https://example.com/x.crc"), "https://example.com/x.crc"},
		{"s3", transport.ParseLocation("s3://bkt/a/b.crc"), "s3://bkt/a/b.crc"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.loc.String())
		})
	}
}
