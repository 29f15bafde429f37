// Package transport retrieves baseline manifests from local paths, HTTP(S)
// URLs, SFTP servers and S3 buckets.
package transport

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// Schemes a Location can carry. Local paths have an empty scheme.
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeSFTP  = "sftp"
	SchemeS3    = "s3"
)

// Location is a parsed manifest source.
type Location struct {
	Scheme string
	Host   string // bucket for s3
	User   string
	Path   string // object key for s3
	Port   int    // 0 = scheme default
	URL    string // original URL for http(s)
}

// IsRemote returns true if the location refers to a remote host.
func (l Location) IsRemote() bool {
	return l.Host != ""
}

// IsHTTP reports whether the location is fetched over HTTP(S).
func (l Location) IsHTTP() bool {
	return l.Scheme == SchemeHTTP || l.Scheme == SchemeHTTPS
}

// IsS3 reports whether the location is an S3 object.
func (l Location) IsS3() bool {
	return l.Scheme == SchemeS3
}

// String returns a human-readable representation.
func (l Location) String() string {
	switch {
	case l.IsHTTP():
		return l.URL
	case l.IsS3():
		return "s3://" + l.Host + "/" + l.Path
	case !l.IsRemote():
		return l.Path
	case l.Port != 0:
		u := url.URL{Scheme: SchemeSFTP, Host: l.Host + ":" + strconv.Itoa(l.Port), Path: l.Path}
		if l.User != "" {
			u.User = url.User(l.User)
		}
		return u.String()
	case l.User != "":
		return fmt.Sprintf("%s@%s:%s", l.User, l.Host, l.Path)
	default:
		return fmt.Sprintf("%s:%s", l.Host, l.Path)
	}
}

// ParseLocation parses a manifest argument.
//
// Supported formats:
//   - /absolute/path, relative/path    local file
//   - http://host/path, https://...    HTTP(S) GET
//   - sftp://[user@]host[:port]/path   SFTP
//   - s3://bucket/key                  S3 GetObject
//   - [user@]host:path                 SFTP, scp style
//
// A bare word with no colon is always local. A colon only marks a remote
// location when the part before it contains no path separators, so
// "/foo:bar" and "./host:path" are local.
//
//nolint:revive // cognitive-complexity: location parsing handles multiple format variants
func ParseLocation(arg string) Location {
	lower := strings.ToLower(arg)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return parseHTTPURL(arg)
	case strings.HasPrefix(lower, "sftp://"):
		return parseSFTPURL(arg)
	case strings.HasPrefix(lower, "s3://"):
		return parseS3URL(arg)
	}

	if filepath.IsAbs(arg) || strings.HasPrefix(arg, "./") || strings.HasPrefix(arg, "../") {
		return Location{Path: arg}
	}

	colonIdx := strings.IndexByte(arg, ':')
	if colonIdx <= 0 {
		return Location{Path: arg}
	}

	hostPart := arg[:colonIdx]
	if strings.ContainsRune(hostPart, filepath.Separator) || strings.ContainsRune(hostPart, '/') {
		return Location{Path: arg}
	}

	var user, host string
	if atIdx := strings.LastIndexByte(hostPart, '@'); atIdx >= 0 {
		user = hostPart[:atIdx]
		host = hostPart[atIdx+1:]
	} else {
		host = hostPart
	}
	if host == "" {
		return Location{Path: arg}
	}

	return Location{
		Scheme: SchemeSFTP,
		Host:   host,
		User:   user,
		Path:   arg[colonIdx+1:],
	}
}

func parseHTTPURL(raw string) Location {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return Location{Path: raw}
	}
	port := 0
	if p := u.Port(); p != "" {
		port, _ = strconv.Atoi(p)
	}
	return Location{
		Scheme: strings.ToLower(u.Scheme),
		Host:   u.Hostname(),
		Port:   port,
		Path:   u.Path,
		URL:    raw,
	}
}

func parseSFTPURL(raw string) Location {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return Location{Path: raw}
	}

	port := 0
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return Location{Path: raw}
		}
	}

	var user string
	if u.User != nil {
		user = u.User.Username()
	}

	return Location{
		Scheme: SchemeSFTP,
		Host:   u.Hostname(),
		User:   user,
		Port:   port,
		Path:   u.Path,
	}
}

func parseS3URL(raw string) Location {
	rest := raw[len("s3://"):]
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return Location{Path: raw}
	}
	return Location{
		Scheme: SchemeS3,
		Host:   bucket,
		Path:   key,
	}
}
