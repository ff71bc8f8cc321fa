package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"mashup/internal/config"
	"mashup/internal/deps"
)

func fail(name, subject, format string, args ...any) Result {
	return Result{Name: name, Detail: subject + ": " + fmt.Sprintf(format, args...)}
}

// CheckSMTP dials the mail relay. Only TCP reachability is tested; bad
// credentials show up on the first delivery.
func CheckSMTP(ctx context.Context, host string, port int) Result {
	const name = "SMTP relay"
	host = strings.TrimSpace(host)
	switch {
	case host == "":
		return fail(name, "mail.smtp_host", "not set")
	case port <= 0:
		return fail(name, "mail.smtp_port", "not set")
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fail(name, address, "%v", err)
	}
	_ = conn.Close()
	return Result{Name: name, Passed: true, Detail: address + " reachable"}
}

// CheckDirectoryAccess requires path to be a directory the daemon can list,
// create files in, and traverse.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fail(name, path, "does not exist")
	case err != nil:
		return fail(name, path, "%v", err)
	case !info.IsDir():
		return fail(name, path, "not a directory")
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fail(name, path, "access denied: %v", err)
	}
	return Result{Name: name, Passed: true, Detail: path + " writable"}
}

// CheckSystemDeps checks the binaries named in cfg. The daemon status
// endpoint and the deps command both call it.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Search.YTDLPBinary,
			Description: "Required for searching and downloading sources",
			VersionArgs: []string{"--version"},
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Codec.FFmpegBinary,
			Description: "Required for trimming and merging audio",
			VersionArgs: []string{"-hide_banner", "-version"},
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Codec.FFprobeBinary,
			Description: "Required for audio inspection",
			VersionArgs: []string{"-hide_banner", "-version"},
		},
	}
	return deps.CheckBinaries(ctx, requirements)
}
