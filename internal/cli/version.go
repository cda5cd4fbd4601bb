package cli

import (
	"fmt"

	"github.com/hashicorp/go-version"
	"github.com/spf13/cobra"
)

// Build information, overridden with -ldflags at release time.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// ParsedVersion returns Version as a semantic version. An unparsable build
// version falls back to 0.0.0 with the raw string as metadata.
func ParsedVersion() *version.Version {
	v, err := version.NewVersion(Version)
	if err != nil {
		return version.Must(version.NewVersion("0.0.0+" + sanitizeMetadata(Version)))
	}
	return v
}

// UserAgent is the User-Agent header sent with HTTP requests.
func UserAgent() string {
	return "multifetch/" + ParsedVersion().Core().String()
}

func sanitizeMetadata(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		default:
			out = append(out, '-')
		}
	}
	if len(out) == 0 {
		return "unknown"
	}
	return string(out)
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version information for multifetch",
		Args:  cobra.NoArgs,
		Run:   runVersion,
	}

	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) {
	out := cmd.OutOrStdout()
	v := ParsedVersion()
	_, _ = fmt.Fprintf(out, "multifetch version %s\n", v.String())
	if pre := v.Prerelease(); pre != "" {
		_, _ = fmt.Fprintf(out, "Pre-release: %s\n", pre)
	}
	_, _ = fmt.Fprintf(out, "Build date: %s\n", BuildDate)
	_, _ = fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
}
