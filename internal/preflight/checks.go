package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"woodway/internal/config"
	"woodway/internal/deps"
	"woodway/internal/tagging"
)

const metadataCheckTimeout = 30 * time.Second

// ToolResults converts binary dependency statuses into preflight results.
func ToolResults(statuses []deps.Status) []Result {
	results := make([]Result, 0, len(statuses))
	for _, st := range statuses {
		detail := st.Detail
		if detail == "" && st.Available {
			detail = st.Command
		}
		results = append(results, Result{
			Name:     st.Name,
			Passed:   st.Available,
			Optional: st.Optional,
			Detail:   detail,
		})
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable and writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckDirectoryReadable verifies that the directory exists and can be
// listed. The intake directory only needs to be read.
func CheckDirectoryReadable(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckMetadataProvider verifies the generative tagging API is reachable
// with the configured key, using a single attempt and a fixed timeout.
// The result is always optional: tagging falls back to algorithmic
// bundles when the provider is unusable.
func CheckMetadataProvider(ctx context.Context, cfg *config.Config) Result {
	const name = "Metadata API"

	llm := cfg.MetadataLLM()
	if llm.APIKey == "" {
		return Result{Name: name, Optional: true,
			Detail: "API key missing; tagging will fall back to algorithmic bundles"}
	}
	provider := tagging.NewProvider(cfg)
	if provider == nil {
		return Result{Name: name, Optional: true,
			Detail: fmt.Sprintf("unknown provider %q; tagging will fall back to algorithmic bundles", llm.Provider)}
	}
	checker, ok := provider.(interface{ HealthCheck(context.Context) error })
	if !ok {
		return Result{Name: name, Passed: true, Optional: true, Detail: "configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, metadataCheckTimeout)
	defer cancel()
	if err := checker.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Optional: true, Detail: summarizeProviderError(err)}
	}
	return Result{Name: name, Passed: true, Optional: true,
		Detail: fmt.Sprintf("%s reachable", provider.Name())}
}

// summarizeProviderError produces a short summary for metadata API
// health check failures.
func summarizeProviderError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (metadata API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (metadata API unreachable)"
	}
	return strings.TrimSpace(err.Error())
}
