package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-md2doc/internal/browser"
	"github.com/alnah/go-md2doc/internal/config"
	"github.com/alnah/go-md2doc/internal/diagram"
)

// inkProbeTimeout bounds the mermaid.ink reachability check.
const inkProbeTimeout = 5 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string         `json:"status"` // "ready", "warnings", "errors"
	Chrome    chromeInfo     `json:"chrome"`
	Renderers []rendererInfo `json:"renderers"`
	Env       envInfo        `json:"environment"`
	System    systemInfo     `json:"system"`
	Warnings  []string       `json:"warnings,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// rendererInfo holds one diagram renderer check.
type rendererInfo struct {
	Name      string `json:"name"`
	Source    string `json:"source"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// doctor runs the checks. Lookups are injectable for tests.
type doctor struct {
	getenv     func(string) string
	lookPath   func(string) (string, error)
	findChrome func() (string, bool)
	version    func(bin string) (string, error)
	probe      func(ctx context.Context, url string) error
	tempDir    string
}

func newDoctor(env *Environment) *doctor {
	return &doctor{
		getenv:     env.Getenv,
		lookPath:   exec.LookPath,
		findChrome: browser.LookPath,
		version:    binaryVersion,
		probe:      probeURL,
		tempDir:    os.TempDir(),
	}
}

func newDoctorCmd(env *Environment) *cobra.Command {
	var jsonOutput, offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check browsers, renderers and the environment",
		Long: `Doctor reports which diagram renderers can run here. Missing renderers
are warnings: diagrams they would draw fall back to the next renderer, or
to their source text.

Exit codes: 0 ready (including warnings), 1 errors found.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := newDoctor(env)
			if offline {
				d.probe = nil
			}
			result := d.run(cmd.Context())

			if jsonOutput {
				enc := json.NewEncoder(env.Stdout)
				enc.SetIndent("", "  ")
				_ = enc.Encode(result)
			} else {
				printDoctorResult(env.Stdout, result)
			}

			if result.Status == "errors" {
				return errDoctor
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the mermaid.ink reachability check")
	return cmd
}

// errDoctor reports failed checks; details were already printed.
var errDoctor = errors.New("doctor found errors")

// run performs all diagnostic checks.
func (d *doctor) run(ctx context.Context) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  d.getenv("ROD_NO_SANDBOX"),
			BrowserBin: d.getenv("ROD_BROWSER_BIN"),
		},
	}

	d.checkChrome(result)
	d.checkCommand(result, "mmdc", "mermaid", d.envOr("MMDC_BIN", diagram.DefaultMMDCBin))
	d.checkCommand(result, "dot", "graphviz", d.envOr("DOT_BIN", diagram.DefaultDotBin))
	d.checkInk(ctx, result, d.envOr("INK_URL", diagram.DefaultInkURL))
	d.checkEnvironment(result)
	d.checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// envOr reads an MD2DOC_* override.
func (d *doctor) envOr(name, fallback string) string {
	if v := strings.TrimSpace(d.getenv(config.EnvPrefix + name)); v != "" {
		return v
	}
	return fallback
}

// checkChrome detects Chrome/Chromium installation.
func (d *doctor) checkChrome(result *doctorResult) {
	info := rendererInfo{Name: "rod", Source: "mermaid"}
	defer func() { result.Renderers = append(result.Renderers, info) }()

	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = d.findChrome()
		if !found {
			info.Detail = "Chrome/Chromium not found"
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found: mermaid falls back to mmdc or mermaid.ink, SVG rasterizing to the built-in rasterizer. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		info.Detail = "not found at " + chromePath
		result.Warnings = append(result.Warnings, fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	info.Available = true
	info.Detail = chromePath

	if v, err := d.version(chromePath); err == nil {
		result.Chrome.Version = v
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	// Sandbox status: disabled if ROD_NO_SANDBOX=1
	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkCommand looks for a renderer binary.
func (d *doctor) checkCommand(result *doctorResult, name, source, bin string) {
	info := rendererInfo{Name: name, Source: source}
	path, err := d.lookPath(bin)
	if err != nil {
		info.Detail = bin + " not found on PATH"
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s renderer unavailable: %s not found on PATH", name, bin))
	} else {
		info.Available = true
		info.Detail = path
	}
	result.Renderers = append(result.Renderers, info)
}

// checkInk probes the mermaid.ink service. A nil probe skips the check.
func (d *doctor) checkInk(ctx context.Context, result *doctorResult, url string) {
	info := rendererInfo{Name: "ink", Source: "mermaid", Detail: url}
	defer func() { result.Renderers = append(result.Renderers, info) }()

	if d.probe == nil {
		info.Detail = "not checked (offline)"
		return
	}
	ctx, cancel := context.WithTimeout(ctx, inkProbeTimeout)
	defer cancel()
	if err := d.probe(ctx, url); err != nil {
		info.Detail = err.Error()
		result.Warnings = append(result.Warnings, fmt.Sprintf("mermaid.ink unreachable at %s: %v", url, err))
		return
	}
	info.Available = true
}

// checkEnvironment detects container and CI environments.
func (d *doctor) checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = d.isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if d.getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func (d *doctor) isContainer() (bool, string) {
	if d.getenv("MD2DOC_CONTAINER") == "1" {
		return true, "MD2DOC_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := d.getenv("container"); v != "" {
		return true, "container=" + v
	}
	if d.getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies system requirements.
func (d *doctor) checkSystem(result *doctorResult) {
	f, err := os.CreateTemp(d.tempDir, "md2doc-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", d.tempDir))
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	result.System.TempWritable = true
}

func binaryVersion(bin string) (string, error) {
	out, err := exec.Command(bin, "--version").Output() // #nosec G204 -- browser path from launcher or env
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func probeURL(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "md2doc doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Diagram renderers")
	for _, rd := range r.Renderers {
		status := "[OK]"
		if !rd.Available {
			status = "[WARN]"
		}
		fmt.Fprintf(w, "  %s %s (%s): %s\n", status, rd.Name, rd.Source, rd.Detail)
	}
	fmt.Fprintln(w, "  [OK] svgo (ascii): built in")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings (diagrams may fall back to source text)")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

