package bootstrap

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/tridentos/bosun/internal/errors"
)

// HardwareIDFile is the file name, within the config directory, that the
// derived identifier is persisted to.
const HardwareIDFile = "hardware-id"

// HardwareIDStep derives a stable hardware identifier from host
// fingerprint sources and persists it for services that need a durable
// per-vehicle identity. The identifier is a deterministic SHA1-namespace
// UUID, so re-running the step always rewrites the same value.
type HardwareIDStep struct {
	// ConfigDir is the directory the identifier is written into. If the
	// directory does not exist, the step is skipped.
	ConfigDir string
	// CPUInfoPath is the cpuinfo pseudo-file to read the CPU identifier
	// from. Overridable for tests.
	CPUInfoPath string
	// NetClassDir is the sysfs directory holding one entry per network
	// interface. Overridable for tests.
	NetClassDir string
}

// NewHardwareIDStep returns the step with standard Linux paths.
func NewHardwareIDStep(configDir string) *HardwareIDStep {
	return &HardwareIDStep{
		ConfigDir:   configDir,
		CPUInfoPath: "/proc/cpuinfo",
		NetClassDir: "/sys/class/net",
	}
}

// Name implements Step.
func (s *HardwareIDStep) Name() string { return "hardware-id" }

// Run implements Step. A missing config directory is a skip; any failure
// writing the identifier into an existing directory is fatal.
func (s *HardwareIDStep) Run(ctx context.Context) (Result, error) {
	if _, err := os.Stat(s.ConfigDir); err != nil {
		if os.IsNotExist(err) {
			return skipped("config directory not present at " + s.ConfigDir), nil
		}
		return Result{}, errors.NewBootstrapError("failed to stat config directory", err).WithStep(s.Name())
	}

	id := s.derive()
	path := filepath.Join(s.ConfigDir, HardwareIDFile)
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return Result{}, errors.NewBootstrapError("failed to write hardware identifier", err).WithStep(s.Name())
	}
	return applied("wrote " + path), nil
}

// derive builds the identifier from CPU core count, CPU identifier, and
// MAC address. Sources that cannot be read contribute an empty
// component; the result is still deterministic for a given host.
func (s *HardwareIDStep) derive() string {
	fingerprint := fmt.Sprintf("cores=%d;cpu=%s;mac=%s",
		runtime.NumCPU(), s.cpuID(), s.primaryMAC())
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fingerprint)).String()
}

// cpuID extracts a CPU identifier from cpuinfo. It prefers the board
// serial where present (common on ARM single-board computers) and falls
// back to the model name.
func (s *HardwareIDStep) cpuID() string {
	f, err := os.Open(s.CPUInfoPath)
	if err != nil {
		return ""
	}
	defer f.Close()

	var model string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "Serial":
			return value
		case "model name", "Model":
			if model == "" {
				model = value
			}
		}
	}
	return model
}

// primaryMAC returns the MAC address of the first physical-looking
// interface, skipping loopback and virtual devices.
func (s *HardwareIDStep) primaryMAC() string {
	entries, err := os.ReadDir(s.NetClassDir)
	if err != nil {
		return ""
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if name == "lo" || strings.HasPrefix(name, "veth") || strings.HasPrefix(name, "docker") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.NetClassDir, name, "address"))
		if err != nil {
			continue
		}
		mac := strings.TrimSpace(string(data))
		if mac != "" && mac != "00:00:00:00:00:00" {
			return mac
		}
	}
	return ""
}
