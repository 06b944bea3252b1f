package process

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/ergoweb/pkg/domain"
)

// Generator implements ports.Generator by invoking an external generator
// command (the ergogen CLI). The generator itself is a black box: this
// adapter hands it a configuration file and harvests whatever files appear
// in the output directory as the artifact set.
type Generator struct {
	command string
	args    []string
	timeout time.Duration
}

// Option configures a Generator.
type Option func(*Generator)

// WithArgs sets the command arguments. The placeholders "{config}" and
// "{out}" are replaced with the configuration file path and the output
// directory; if neither placeholder appears, both paths are appended in
// that order.
func WithArgs(args ...string) Option {
	return func(g *Generator) {
		g.args = args
	}
}

// WithTimeout bounds a single generation run. Zero means no bound beyond
// the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		g.timeout = d
	}
}

// New creates a Generator invoking the given command. Without WithArgs the
// invocation follows the ergogen CLI contract: <config> -o <output_dir>.
func New(command string, opts ...Option) *Generator {
	g := &Generator{command: command}
	for _, opt := range opts {
		opt(g)
	}
	if len(g.args) == 0 {
		g.args = []string{"{config}", "-o", "{out}"}
	}
	return g
}

// Generate runs the external command and collects the produced files.
// Cancellation of ctx kills the process; a superseded run never lingers.
func (g *Generator) Generate(ctx context.Context, cfg domain.Configuration) ([]domain.Artifact, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	workDir, err := os.MkdirTemp("", "ergoweb-gen-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	cfgPath := filepath.Join(workDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg.Raw), 0644); err != nil {
		return nil, fmt.Errorf("failed to write config file: %w", err)
	}

	outDir := filepath.Join(workDir, "output")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	cmd := exec.CommandContext(ctx, g.command, g.expandArgs(cfgPath, outDir)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Stderr is the generator's error surface; keep it for the user.
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("generator exited with error: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("generator exited with error: %w", err)
	}

	artifacts, err := harvest(outDir)
	if err != nil {
		return nil, err
	}
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("generator produced no output files")
	}

	return artifacts, nil
}

func (g *Generator) expandArgs(cfgPath, outDir string) []string {
	substituted := false
	args := make([]string, len(g.args))
	for i, a := range g.args {
		if strings.Contains(a, "{config}") || strings.Contains(a, "{out}") {
			substituted = true
		}
		a = strings.ReplaceAll(a, "{config}", cfgPath)
		a = strings.ReplaceAll(a, "{out}", outDir)
		args[i] = a
	}
	if !substituted {
		args = append(args, cfgPath, outDir)
	}
	return args
}

// harvest reads every regular file under dir into an artifact, named by its
// path relative to dir, in lexicographic order for determinism.
func harvest(dir string) ([]domain.Artifact, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read generator output: %w", err)
	}
	sort.Strings(paths)

	artifacts := make([]domain.Artifact, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve artifact name: %w", err)
		}
		artifacts = append(artifacts, domain.Artifact{
			Name:     filepath.ToSlash(rel),
			MIMEType: mimeFor(rel),
			Content:  content,
		})
	}
	return artifacts, nil
}

// mimeFor resolves artifact content types, covering the generator's output
// formats that the platform mime table does not know.
func mimeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return "text/yaml"
	case ".svg":
		return "image/svg+xml"
	case ".dxf":
		return "image/vnd.dxf"
	case ".stl":
		return "model/stl"
	case ".jscad":
		return "application/javascript"
	case ".kicad_pcb":
		return "application/x-kicad-pcb"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
