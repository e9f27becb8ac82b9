package clip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CommandPipeline runs the clip-generation toolchain as a subprocess.
// The command receives its parameters as flags and reports artifacts as
// a single JSON object on stdout. Arguments are passed directly to the
// process; nothing is interpreted through a shell.
type CommandPipeline struct {
	command string
	args    []string
}

// NewCommandPipeline creates a pipeline backed by the given command.
// Extra args are prepended before the per-job flags (useful for
// interpreter invocations such as "python3 clipper.py").
func NewCommandPipeline(command string, args ...string) *CommandPipeline {
	return &CommandPipeline{command: command, args: args}
}

// Process invokes the external pipeline and parses its JSON result.
// The subprocess is not cancelable mid-flight beyond context kill; a
// hanging external process is a known limitation of this design.
func (p *CommandPipeline) Process(ctx context.Context, req Request) (*Result, error) {
	args := append([]string{}, p.args...)
	args = append(args,
		"--input", req.SourcePath,
		"--out-dir", req.OutputDir,
		"--max-duration", strconv.Itoa(req.MaxDurationSeconds),
		"--variants", strconv.Itoa(req.VariantCount),
	)
	if req.WatermarkText != "" {
		args = append(args, "--watermark", req.WatermarkText)
	}

	cmd := exec.CommandContext(ctx, p.command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("clip pipeline failed: %w: %s", err, stderrTail(&stderr))
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("clip pipeline produced invalid result: %w", err)
	}
	if result.ClipPath == "" {
		return nil, fmt.Errorf("clip pipeline reported no primary clip")
	}

	return &result, nil
}

// stderrTail returns the last few lines of stderr for the error message.
func stderrTail(buf *bytes.Buffer) string {
	const maxLines = 5

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}
