package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Opts configures one sweep. Command is the trainer argv prefix; the value
// and run-count flags are appended per invocation.
type Opts struct {
	Command   []string
	ValueFlag string // "--activation" or "--warmup_ratio"
	NumRuns   int
	EnvFile   string
	Stdout    io.Writer
	Stderr    io.Writer
}

// Result records the outcome of one trainer invocation.
type Result struct {
	Value    string
	OK       bool
	ExitCode int
	Elapsed  time.Duration
}

// RunOne invokes the trainer for a single hyperparameter value and blocks
// until it exits. There is no timeout: a hung trainer hangs the sweep.
func RunOne(ctx context.Context, value string, opts *Opts) (Result, error) {
	if len(opts.Command) == 0 {
		return Result{}, fmt.Errorf("no trainer command configured")
	}
	args := append([]string{}, opts.Command[1:]...)
	args = append(args, opts.ValueFlag, value, "--num_runs", strconv.Itoa(opts.NumRuns))

	cmd := exec.CommandContext(ctx, opts.Command[0], args...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	env, err := trainerEnv(opts.EnvFile)
	if err != nil {
		return Result{}, err
	}
	cmd.Env = env

	start := time.Now()
	runErr := cmd.Run()
	res := Result{Value: value, Elapsed: time.Since(start)}
	if runErr == nil {
		res.OK = true
		return res, nil
	}
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("running trainer: %w", runErr)
}

func trainerEnv(envFile string) ([]string, error) {
	env := os.Environ()
	if envFile == "" {
		return env, nil
	}
	extra, err := godotenv.Read(envFile)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
	}
	for k, v := range extra {
		env = append(env, k+"="+v)
	}
	return env, nil
}
