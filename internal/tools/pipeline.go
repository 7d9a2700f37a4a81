package tools

import (
	"context"
	"os/exec"
)

// Pipe runs producer and consumer as a two-stage pipeline, connecting the
// producer's stdout to the consumer's stdin. Both processes must exit
// cleanly; a non-zero exit from either stage fails the pipeline.
//
// This exists for decompressors without native tar integration (xz, lzip):
// their output is streamed straight into a tar extraction process instead
// of being written to an intermediate file.
func (r *Runner) Pipe(ctx context.Context, producer, consumer Command) error {
	producerPath, err := MustLocate(producer.Tool)
	if err != nil {
		return err
	}
	consumerPath, err := MustLocate(consumer.Tool)
	if err != nil {
		return err
	}

	p := exec.CommandContext(ctx, producerPath, producer.Args...)
	p.Dir = firstNonEmpty(producer.Dir, r.Dir)

	stdout, err := p.StdoutPipe()
	if err != nil {
		return err
	}

	consumerCmd := consumer
	consumerCmd.Stdin = stdout

	if err := p.Start(); err != nil {
		return err
	}

	consumeErr := r.run2(ctx, consumerPath, consumerCmd)

	waitErr := p.Wait()
	if waitErr != nil {
		exitCode := -1
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return &RunError{
			Command:  producer.Tool,
			Args:     producer.Args,
			ExitCode: exitCode,
			Err:      waitErr,
		}
	}
	return consumeErr
}

// run2 executes an already-located consumer command.
func (r *Runner) run2(ctx context.Context, path string, cmd Command) error {
	c := exec.CommandContext(ctx, path, cmd.Args...)
	c.Dir = firstNonEmpty(cmd.Dir, r.Dir)
	c.Stdin = cmd.Stdin

	if err := c.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return &RunError{
			Command:  cmd.Tool,
			Args:     cmd.Args,
			ExitCode: exitCode,
			Err:      err,
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
