package extractor

import (
	"context"
	"strings"

	"streamgate/internal/config"
	"streamgate/internal/domain"
)

// Operation flags understood by the extractor.
const (
	flagDumpMetadata   = "--dump-json"
	flagGetFilename    = "--get-filename"
	flagListExtractors = "--list-extractors"
)

// Client invokes the extractor subprocess. All invocations share the
// same argument shape: configured params, one operation flag, the page
// URL, then the optional format selector and password.
type Client struct {
	cfg config.ExtractorConfig
	run runFunc
}

// New creates an extractor client for the configured binary.
func New(cfg config.ExtractorConfig) *Client {
	return &Client{
		cfg: cfg,
		run: runCommand,
	}
}

// Metadata runs a metadata dump for the page URL and parses the result.
func (c *Client) Metadata(ctx context.Context, pageURL, format, password string) (domain.Metadata, error) {
	out, err := c.invoke(ctx, flagDumpMetadata, pageURL, format, password)
	if err != nil {
		return domain.Metadata{}, err
	}
	return domain.ParseMetadata(out)
}

// Filename asks the extractor for the filename it would use, trimmed.
func (c *Client) Filename(ctx context.Context, pageURL, format, password string) (string, error) {
	out, err := c.invoke(ctx, flagGetFilename, pageURL, format, password)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Property runs a single-property dump (e.g. "--dump-user-agent") and
// returns the trimmed value.
func (c *Client) Property(ctx context.Context, flag, pageURL, format, password string) (string, error) {
	out, err := c.invoke(ctx, flag, pageURL, format, password)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Extractors lists the names of all supported extractors.
func (c *Client) Extractors(ctx context.Context) ([]string, error) {
	out, err := c.invoke(ctx, flagListExtractors, "", "", "")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

func (c *Client) invoke(ctx context.Context, opFlag, pageURL, format, password string) ([]byte, error) {
	name, args := c.commandLine(opFlag, pageURL, format, password)

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	stdout, stderr, exitCode, err := c.run(ctx, subprocessEnv(c.cfg.AuxPath), name, args...)
	if err != nil {
		if exitCode < 0 {
			// Could not launch at all; nothing to classify.
			return nil, err
		}
		cmdline := strings.Join(append([]string{name}, args...), " ")
		return nil, classify(cmdline, exitCode, stderr)
	}

	return stdout, nil
}

// commandLine builds the invocation: interpreter (when configured),
// extractor binary, configured params, operation flag, URL, then the
// optional format and password pairs.
func (c *Client) commandLine(opFlag, pageURL, format, password string) (string, []string) {
	var name string
	var args []string

	if c.cfg.Python != "" {
		name = c.cfg.Python
		args = append(args, c.cfg.Binary)
	} else {
		name = c.cfg.Binary
	}

	args = append(args, c.cfg.Params...)
	args = append(args, opFlag)
	if pageURL != "" {
		args = append(args, pageURL)
	}
	if format != "" {
		args = append(args, "-f", format)
	}
	if password != "" {
		args = append(args, "--video-password", password)
	}

	return name, args
}
