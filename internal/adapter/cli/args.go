package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

var (
	errUnterminatedQuote = errors.New("unterminated quote")
	errUsage             = errors.New("usage")
)

// splitArgs splits a shell line into words with POSIX shell quoting.
func splitArgs(line string) ([]string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUnterminatedQuote, err)
	}
	if len(args) == 0 {
		return nil, nil
	}
	return args, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid product id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func parseID(args []string) (int64, error) {
	ids, err := parseIDs(args)
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 {
		return 0, errors.New("expected exactly one product id")
	}
	return ids[0], nil
}

// splitOption splits "key=value". ok is false when there is no "=".
func splitOption(arg string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(arg, "=")
	return strings.ToLower(key), value, ok
}

func usageError(usage string) error {
	return fmt.Errorf("%w: %s", errUsage, usage)
}
