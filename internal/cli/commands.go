package cli

import (
	"fmt"
	"strconv"
	"strings"

	"newsagg/internal/feed"
	"newsagg/internal/models"
)

type command struct {
	name string
	args []string
}

func parseCommand(line string) (command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, false
	}
	return command{name: strings.ToLower(fields[0]), args: fields[1:]}, true
}

func parseFilter(cmd command) (feed.Filter, error) {
	switch cmd.name {
	case "all":
		return feed.Filter{Kind: models.Latest}, nil
	case "search":
		if len(cmd.args) == 0 {
			return feed.Filter{}, fmt.Errorf("usage: search <terms>")
		}
		return feed.Filter{Kind: models.Latest, Query: strings.Join(cmd.args, " ")}, nil
	case "category":
		if len(cmd.args) == 0 || len(cmd.args) > 2 {
			return feed.Filter{}, fmt.Errorf("usage: category <name> [country]")
		}
		filter := feed.Filter{Kind: models.Category, Category: cmd.args[0]}
		if len(cmd.args) == 2 {
			if !isCountryCode(cmd.args[1]) {
				return feed.Filter{}, fmt.Errorf("country must be a two-letter code")
			}
			filter.Country = cmd.args[1]
		}
		return filter, nil
	case "country":
		if len(cmd.args) != 1 || !isCountryCode(cmd.args[0]) {
			return feed.Filter{}, fmt.Errorf("usage: country <two-letter code>")
		}
		return feed.Filter{Kind: models.Country, Country: cmd.args[0]}, nil
	}
	return feed.Filter{}, fmt.Errorf("unknown feed %q", cmd.name)
}

// parseIndex reads a 1-based article number
func parseIndex(args []string, count int) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: open <number>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > count {
		return 0, fmt.Errorf("no article number %s", args[0])
	}
	return n - 1, nil
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}
