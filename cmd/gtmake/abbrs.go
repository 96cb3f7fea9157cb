package main

import (
	"context"
	"fmt"

	"github.com/danferreira/gtmake/internal/config"
	"github.com/danferreira/gtmake/internal/ui"
)

func runAbbrs(ctx context.Context, a *app, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
	case "add":
		if len(args) != 2 {
			return fmt.Errorf("%w: gtmake abbrs add <abbreviation> <tracker>", errUsage)
		}
		if err := a.cfg.AddTracker(args[0], args[1]); err != nil {
			return err
		}
		if err := a.cfg.Save(a.cfgPath); err != nil {
			return err
		}
	case "rem", "remove":
		if len(args) == 0 {
			return fmt.Errorf("%w: gtmake abbrs rem|remove <abbreviation>...", errUsage)
		}
		a.cfg.RemoveTracker(args...)
		if err := a.cfg.Save(a.cfgPath); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: gtmake abbrs [list|add|rem|remove]", errUsage)
	}

	fmt.Fprintln(a.stdout, ui.Abbreviations(a.cfgPath, config.DefaultAbbreviationList(), a.cfg.UserAbbreviations()))
	return nil
}
