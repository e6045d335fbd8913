package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	sessiondto "bactrack/internal/modules/session/dto"
)

type commandKind int

const (
	cmdStart commandKind = iota
	cmdEnd
	cmdDrink
	cmdFood
	cmdRemove
	cmdRefresh
)

type command struct {
	kind    commandKind
	drink   sessiondto.DrinkInput
	factor  float64
	label   string
	eventID string
}

const (
	usageDrink  = "usage: drink <preset|14g|500ml@5> [label]"
	usageFood   = "usage: food <factor 0-1> [label]"
	usageRemove = "usage: remove <event-id>"
)

// parseCommand reads one palette line. Drink amounts take three forms:
// a preset name, grams ("14g" or a bare number) or volume at ABV ("500ml@5").
func parseCommand(input string) (command, error) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return command{}, errors.New("empty command")
	}
	rest := strings.Join(parts[min(2, len(parts)):], " ")

	switch strings.ToLower(parts[0]) {
	case "start":
		return command{kind: cmdStart}, nil
	case "end":
		return command{kind: cmdEnd}, nil
	case "refresh":
		return command{kind: cmdRefresh}, nil
	case "drink":
		if len(parts) < 2 {
			return command{}, errors.New(usageDrink)
		}
		drink, err := parseAmount(parts[1])
		if err != nil {
			return command{}, err
		}
		drink.Label = rest
		return command{kind: cmdDrink, drink: drink}, nil
	case "food":
		if len(parts) < 2 {
			return command{}, errors.New(usageFood)
		}
		factor, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return command{}, fmt.Errorf("invalid absorption factor %q", parts[1])
		}
		return command{kind: cmdFood, factor: factor, label: rest}, nil
	case "remove", "rm":
		if len(parts) != 2 {
			return command{}, errors.New(usageRemove)
		}
		return command{kind: cmdRemove, eventID: parts[1]}, nil
	}
	return command{}, fmt.Errorf("unknown command: %s", parts[0])
}

func parseAmount(arg string) (sessiondto.DrinkInput, error) {
	lower := strings.ToLower(arg)
	if vol, abv, ok := strings.Cut(lower, "@"); ok {
		ml, err := strconv.ParseFloat(strings.TrimSuffix(vol, "ml"), 64)
		if err != nil {
			return sessiondto.DrinkInput{}, fmt.Errorf("invalid volume %q", vol)
		}
		pct, err := strconv.ParseFloat(strings.TrimSuffix(abv, "%"), 64)
		if err != nil {
			return sessiondto.DrinkInput{}, fmt.Errorf("invalid abv %q", abv)
		}
		return sessiondto.DrinkInput{VolumeML: ml, ABV: pct}, nil
	}
	if grams, err := strconv.ParseFloat(strings.TrimSuffix(lower, "g"), 64); err == nil {
		return sessiondto.DrinkInput{Grams: grams}, nil
	}
	return sessiondto.DrinkInput{Preset: lower}, nil
}

func paletteHints(presets []string) []string {
	hints := []string{
		"drink <preset|14g|500ml@5> [label]",
		"food <factor> [label]",
		"remove <event-id>",
		"start",
		"end",
		"refresh",
	}
	for _, p := range presets {
		hints = append(hints, "drink "+p)
	}
	return hints
}
