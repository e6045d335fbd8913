package app

import "testing"

func TestParseDrinkForms(t *testing.T) {
	t.Parallel()

	cmd, err := parseCommand("drink 14g pint of lager")
	if err != nil {
		t.Fatalf("grams: %v", err)
	}
	if cmd.kind != cmdDrink || cmd.drink.Grams != 14 || cmd.drink.Label != "pint of lager" {
		t.Fatalf("unexpected grams command: %+v", cmd)
	}

	cmd, err = parseCommand("drink 500ml@5%")
	if err != nil {
		t.Fatalf("volume: %v", err)
	}
	if cmd.drink.VolumeML != 500 || cmd.drink.ABV != 5 || cmd.drink.Grams != 0 {
		t.Fatalf("unexpected volume command: %+v", cmd.drink)
	}

	cmd, err = parseCommand("drink Wine")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	if cmd.drink.Preset != "wine" || cmd.drink.Label != "" {
		t.Fatalf("unexpected preset command: %+v", cmd.drink)
	}
}

func TestParseFoodAndRemove(t *testing.T) {
	t.Parallel()

	cmd, err := parseCommand("food 0.7 burger and fries")
	if err != nil {
		t.Fatalf("food: %v", err)
	}
	if cmd.kind != cmdFood || cmd.factor != 0.7 || cmd.label != "burger and fries" {
		t.Fatalf("unexpected food command: %+v", cmd)
	}

	cmd, err = parseCommand("rm abc123")
	if err != nil || cmd.kind != cmdRemove || cmd.eventID != "abc123" {
		t.Fatalf("remove: %+v %v", cmd, err)
	}
}

func TestParseRejectsMalformedCommands(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "drink", "drink 500ml@strong", "food lots", "remove", "dance"} {
		if _, err := parseCommand(input); err == nil {
			t.Fatalf("expected %q to be rejected", input)
		}
	}
}
