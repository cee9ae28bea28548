package section

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		heading string
		want    Section
	}{
		{"Stay safe", Safety},
		{"Safety", Safety},
		{"Crime", Safety},
		{"Emergencies", Safety},
		{"Eat", Eat},
		{"Eat and drink", Eat},
		{"Food and dining", Eat},
		{"Local cuisine", Eat},
		{"Restaurants", Eat},
		{"Drink", Eat},
		{"Get around", GetAround},
		{"Getting around", GetAround},
		{"Public transport", GetAround},
		{"Transit", GetAround},
		{"Weather", Weather},
		{"Climate", Weather},
		{"Understand", Understand},
		{"History", Understand},
		{"Sleep", Sleep},
		{"Hotels", Sleep},
		{"Buy", Buy},
		{"Shopping", Buy},
		{"See", See},
		{"Sights", See},
		{"Connect", Connect},
		{"Do", Do},
		{"Nightlife", Other},
		{"Respect", Other},
		{"", Other},
	}

	for _, tt := range tests {
		if got := Normalize(tt.heading); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.heading, got, tt.want)
		}
	}
}

// "Weather" contains the substring "eat"; the rule order must keep
// climate headings out of the Eat bucket.
func TestNormalizeWeatherBeforeEat(t *testing.T) {
	for _, heading := range []string{"Weather", "weather and climate", "WEATHER"} {
		if got := Normalize(heading); got != Weather {
			t.Errorf("Normalize(%q) = %q, want %q", heading, got, Weather)
		}
	}
}

func TestNormalizeCaseAndWhitespace(t *testing.T) {
	if got := Normalize("  STAY SAFE  "); got != Safety {
		t.Errorf("Normalize with padding = %q, want %q", got, Safety)
	}
}

func TestIsTarget(t *testing.T) {
	for _, s := range []Section{Safety, Eat, GetAround, Weather} {
		if !IsTarget(s) {
			t.Errorf("IsTarget(%q) = false, want true", s)
		}
	}
	for _, s := range []Section{Understand, See, Do, Buy, Sleep, Connect, Other} {
		if IsTarget(s) {
			t.Errorf("IsTarget(%q) = true, want false", s)
		}
	}
}

func TestParse(t *testing.T) {
	if sec, ok := Parse("Safety"); !ok || sec != Safety {
		t.Errorf("Parse(Safety) = %q, %v", sec, ok)
	}
	if sec, ok := Parse("get_around"); !ok || sec != GetAround {
		t.Errorf("Parse(get_around) = %q, %v", sec, ok)
	}
	if _, ok := Parse("nightlife"); ok {
		t.Error("Parse(nightlife) accepted an unknown section")
	}
	if _, ok := Parse(""); ok {
		t.Error("Parse of empty string must fail")
	}
}
