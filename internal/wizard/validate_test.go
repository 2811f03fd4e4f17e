package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator Validator
		values    Values
		wantErrs  int
	}{
		{"required present", Required("x", "x"), Values{"x": "hi"}, 0},
		{"required blank", Required("x", "x"), Values{"x": "  "}, 1},
		{"required missing", Required("x", "x"), Values{}, 1},
		{"email valid", Email("e", "email"), Values{"e": "a@b.co"}, 0},
		{"email invalid", Email("e", "email"), Values{"e": "nope"}, 1},
		{"email empty passes", Email("e", "email"), Values{}, 0},
		{"one of match", OneOf("c", "category", "venue", "decor"), Values{"c": "decor"}, 0},
		{"one of miss", OneOf("c", "category", "venue", "decor"), Values{"c": "golf"}, 1},
		{"int in range", IntBetween("n", "guests", 1, 5000), Values{"n": "120"}, 0},
		{"int out of range", IntBetween("n", "guests", 1, 5000), Values{"n": "0"}, 1},
		{"int not a number", IntBetween("n", "guests", 1, 5000), Values{"n": "soon"}, 1},
		{"min items from csv", MinItems("s", "services", 1), Values{"s": "photo, video"}, 0},
		{"min items empty", MinItems("s", "services", 1), Values{"s": " "}, 1},
		{"date valid", Date("d", "event date"), Values{"d": "2026-11-21"}, 0},
		{"date invalid", Date("d", "event date"), Values{"d": "21/11/2026"}, 1},
		{"must be true yes", MustBeTrue("ok", "accept the terms"), Values{"ok": "yes"}, 0},
		{"must be true missing", MustBeTrue("ok", "accept the terms"), Values{}, 1},
		{"all collects in order", All(Required("a", "a"), Required("b", "b")), Values{}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.validator(tt.values), tt.wantErrs)
		})
	}
}

func TestItems(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Items(Values{"x": "a, b"}, "x"))
	assert.Equal(t, []string{"a"}, Items(Values{"x": []string{"a"}}, "x"))
	assert.Equal(t, []string{"a"}, Items(Values{"x": []any{"a"}}, "x"))
	assert.Nil(t, Items(Values{}, "x"))
}
