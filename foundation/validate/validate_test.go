package validate_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type account struct {
	Name string `json:"name" validate:"required,utf8"`
}

func Test_UTF8(t *testing.T) {
	type table struct {
		name  string
		value string
		valid bool
	}

	tt := []table{
		{name: "ascii", value: "bill", valid: true},
		{name: "multibyte", value: "zoë", valid: true},
		{name: "invalid-byte", value: "bill\xff", valid: false},
		{name: "truncated-rune", value: "zo\xc3", valid: false},
	}

	t.Log("Given the need to reject strings that do not survive JSON encoding.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen checking %q.", testID, tst.value)
				{
					err := validate.Check(account{Name: tst.value})

					if tst.valid {
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould accept the value: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould accept the value.", success, testID)
						return
					}

					fields := validate.GetFieldErrors(err)
					if fields == nil {
						t.Fatalf("\t%s\tTest %d:\tShould get field errors, got %v.", failed, testID, err)
					}
					if msg := fields.Fields()["name"]; msg != "name must be valid UTF-8 text" {
						t.Fatalf("\t%s\tTest %d:\tShould name the field in the message, got %q.", failed, testID, msg)
					}
					t.Logf("\t%s\tTest %d:\tShould reject the value with a readable message.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
