package validate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type user struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Age   int    `yaml:"age" validate:"gte=0"`
}

func TestCheck(t *testing.T) {
	testCases := []struct {
		name   string
		val    any
		expErr map[string]string
	}{
		{
			name: "valid struct",
			val:  user{Name: "Ann", Email: "ann@example.com"},
		},
		{
			name: "valid pointer",
			val:  &user{Name: "Ann", Email: "ann@example.com"},
		},
		{
			name: "missing fields",
			val:  user{},
			expErr: map[string]string{
				"name":  "This field is required",
				"email": "This field is required",
			},
		},
		{
			name: "bad email and yaml name",
			val:  user{Name: "Ann", Email: "nope", Age: -1},
			expErr: map[string]string{
				"email": "email must be a valid email address",
				"age":   "age must be 0 or greater",
			},
		},
		{
			name: "non struct is accepted",
			val:  map[string]int{"a": 1},
		},
		{
			name: "nil is accepted",
			val:  nil,
		},
		{
			name: "nil pointer is accepted",
			val:  (*user)(nil),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Check(tc.val)
			if tc.expErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}

			var fields FieldErrors
			if !errors.As(err, &fields) {
				t.Fatalf("expected FieldErrors, got: %T %v", err, err)
			}

			if diff := cmp.Diff(tc.expErr, fields.Fields()); diff != "" {
				t.Errorf("unexpected field errors (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldErrors_Error(t *testing.T) {
	fe := FieldErrors{{Field: "name", Err: "This field is required"}}

	exp := `[{"field":"name","error":"This field is required"}]`
	if got := fe.Error(); got != exp {
		t.Errorf("expected %s, got %s", exp, got)
	}
}
