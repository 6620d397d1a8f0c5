package handlers

import "testing"

func TestCheckBlankFields(t *testing.T) {
	type form struct {
		Name  string
		Email string
	}

	if err := CheckBlankFields(form{Name: "a", Email: "b"}); err != nil {
		t.Errorf("unexpected error for filled struct: %v", err)
	}
	if err := CheckBlankFields(form{Name: "a"}); err == nil {
		t.Error("expected error for blank field")
	}
}

func TestValidateDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2026-08-25", true},
		{"2026-02-30", false},
		{"25-08-2026", false},
		{"", false},
	}
	for _, tc := range cases {
		err := ValidateDate(tc.in)
		if tc.ok && err != nil {
			t.Errorf("%q: unexpected error %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%q: expected error", tc.in)
		}
	}
}
