package validation

import "testing"

type sampleForm struct {
	FirstName string `json:"firstName" validate:"required"`
	Email     string `json:"email" validate:"required,email_tld"`
	Pin       string `json:"pin" validate:"required,len=4,numeric"`
	Amount    int64  `json:"amount" validate:"gt=0"`
}

func TestTags(t *testing.T) {
	tests := []struct {
		name string
		form sampleForm
		want map[string]string
	}{
		{
			name: "valid form",
			form: sampleForm{FirstName: "Ana", Email: "ana@example.com", Pin: "1234", Amount: 1},
			want: nil,
		},
		{
			name: "missing everything",
			form: sampleForm{},
			want: map[string]string{"firstName": "required", "email": "required", "pin": "required", "amount": "gt"},
		},
		{
			name: "email without tld",
			form: sampleForm{FirstName: "Ana", Email: "ana@host", Pin: "1234", Amount: 1},
			want: map[string]string{"email": "email_tld"},
		},
		{
			name: "pin wrong length",
			form: sampleForm{FirstName: "Ana", Email: "ana@example.com", Pin: "12", Amount: 1},
			want: map[string]string{"pin": "len"},
		},
		{
			name: "pin non numeric",
			form: sampleForm{FirstName: "Ana", Email: "ana@example.com", Pin: "abcd", Amount: 1},
			want: map[string]string{"pin": "numeric"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tags(tt.form)
			if len(got) != len(tt.want) {
				t.Fatalf("Tags = %v, want %v", got, tt.want)
			}
			for field, tag := range tt.want {
				if got[field] != tag {
					t.Fatalf("Tags[%s] = %q, want %q", field, got[field], tag)
				}
			}
		})
	}
}

func TestTagsUsesJSONNames(t *testing.T) {
	got := Tags(sampleForm{Email: "ana@example.com", Pin: "1234", Amount: 1})
	if _, ok := got["firstName"]; !ok {
		t.Fatalf("keys = %v, want json tag names", got)
	}
	if _, ok := got["FirstName"]; ok {
		t.Fatal("struct field name leaked into error keys")
	}
}

func TestEmailTldCases(t *testing.T) {
	type emailOnly struct {
		Email string `json:"email" validate:"email_tld"`
	}
	tests := []struct {
		email string
		valid bool
	}{
		{email: "ana@example.com", valid: true},
		{email: "ana.garcia+x@sub.example.co", valid: true},
		{email: "ana@host", valid: false},
		{email: "@example.com", valid: false},
		{email: "ana@", valid: false},
		{email: "ana example@x.co", valid: false},
	}
	for _, tt := range tests {
		got := Tags(emailOnly{Email: tt.email})
		if (got == nil) != tt.valid {
			t.Fatalf("email %q: tags = %v, want valid=%v", tt.email, got, tt.valid)
		}
	}
}

func TestStructMessages(t *testing.T) {
	details := Struct(sampleForm{FirstName: "Ana", Email: "ana@host", Pin: "12345", Amount: 1})
	if details["email"] != "must be a valid email" {
		t.Fatalf("email message = %q", details["email"])
	}
	if details["pin"] != "must be exactly 4 characters long" {
		t.Fatalf("pin message = %q", details["pin"])
	}
	if Struct(sampleForm{FirstName: "Ana", Email: "a@b.co", Pin: "1234", Amount: 1}) != nil {
		t.Fatal("valid struct produced details")
	}
}
