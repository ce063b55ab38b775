// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	UserID string `validate:"required,max=16"`
	Text   string `validate:"required,max=32"`
	Mode   string `validate:"omitempty,oneof=fast full"`
}

func TestValidateStructOK(t *testing.T) {
	t.Parallel()

	req := sampleRequest{UserID: "u1", Text: "hello", Mode: "fast"}
	if err := ValidateStruct(req); err != nil {
		t.Errorf("ValidateStruct = %v, want nil", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		req       sampleRequest
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{
			name:      "missing required",
			req:       sampleRequest{Text: "hello"},
			wantField: "UserID",
			wantTag:   "required",
			wantMsg:   "UserID is required",
		},
		{
			name:      "over max",
			req:       sampleRequest{UserID: "u1", Text: strings.Repeat("x", 33)},
			wantField: "Text",
			wantTag:   "max",
			wantMsg:   "Text must be at most 32 characters",
		},
		{
			name:      "not in oneof",
			req:       sampleRequest{UserID: "u1", Text: "hello", Mode: "turbo"},
			wantField: "Mode",
			wantTag:   "oneof",
			wantMsg:   "Mode must be one of: fast full",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(tt.req)
			if err == nil {
				t.Fatal("expected a validation error")
			}

			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("Error = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateStructJoinsMessages(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(sampleRequest{})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "UserID is required") || !strings.Contains(msg, "Text is required") {
		t.Errorf("joined message = %q", msg)
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator returned different instances")
	}
}
