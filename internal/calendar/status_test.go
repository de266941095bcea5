package calendar

import (
	"testing"

	"github.com/agreeto/backend/internal/models"
)

func TestGoogleResponseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want models.ResponseStatus
	}{
		{"accepted", models.ResponseAccepted},
		{"declined", models.ResponseDeclined},
		{"tentative", models.ResponseTentative},
		{"needsAction", models.ResponseNeedsAction},
		{"", models.ResponseNeedsAction},
		{"something-new", models.ResponseNeedsAction},
	}
	for _, tt := range tests {
		if got := googleResponseStatus(tt.in); got != tt.want {
			t.Errorf("googleResponseStatus(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestGraphResponseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want models.ResponseStatus
	}{
		{"accepted", models.ResponseAccepted},
		{"declined", models.ResponseDeclined},
		{"tentativelyAccepted", models.ResponseTentative},
		{"tentative", models.ResponseNeedsAction}, // Graph never sends the short form
		{"notResponded", models.ResponseNeedsAction},
		{"", models.ResponseNeedsAction},
	}
	for _, tt := range tests {
		if got := graphResponseStatus(tt.in); got != tt.want {
			t.Errorf("graphResponseStatus(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
