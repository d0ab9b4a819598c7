package importer

import (
	"strings"
	"testing"

	"github.com/aclindsa/ofxgo"
)

func TestExtractVendor(t *testing.T) {
	parser := NewOFXParser()

	tests := []struct {
		name string
		tx   ofxgo.Transaction
		want string
	}{
		{
			name: "prefers payee",
			tx: ofxgo.Transaction{
				Name:  ofxgo.String("POS PURCHASE 1234"),
				Payee: &ofxgo.Payee{Name: ofxgo.String("Starbucks")},
			},
			want: "Starbucks",
		},
		{
			name: "strips processor prefix",
			tx: ofxgo.Transaction{
				Name: ofxgo.String("POS PURCHASE STARBUCKS #1234"),
			},
			want: "STARBUCKS #1234",
		},
		{
			name: "strips leading date",
			tx: ofxgo.Transaction{
				Name: ofxgo.String("03/10 SHELL OIL"),
			},
			want: "SHELL OIL",
		},
		{
			name: "falls back to memo for generic names",
			tx: ofxgo.Transaction{
				Name: ofxgo.String("DEBIT"),
				Memo: ofxgo.String("AMAZON MARKETPLACE"),
			},
			want: "AMAZON MARKETPLACE",
		},
		{
			name: "keeps specific names over memo",
			tx: ofxgo.Transaction{
				Name: ofxgo.String("SHELL OIL"),
				Memo: ofxgo.String("SOMETHING ELSE"),
			},
			want: "SHELL OIL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parser.extractVendor(tt.tx); got != tt.want {
				t.Errorf("extractVendor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsGenericDescription(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"DEBIT", true},
		{"payment", true},
		{"POS TRANSACTION", true},
		{"STARBUCKS #1234", false},
		{"DEBIT CARD 9876", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isGenericDescription(tt.name); got != tt.want {
				t.Errorf("isGenericDescription(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestPreprocessOFX(t *testing.T) {
	parser := NewOFXParser()

	t.Run("uppercases severity", func(t *testing.T) {
		got := parser.preprocessOFX("<SEVERITY>Info</SEVERITY>")
		if got != "<SEVERITY>INFO</SEVERITY>" {
			t.Errorf("Got %q", got)
		}
	})

	t.Run("closes unterminated tags", func(t *testing.T) {
		got := parser.preprocessOFX("<OFX\n<SIGNONMSGSRSV1\n")
		if !strings.Contains(got, "<OFX>") || !strings.Contains(got, "<SIGNONMSGSRSV1>") {
			t.Errorf("Got %q", got)
		}
	})

	t.Run("trims leading blank lines", func(t *testing.T) {
		got := parser.preprocessOFX("\n\n  OFXHEADER:100")
		if !strings.HasPrefix(got, "OFXHEADER:100") {
			t.Errorf("Got %q", got)
		}
	})
}
