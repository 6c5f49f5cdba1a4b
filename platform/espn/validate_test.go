package espn

import "testing"

func TestValidSWID(t *testing.T) {
	cases := []struct {
		name string
		swid string
		want bool
	}{
		{"uppercase uuid", "{1A2B3C4D-1234-5678-9ABC-DEF012345678}", true},
		{"lowercase uuid", "{1a2b3c4d-1234-5678-9abc-def012345678}", true},
		{"missing braces", "1A2B3C4D-1234-5678-9ABC-DEF012345678", false},
		{"empty", "", false},
		{"garbage", "{not-a-uuid}", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidSWID(tc.swid); got != tc.want {
				t.Errorf("ValidSWID(%q) = %v, want %v", tc.swid, got, tc.want)
			}
		})
	}
}

func TestValidS2(t *testing.T) {
	long := "AEBx%2FabcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"
	if !ValidS2(long) {
		t.Error("expected a reasonably long s2 cookie value to be valid")
	}
	if ValidS2("") {
		t.Error("expected empty s2 to be invalid")
	}
	if ValidS2("short") {
		t.Error("expected a too-short s2 to be invalid")
	}
}

func TestNormalizeSWIDAndBareSWID(t *testing.T) {
	normalized := NormalizeSWID("1a2b3c4d-1234-5678-9abc-def012345678")
	if normalized != "{1a2b3c4d-1234-5678-9abc-def012345678}" {
		t.Errorf("NormalizeSWID produced %q", normalized)
	}

	bare := BareSWID("{1A2B3C4D-1234-5678-9ABC-DEF012345678}")
	if bare != "1A2B3C4D-1234-5678-9ABC-DEF012345678" {
		t.Errorf("BareSWID produced %q", bare)
	}
}
