/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package audit

import "testing"

func TestEntityRefRoundTrip(t *testing.T) {
	tests := []struct {
		key, partition string
		want           string
	}{
		{"A", "", "A"},
		{"A", "eu", "eu/A"},
		{"a/b", "", "a/b"}, // keys containing the separator survive unpartitioned
	}

	for _, tt := range tests {
		ref := entityRef(tt.key, tt.partition)
		if ref != tt.want {
			t.Errorf("entityRef(%q, %q) = %q, want %q", tt.key, tt.partition, ref, tt.want)
		}
	}

	key, partition := splitEntityRef("eu/A")
	if key != "A" || partition != "eu" {
		t.Errorf("splitEntityRef(eu/A) = (%q, %q), want (A, eu)", key, partition)
	}

	key, partition = splitEntityRef("A")
	if key != "A" || partition != "" {
		t.Errorf("splitEntityRef(A) = (%q, %q), want (A, )", key, partition)
	}
}

func TestEventID(t *testing.T) {
	if got := eventID("A", 3); got != "A:3" {
		t.Errorf("eventID(A, 3) = %q, want A:3", got)
	}
	if got := eventID("eu/A", 1); got != "eu/A:1" {
		t.Errorf("eventID(eu/A, 1) = %q, want eu/A:1", got)
	}
}
