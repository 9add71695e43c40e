package pipelinecache

import "testing"

func TestKeysAreDistinct(t *testing.T) {
	keys := []Key{
		KeyInitialCull, KeyLateCull, KeyTransparentCull, KeyONPCCull,
		KeyPreClusterCull, KeyClusterCull, KeyDepthPyramid, KeyComposite,
		KeyBackgroundFill, KeyOpaque, KeyTransparent, KeyONPC, KeyLoadingTriangle,
	}
	seen := map[Key]bool{}
	for _, k := range keys {
		if seen[k] {
			t.Fatalf("duplicate pipeline key %q", k)
		}
		seen[k] = true
	}
}

func TestGetUnregisteredKeyReturnsNil(t *testing.T) {
	c := &Cache{}
	if p := c.Get(KeyOpaque); p != nil {
		t.Fatalf("Get on an empty cache = %v, want nil", p)
	}
}
